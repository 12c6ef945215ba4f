package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	kafka "github.com/vogiaan1904/calorieclash/internal/delivery/kafka"
	"github.com/vogiaan1904/calorieclash/pkg/logger"
)

type Producer interface {
	PublishGameCreated(ctx context.Context, event kafka.GameCreatedEvent) error
	PublishPlayerJoined(ctx context.Context, event kafka.PlayerJoinedEvent) error
	PublishPlayerLeft(ctx context.Context, event kafka.PlayerLeftEvent) error
	PublishGameStarted(ctx context.Context, event kafka.GameStartedEvent) error
	PublishGameEnded(ctx context.Context, event kafka.GameEndedEvent) error
	PublishGameScored(ctx context.Context, event kafka.GameScoredEvent) error
	PublishGameRematched(ctx context.Context, event kafka.GameRematchedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishGameCreated(ctx context.Context, event kafka.GameCreatedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicGameCreated, event.GameID, event)
}

func (p *implProducer) PublishPlayerJoined(ctx context.Context, event kafka.PlayerJoinedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicPlayerJoined, event.GameID, event)
}

func (p *implProducer) PublishPlayerLeft(ctx context.Context, event kafka.PlayerLeftEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicPlayerLeft, event.GameID, event)
}

func (p *implProducer) PublishGameStarted(ctx context.Context, event kafka.GameStartedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicGameStarted, event.GameID, event)
}

func (p *implProducer) PublishGameEnded(ctx context.Context, event kafka.GameEndedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicGameEnded, event.GameID, event)
}

func (p *implProducer) PublishGameScored(ctx context.Context, event kafka.GameScoredEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicGameScored, event.GameID, event)
}

func (p *implProducer) PublishGameRematched(ctx context.Context, event kafka.GameRematchedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicGameRematched, event.GameID, event)
}

func (p *implProducer) publish(ctx context.Context, topic, gameID string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(gameID), // Partition by game_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err = p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
