package kafka

import (
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"github.com/vogiaan1904/calorieclash/config"
)

func NewProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.RequiredAcks(cfg.ProducerRequiredAcks)
	saramaCfg.Producer.Retry.Max = cfg.ProducerRetryMax
	saramaCfg.Producer.Return.Successes = true

	prod, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Printf("Kafka producer connected to brokers: %v\n", cfg.Brokers)

	return prod, nil
}
