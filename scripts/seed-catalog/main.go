package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vogiaan1904/calorieclash/config"
	infra "github.com/vogiaan1904/calorieclash/internal/infra/redis"
	"github.com/vogiaan1904/calorieclash/internal/models"
	repo "github.com/vogiaan1904/calorieclash/internal/repository/redis"
	pkgLog "github.com/vogiaan1904/calorieclash/pkg/logger"
)

// defaultFoods is the built-in catalog pool. Calories are per typical
// serving; the game only needs stable relative values.
var defaultFoods = []models.CatalogItem{
	{Name: "Apple", Calories: 95},
	{Name: "Banana", Calories: 105},
	{Name: "Orange", Calories: 62},
	{Name: "Grapes", Calories: 62},
	{Name: "Strawberry", Calories: 4},
	{Name: "Watermelon", Calories: 86},
	{Name: "Mango", Calories: 150},
	{Name: "Pineapple", Calories: 82},
	{Name: "Fig", Calories: 37},
	{Name: "Kale", Calories: 33},
	{Name: "Carrot", Calories: 25},
	{Name: "Broccoli", Calories: 55},
	{Name: "Avocado", Calories: 234},
	{Name: "Potato", Calories: 163},
	{Name: "Corn", Calories: 77},
	{Name: "Chicken", Calories: 335},
	{Name: "Beef", Calories: 213},
	{Name: "Salmon", Calories: 208},
	{Name: "Shrimp", Calories: 84},
	{Name: "Egg", Calories: 78},
	{Name: "Tofu", Calories: 76},
	{Name: "Peanuts", Calories: 161},
	{Name: "Almonds", Calories: 164},
	{Name: "Cashews", Calories: 157},
	{Name: "Rice", Calories: 206},
	{Name: "Bread", Calories: 79},
	{Name: "Pasta", Calories: 221},
	{Name: "Pizza", Calories: 285},
	{Name: "Burger", Calories: 354},
	{Name: "Fries", Calories: 365},
	{Name: "Hotdog", Calories: 151},
	{Name: "Taco", Calories: 156},
	{Name: "Donut", Calories: 253},
	{Name: "Cookie", Calories: 148},
	{Name: "Cake", Calories: 235},
	{Name: "IceCream", Calories: 207},
	{Name: "Chocolate", Calories: 235},
	{Name: "Cheese", Calories: 113},
	{Name: "Yogurt", Calories: 149},
	{Name: "Milk", Calories: 103},
	{Name: "Soda", Calories: 150},
	{Name: "Juice", Calories: 112},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := infra.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer infra.Disconnect(redisCli)

	catRepo := repo.NewRedisCatalogRepository(redisCli, l)

	if err := catRepo.Seed(ctx, defaultFoods); err != nil {
		l.Fatalf(ctx, "Failed to seed catalog pool: %v", err)
	}

	size, err := catRepo.PoolSize(ctx)
	if err != nil {
		l.Fatalf(ctx, "Failed to read catalog pool size: %v", err)
	}

	l.Infof(ctx, "Catalog pool ready with %d items", size)
}
