// backend/cmd/seed/main.go
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/stayfinder/backend/internal/config"
	"github.com/stayfinder/backend/internal/database"
	"github.com/stayfinder/backend/internal/repository"
	"github.com/stayfinder/backend/internal/seeder"
	"github.com/stayfinder/backend/pkg/utils"
)

var (
	seed    = flag.Int64("seed", 42, "RNG seed for reproducible inventory")
	hotels  = flag.Int("hotels", 5, "Hotels per location")
	rooms   = flag.Int("rooms", 4, "Rooms per hotel")
	offers  = flag.Int("offers", 3, "Offers per room")
	horizon = flag.Int("horizon", 180, "Days into the future offer windows may start")
)

func main() {
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting inventory seeder...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)

	options := seeder.Options{
		Seed:              *seed,
		HotelsPerLocation: *hotels,
		RoomsPerHotel:     *rooms,
		OffersPerRoom:     *offers,
		HorizonDays:       *horizon,
	}

	if err := seeder.New(repoManager, logger, options).Seed(); err != nil {
		logger.WithError(err).Fatal("Seeding failed")
	}

	logger.Info("Seeding completed successfully!")
}
