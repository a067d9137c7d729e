package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/connectday/booking-api/internal/config"
	"github.com/connectday/booking-api/internal/model"
	"github.com/connectday/booking-api/internal/repository/postgres"
)

var seedPartners = []string{
	"Partner Chen",
	"Partner Osei",
	"Partner Novak",
}

var seedEntrepreneurs = []string{
	"Founder Alvarez",
	"Founder Haddad",
	"Founder Kim",
	"Founder Okafor",
	"Founder Sato",
}

// seed wipes booking data and reseeds the identity directories. Partners and
// entrepreneurs are immutable after this runs; the API has no endpoints to
// mutate them.
func main() {
	schemaPath := flag.String("schema", "migrations/schema.sql", "path to the schema file, empty to skip")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()

	if *schemaPath != "" {
		schema, err := os.ReadFile(*schemaPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *schemaPath).Msg("failed to read schema")
		}
		if _, err := db.ExecContext(ctx, string(schema)); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		log.Info().Str("path", *schemaPath).Msg("schema applied")
	}

	for _, table := range []string{"appointments", "available_slots", "partners", "entrepreneurs"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Fatal().Err(err).Str("table", table).Msg("failed to clear table")
		}
	}

	partnerRepo := postgres.NewPartnerRepository(db, nil)
	for _, name := range seedPartners {
		if err := partnerRepo.Create(ctx, &model.Partner{Name: name}); err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("failed to seed partner")
		}
	}

	entrepreneurRepo := postgres.NewEntrepreneurRepository(db, nil)
	for _, name := range seedEntrepreneurs {
		if err := entrepreneurRepo.Create(ctx, &model.Entrepreneur{Name: name}); err != nil {
			log.Fatal().Err(err).Str("name", name).Msg("failed to seed entrepreneur")
		}
	}

	log.Info().
		Int("partners", len(seedPartners)).
		Int("entrepreneurs", len(seedEntrepreneurs)).
		Msg("database seeded")
}
