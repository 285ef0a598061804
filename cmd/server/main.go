package main

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/atelierframes/framery/internal/catalog"
	"github.com/atelierframes/framery/internal/config"
	"github.com/atelierframes/framery/internal/db"
	"github.com/atelierframes/framery/internal/migrations"
	"github.com/atelierframes/framery/internal/orders"
	"github.com/atelierframes/framery/internal/pricing"
	"github.com/atelierframes/framery/internal/receipt"
	"github.com/atelierframes/framery/internal/seed"
)

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			logrus.WithError(err).Fatal("failed to run database migrations")
		}
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to seed database")
	}
	if stats.Inserts > 0 {
		logrus.WithField("inserts", stats.Inserts).Info("seeded database")
	}

	catalogStore := catalog.NewStore(database)
	srv := &server{
		auth:     newAuthService(database, cfg.SessionSecret),
		catalog:  catalogStore,
		orders:   orders.NewStore(database),
		engine:   pricing.NewEngine(catalogStore, catalogStore),
		validate: validator.New(),
	}
	srv.receipts = receipt.NewGenerator(srv.engine)

	addr := ":" + cfg.Port
	logrus.WithField("addr", addr).Info("listening")
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
