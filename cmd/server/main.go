// Command server runs the API as a standalone HTTP service, for local
// development and non-serverless deployments.
package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	handler "worksphere-backend/api"
	"worksphere-backend/pkg/config"
	"worksphere-backend/pkg/database"
)

func main() {
	cfg := config.GetCached()
	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := database.NewDatabase(database.DatabaseConfig{
		UseLocalDB:  cfg.UseLocalDB,
		PostgresDSN: cfg.PostgresDSN,
		Debug:       cfg.Debug,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	router := handler.NewRouter(cfg, db, log)

	log.WithFields(logrus.Fields{
		"port": cfg.Port,
		"env":  cfg.Environment,
	}).Info("server listening")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
