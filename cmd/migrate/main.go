// Command migrate applies or rolls back the database schema.
package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"scranly/internal/config"
	"scranly/internal/database"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	downAll := flag.Bool("down-all", false, "roll back every migration")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(cfg.LogLevel)

	switch {
	case *downAll:
		err = database.Rollback(cfg.DatabaseDriver, cfg.DatabaseURL, 0)
	case *down > 0:
		err = database.Rollback(cfg.DatabaseDriver, cfg.DatabaseURL, *down)
	default:
		err = database.RunMigrations(cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	version, dirty, err := database.Version(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to read schema version")
	}
	log.WithFields(logrus.Fields{"driver": cfg.DatabaseDriver, "version": version, "dirty": dirty}).Info("schema is up to date")
}
