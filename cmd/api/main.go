package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"scranly/internal/api"
	"scranly/internal/basket"
	"scranly/internal/catalog"
	"scranly/internal/config"
	"scranly/internal/database"
	"scranly/internal/ingredient"
	"scranly/internal/plan"
	"scranly/internal/recipe"
	"scranly/internal/track"
)

func newLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	return log
}

// newRouter builds every store and service on db and returns the HTTP router.
func newRouter(cfg *config.Config, db *sqlx.DB, log logrus.FieldLogger) *gin.Engine {
	recipeStore := recipe.NewSQLStore(db)
	planStore := plan.NewSQLStore(db)
	catalogStore := catalog.NewSQLStore(db)
	basketStore := basket.NewSQLStore(db)

	rules := ingredient.DefaultRules().WithPantry(cfg.PantryExtra...)
	pricer := catalog.NewPricer(catalogStore, log)
	builder := basket.NewBuilder(planStore, recipeStore, pricer, basketStore, rules, log)
	materializer := plan.NewMaterializer(planStore, log)
	tracker := track.NewTracker(planStore, recipeStore, log)

	log.WithFields(logrus.Fields{
		"pantry_staples": ingredient.NewPantry(rules).Len(),
		"synonyms":       len(rules.Synonyms),
	}).Info("ingredient rules loaded")

	handler := api.NewHandler(recipeStore, planStore, materializer, builder, tracker, rules, cfg.ImageBaseURL, log)
	return api.NewRouter(handler, cfg.AllowedOrigins)
}

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}
	log := newLogger(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if cfg.LogLevel < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, db, log)

	log.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
