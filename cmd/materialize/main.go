// Command materialize rebuilds the per-date plan index from stored plans.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"scranly/internal/config"
	"scranly/internal/database"
	"scranly/internal/plan"
)

// parseIDs reads a comma separated list of plan ids. An empty list means
// every plan.
func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid plan id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func run(ctx context.Context, store plan.IndexWriter, ids []int64, dryRun bool, log logrus.FieldLogger) (int, error) {
	results, err := plan.NewMaterializer(store, log).MaterializeAll(ctx, ids, dryRun)
	if err != nil {
		return 0, err
	}

	var total, malformed int
	for _, r := range results {
		entry := log.WithFields(logrus.Fields{"plan_id": r.PlanID, "user_id": r.UserID, "rows": r.Rows, "dry_run": dryRun})
		if r.ParseErr != nil {
			malformed++
			entry.WithError(r.ParseErr).Warn("plan payload is malformed")
		} else {
			entry.Info("plan materialized")
		}
		total += r.Rows
	}
	log.WithFields(logrus.Fields{"plans": len(results), "rows": total, "malformed": malformed, "dry_run": dryRun}).Info("done")
	return total, nil
}

func main() {
	planIDs := flag.String("plan-ids", "", "comma separated plan ids (default: all plans)")
	dryRun := flag.Bool("dry-run", false, "parse and count rows without writing")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ids, err := parseIDs(*planIDs)
	if err != nil {
		log.WithError(err).Error("bad -plan-ids")
		os.Exit(2)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if _, err := run(context.Background(), plan.NewSQLStore(db), ids, *dryRun, log); err != nil {
		log.WithError(err).Error("materialization failed")
		db.Close()
		os.Exit(1)
	}
}
