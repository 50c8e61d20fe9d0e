// Command retrain fits a fresh classifier artifact from labeled CSV data,
// optionally folded together with agent feedback from the audit database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/resolvehq/complaints-backend/internal/classifier"
	"github.com/resolvehq/complaints-backend/internal/config"
	"github.com/resolvehq/complaints-backend/internal/db"
	"github.com/resolvehq/complaints-backend/internal/logger"
	"github.com/resolvehq/complaints-backend/internal/repository/postgres"
)

func main() {
	var (
		dataPath  = flag.String("data", "data/training.csv", "labeled training CSV")
		outPath   = flag.String("out", "models/complaint_classifier.json", "output model artifact")
		withDB    = flag.Bool("feedback", false, "merge agent feedback from the audit database")
		epochs    = flag.Int("epochs", 500, "training epochs")
		learnRate = flag.Float64("lr", 0.1, "learning rate")
		l2        = flag.Float64("l2", 0.001, "L2 regularization strength")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	f, err := os.Open(*dataPath)
	if err != nil {
		log.Error("open training data", "path", *dataPath, "err", err)
		os.Exit(1)
	}
	samples, err := classifier.ReadCSV(f)
	f.Close()
	if err != nil {
		log.Error("parse training data", "err", err)
		os.Exit(1)
	}
	log.Info("training data loaded", "path", *dataPath, "samples", len(samples))

	if *withDB {
		extra, err := feedbackSamples(cfg)
		if err != nil {
			log.Error("load feedback", "err", err)
			os.Exit(1)
		}
		log.Info("feedback merged", "samples", len(extra))
		samples = append(samples, extra...)
	}

	model, err := classifier.Train(samples, classifier.TrainOptions{
		Epochs:       *epochs,
		LearningRate: *learnRate,
		L2:           *l2,
	})
	if err != nil {
		log.Error("training failed", "err", err)
		os.Exit(1)
	}

	if err := model.SaveFile(*outPath); err != nil {
		log.Error("save model", "path", *outPath, "err", err)
		os.Exit(1)
	}
	log.Info("model saved", "path", *outPath, "classes", model.Classes, "samples", model.Samples)
}

// feedbackSamples turns agent corrections into labeled rows: the stored case
// features with the corrected decision as label.
func feedbackSamples(cfg config.Config) ([]classifier.Sample, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()
	repos := postgres.NewRepositories(pool)

	rows, err := repos.Feedback.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []classifier.Sample
	for _, fb := range rows {
		c, err := repos.Complaints.GetByComplaintID(ctx, fb.ComplaintID)
		if err != nil {
			continue // complaint purged or id mistyped, skip
		}
		out = append(out, classifier.Sample{
			Status:          c.Case.OrderStatus,
			RefundHistory30: c.Case.RefundHistory30,
			HandoffPhoto:    c.Case.HandoffPhoto,
			CourierRating:   c.Case.CourierRating,
			Label:           string(fb.CorrectedDecision),
		})
	}
	return out, nil
}
