package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/internal/config"
)

func main() {
	configPath := flag.String("config", "reviewsense.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, flag.Args()); err != nil {
		logger.Error("reviewsense failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	vocabOpts := []reviewsense.VocabularyOpt{reviewsense.WithVocabularyLogger(logger)}
	if cfg.Vocabulary.AllowOverrides {
		vocabOpts = append(vocabOpts, reviewsense.AllowOverrides())
	}
	vocab, err := reviewsense.LoadVocabulary(cfg.Vocabulary.Path, vocabOpts...)
	if err != nil {
		return err
	}
	logger.Info("vocabulary loaded", "path", cfg.Vocabulary.Path, "words", vocab.Len())

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}

	opts := []reviewsense.ClassifierOpt{
		reviewsense.WithLogger(logger),
		reviewsense.WithFeatureLength(cfg.Feature.Length),
		reviewsense.WithScoreTimeout(cfg.Model.Timeout),
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		metrics, err := reviewsense.NewMetrics(registry)
		if err != nil {
			return err
		}
		opts = append(opts, reviewsense.WithMetrics(metrics))
	}

	classifier, err := reviewsense.NewClassifier(vocab, scorer, opts...)
	if err != nil {
		return err
	}

	reviews := args
	if len(reviews) == 0 {
		reviews, err = readLines(os.Stdin)
		if err != nil {
			return err
		}
	}

	for _, text := range reviews {
		if err := ctx.Err(); err != nil {
			return err
		}
		review, err := classifier.Classify(ctx, text)
		if err != nil {
			return err
		}
		printReview(review)
	}

	if registry != nil {
		return dumpMetrics(registry)
	}
	return nil
}

func newScorer(cfg *config.Config) (reviewsense.Scorer, error) {
	if cfg.Model.RemoteURL != "" {
		remote, err := reviewsense.NewRemoteScorer(cfg.Model.RemoteURL, cfg.Model.Name, reviewsense.WithTimeout(cfg.Model.Timeout))
		if err != nil {
			return nil, err
		}
		return remote, nil
	}

	model, err := reviewsense.ModelFromDisk(cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	if model.InputLength() != cfg.Feature.Length {
		return nil, fmt.Errorf("model %s expects %d ids per review, feature.length is %d",
			model.Name, model.InputLength(), cfg.Feature.Length)
	}
	return model, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.Level))

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
}

func readLines(f *os.File) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func printReview(r *reviewsense.Review) {
	label := color.Red.Sprint(r.Verdict)
	if r.Verdict.IsPositive() {
		label = color.Green.Sprint(r.Verdict)
	}
	fmt.Printf("%s  [neg %.4f, pos %.4f]  %s\n", label, r.Prediction.Negative(), r.Prediction.Positive(), truncate(r.Text, 60))
}

func dumpMetrics(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				parts := make([]string, 0, len(m.GetLabel()))
				for _, lp := range m.GetLabel() {
					parts = append(parts, lp.GetName()+"="+lp.GetValue())
				}
				fmt.Printf("%s{%s} %.0f\n", mf.GetName(), strings.Join(parts, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Printf("%s count=%d sum=%.4f\n", mf.GetName(), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
