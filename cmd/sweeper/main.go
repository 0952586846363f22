// Sweeper evaluates active applied SLAs on a cron schedule, transitioning them
// to hit or missed and appending their events. Set DATABASE_URL; optionally set
// SWEEP_SCHEDULE, KAFKA_BROKERS and SLA_EVENTS_KAFKA_TOPIC for transition
// emission, and METRICS_ADDR for Prometheus metrics.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appliedslarepo "sla-tracker/engine/internal/appliedsla/repository"
	"sla-tracker/engine/internal/config"
	"sla-tracker/engine/internal/db"
	"sla-tracker/engine/internal/evaluator"
	"sla-tracker/engine/internal/notifier"
	"sla-tracker/engine/internal/provider"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("sweeper: DATABASE_URL is required")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	producer, err := notifier.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.KafkaTopic)
	if err != nil {
		log.Fatalf("kafka producer: %v", err)
	}
	if producer != nil {
		defer producer.Close()
		log.Printf("sweeper: emitting transitions to %s", cfg.KafkaTopic)
	}

	repo := appliedslarepo.NewPostgresRepository(database)
	providers := provider.NewPostgresProvider(database)
	resolver := provider.NewThresholdResolver(providers, providers)
	ev := evaluator.New(repo, resolver, cfg.EvaluateMaxRetries)

	registry := prometheus.NewRegistry()
	metrics := evaluator.NewMetrics(registry)
	sweeper := evaluator.NewSweeper(repo, ev, producer, metrics, int32(cfg.SweepBatchSize))
	scheduler := evaluator.NewScheduler(sweeper, cfg.SweepSchedule)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			log.Printf("sweeper: metrics listening on %s", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("sweeper: metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	log.Printf("sweeper: running on schedule %q", cfg.SweepSchedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("sweeper: shutting down...")
	cancel()
	scheduler.Stop()
	log.Println("sweeper: stopped")
}
