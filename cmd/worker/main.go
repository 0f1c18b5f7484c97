// The worker persists attendance notices as notification feed entries.
// It runs separately from the API so a burst of recognitions never blocks
// on notification writes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/faceattend/internal/config"
	"github.com/your-org/faceattend/internal/models"
	"github.com/your-org/faceattend/internal/observability"
	"github.com/your-org/faceattend/internal/queue"
	"github.com/your-org/faceattend/internal/storage"
)

const workerCount = 4

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting attendance notification worker")

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeAttendance(ctx, "notification-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var notice models.AttendanceNotice
		if err := json.Unmarshal(msg.Data(), &notice); err != nil {
			slog.Error("unmarshal attendance notice", "error", err)
			return nil // don't retry undecodable messages
		}

		n := &models.Notification{
			EmployeeID: notice.EmployeeID,
			Action:     notice.Action,
			Message:    noticeMessage(&notice),
		}
		if err := db.InsertNotification(ctx, n); err != nil {
			return fmt.Errorf("persist notification for %s: %w", notice.EmployeeCode, err)
		}
		observability.NotificationsWritten.Inc()
		return nil
	}, workerCount)
	if err != nil {
		slog.Error("start attendance consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("worker metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("worker stopped")
}

func noticeMessage(n *models.AttendanceNotice) string {
	verb := "checked in"
	if n.Action == "check_out" {
		verb = "checked out"
	}
	return fmt.Sprintf("%s (%s) %s at %s", n.EmployeeName, n.EmployeeCode, verb,
		n.OccurredAt.Format("15:04"))
}
