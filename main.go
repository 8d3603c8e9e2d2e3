package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mirador-data/behavior.report/internal/api"
	"github.com/mirador-data/behavior.report/internal/config"
	"github.com/mirador-data/behavior.report/internal/db"
	"github.com/mirador-data/behavior.report/internal/emitter"
	"github.com/mirador-data/behavior.report/internal/inference"
	"github.com/mirador-data/behavior.report/internal/monitoring"
	"github.com/mirador-data/behavior.report/internal/session"
	"github.com/mirador-data/behavior.report/internal/version"
	"github.com/mirador-data/behavior.report/internal/vision"
)

var (
	devMode    = flag.Bool("dev", false, "Run with canned models instead of inference sidecars")
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "behavior_data.db", "Path to the sqlite database")
	tuningPath = flag.String("tuning", config.DefaultConfigPath, "Path to the tuning JSON file")
	services   = flag.String("services", config.DefaultServicesPath, "Path to the sidecar services YAML file")
	mqttBroker = flag.String("mqtt-broker", "", "MQTT broker host:port for alert publishing (empty disables)")
	verbose    = flag.Bool("verbose", false, "Enable per-frame trace logging")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	log.Printf("behavior.report %s", version.String())

	if *verbose {
		vision.SetLogWriters(vision.LogWriters{Ops: os.Stderr, Diag: os.Stderr, Trace: os.Stderr})
	} else {
		vision.SetLogWriters(vision.LogWriters{Ops: os.Stderr})
	}

	tuning, err := config.LoadTuningConfig(*tuningPath)
	if err != nil {
		log.Printf("tuning config unavailable (%v), using defaults", err)
		tuning = config.EmptyTuningConfig()
	}

	var models *inference.Loader
	if *devMode {
		log.Print("dev mode: using canned models")
		models = inference.NewStaticLoader()
	} else {
		svc, err := config.LoadServices(*services)
		if err != nil {
			log.Fatalf("failed to load services config: %v", err)
		}
		models = inference.NewSidecarLoader(svc.Emotion.URL, svc.Pose.URL, svc.Timeout())
	}

	database, err := db.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()

	var sink session.AlertSink
	if *mqttBroker != "" {
		mq := emitter.NewMQTTEmitter(*mqttBroker, "behavior-report")
		if err := mq.Connect(); err != nil {
			// The emitter auto-reconnects; alerts raised before then are
			// dropped with a log line, not lost sessions.
			log.Printf("mqtt connect: %v (will keep retrying)", err)
		}
		defer mq.Disconnect()
		sink = mq
	}

	sessions := session.NewManager(session.Config{
		Store:         database,
		Models:        models,
		Heuristics:    tuning.Heuristics(),
		Thresholds:    tuning.Thresholds(),
		WorkingWidth:  tuning.GetWorkingWidth(),
		WorkingHeight: tuning.GetWorkingHeight(),
		Sink:          sink,
		Metrics:       metrics,
		FlushEvery:    tuning.GetFlushEvery(),
	})

	server := &http.Server{
		Addr: *listen,
		Handler: api.LoggingMiddleware(api.NewServer(api.Config{
			DB:            database,
			Sessions:      sessions,
			Models:        models,
			Metrics:       metrics,
			Heuristics:    tuning.Heuristics(),
			WorkingWidth:  tuning.GetWorkingWidth(),
			WorkingHeight: tuning.GetWorkingHeight(),
		}).ServeMux()),
	}

	go func() {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Land every live session in the store before exit.
	sessions.Shutdown()
}
