package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"dst-eval-go/internal/dataset"
	"dst-eval-go/internal/generator"
	"dst-eval-go/internal/logger"
	"dst-eval-go/internal/persist"
	"dst-eval-go/internal/pipeline"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "dst-eval-go").Info("starting service")

	// slot schema: description file if configured, otherwise derived from data
	var schema *dataset.SlotSchema
	if descPath := os.Getenv("SLOT_DESC_PATH"); descPath != "" {
		var err error
		schema, err = dataset.LoadSchema(descPath, envOr("SLOT_LANG", "human"))
		if err != nil {
			log.WithError(err).Fatal("failed to load slot schema")
		}
	}

	dataPath := envOr("DATASET_PATH", "dst_eval_set.xlsx")
	log.WithField("dataset_path", dataPath).Info("loading evaluation dataset")
	examples, err := dataset.Load(dataPath, schema)
	if err != nil {
		log.WithError(err).Fatal("failed to load dataset")
	}
	slots := dataset.Slots(examples)
	if schema != nil {
		slots = schema.Slots()
	}
	log.WithField("examples", len(examples)).WithField("slots", len(slots)).Info("dataset ready")

	resultsDir := envOr("RESULTS_DIR", "results")

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// evaluate endpoint: run a full pass and persist the artifacts
	mux.HandleFunc("/evaluate", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "evaluate")
		reqLog.Info("evaluate request received")

		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "zeroshot"
		}
		batchSize := 16
		if b := r.URL.Query().Get("batch_size"); b != "" {
			fmt.Sscanf(b, "%d", &batchSize)
		}
		run := examples
		if l := r.URL.Query().Get("limit"); l != "" {
			var limit int
			fmt.Sscanf(l, "%d", &limit)
			if limit > 0 && limit < len(run) {
				run = run[:limit]
				// schema slots may be wider than a truncated run covers
				reqLog.WithField("limit", limit).Warn("limited run uses data-derived slots")
			}
		}
		slotSet := slots
		if len(run) < len(examples) {
			slotSet = dataset.Slots(run)
		}
		reqLog = reqLog.WithField("prefix", prefix).WithField("batch_size", batchSize).WithField("examples", len(run))

		start := time.Now()
		res, err := pipeline.Run(r.Context(), run, generator.NewFromEnv(), slotSet, batchSize)
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("pipeline finished")
		if err != nil {
			reqLog.WithError(err).Error("evaluation pass failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := persist.Write(resultsDir, prefix, res); err != nil {
			reqLog.WithError(err).Error("failed to persist results")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Metrics); err != nil {
			reqLog.WithError(err).Error("failed to write response")
		}
	})

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
