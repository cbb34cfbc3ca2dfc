package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vestor-labs/ingest-cli/internal/ingest"
	"github.com/vestor-labs/ingest-cli/internal/model"
	"github.com/vestor-labs/ingest-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for ingestion requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		o, st, err := initOrchestrator(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		queue := ingest.NewQueue(cfg.Ingest.QueueSize)

		workers := cfg.Ingest.Workers
		if workers <= 0 {
			workers = 1
		}
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ingest.NewWorker(o, queue).Run(ctx)
			}()
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newServeMux(st, queue),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Int("workers", workers))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		queue.Close()
		wg.Wait()
		return nil
	},
}

// newServeMux builds the webhook routes. POST /webhook/ingest creates a run
// and queues it; the caller polls the run record for progress.
func newServeMux(st store.Store, queue *ingest.Queue) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/webhook/ingest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			InvestorID string `json:"investor_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.InvestorID == "" {
			http.Error(w, `{"error":"investor_id is required"}`, http.StatusBadRequest)
			return
		}

		p, err := st.GetProfile(r.Context(), req.InvestorID)
		if err != nil {
			http.Error(w, `{"error":"investor not found"}`, http.StatusNotFound)
			return
		}
		if p.Status == model.ProfileStatusProcessing {
			http.Error(w, `{"error":"ingestion already in progress"}`, http.StatusConflict)
			return
		}

		run, err := st.CreateRun(r.Context(), p.ID, p.UserID)
		if err != nil {
			zap.L().Error("webhook: create run failed", zap.Error(err))
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}

		if err := queue.Enqueue(ingest.RunContext{
			RunID:      run.ID,
			InvestorID: p.ID,
			UserID:     p.UserID,
		}); err != nil {
			zap.L().Warn("webhook: enqueue failed", zap.Error(err))
			http.Error(w, `{"error":"queue full, retry later"}`, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "accepted",
			"run_id": run.ID,
		})
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
