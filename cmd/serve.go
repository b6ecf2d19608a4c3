package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/find", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Query string `json:"query"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.Query == "" {
				writeError(w, http.StatusBadRequest, "query is required")
				return
			}

			run := env.Pipeline.Run(req.Context(), body.Query)
			writeJSON(w, http.StatusOK, run)
		})

		r.Get("/v1/runs", func(w http.ResponseWriter, req *http.Request) {
			limit := 0
			if raw := req.URL.Query().Get("limit"); raw != "" {
				limit, _ = strconv.Atoi(raw)
			}
			runs, err := env.Store.ListRuns(req.Context(), limit)
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "list runs failed")
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/v1/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := env.Store.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				if eris.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusNotFound, "run not found")
					return
				}
				zap.L().Error("get run failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "get run failed")
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
