package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orestack/minereport/internal/convert"
	"github.com/orestack/minereport/internal/extract"
	"github.com/orestack/minereport/internal/model"
	"github.com/orestack/minereport/internal/pipeline"
	"github.com/orestack/minereport/internal/store"
	"github.com/orestack/minereport/internal/template"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report ingestion API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/standards", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, env.Registry.AllStandards())
	})

	r.Get("/standards/{id}/template", func(w http.ResponseWriter, req *http.Request) {
		schema, ok := env.Registry.Lookup(model.StandardID(chi.URLParam(req, "id")))
		if !ok {
			writeError(w, http.StatusNotFound, "unknown standard")
			return
		}
		data, err := template.Fillable(schema)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		serveWorkbook(w, fmt.Sprintf("%s_template.xlsx", schema.ID), data)
	})

	r.Route("/reports", func(r chi.Router) {
		r.With(throttle(limiter)).Post("/", handleUpload(env))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			filter := store.ReportFilter{
				Status:   model.ReportStatus(req.URL.Query().Get("status")),
				Standard: model.StandardID(req.URL.Query().Get("standard")),
			}
			reports, err := env.Store.ListReports(req.Context(), filter)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, reports)
		})

		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			report, err := env.Store.GetReport(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, report)
		})

		r.Get("/{id}/tickets", func(w http.ResponseWriter, req *http.Request) {
			tickets, err := env.Store.ListTickets(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, tickets)
		})

		r.Post("/{id}/tickets/{fieldKey}", handleResolve(env))

		r.Get("/{id}/export/{standard}", handleExport(env))
	})

	return r
}

// throttle rejects requests exceeding the shared upload rate.
func throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func handleUpload(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		fileName, data, declaredType, err := readUpload(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		report, tickets, err := env.Pipeline.Ingest(req.Context(), fileName, data, declaredType)
		if err != nil {
			switch {
			case eris.Is(err, pipeline.ErrNotTechnicalReport):
				writeError(w, http.StatusUnprocessableEntity, err.Error())
			case eris.Is(err, extract.ErrTooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			case eris.Is(err, extract.ErrUnparsable), eris.Is(err, extract.ErrTimeout):
				writeError(w, http.StatusUnprocessableEntity, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"report_id": report.ID,
			"standard":  report.StandardDetected,
			"status":    report.Status,
			"summary":   report.Summary,
			"tickets":   tickets,
		})
	}
}

// readUpload accepts either a multipart form with a "file" part or a raw
// body with the name in the ?filename query parameter.
func readUpload(req *http.Request) (string, []byte, string, error) {
	contentType := req.Header.Get("Content-Type")

	if req.MultipartForm != nil || len(contentType) >= 19 && contentType[:19] == "multipart/form-data" {
		file, header, err := req.FormFile("file")
		if err != nil {
			return "", nil, "", eris.Wrap(err, "missing file part")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, "", eris.Wrap(err, "read file part")
		}
		return header.Filename, data, header.Header.Get("Content-Type"), nil
	}

	fileName := req.URL.Query().Get("filename")
	if fileName == "" {
		return "", nil, "", eris.New("filename query parameter is required for raw uploads")
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return "", nil, "", eris.Wrap(err, "read body")
	}
	if len(data) == 0 {
		return "", nil, "", eris.New("empty upload")
	}
	return fileName, data, contentType, nil
}

func handleResolve(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var value model.FieldValue
		if err := json.NewDecoder(req.Body).Decode(&value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid field value body")
			return
		}
		value.Confidence = model.ConfidenceExact

		report, tickets, err := env.Pipeline.ResolveTicket(req.Context(),
			chi.URLParam(req, "id"), chi.URLParam(req, "fieldKey"), &value)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"report_id": report.ID,
			"version":   report.Version,
			"status":    report.Status,
			"tickets":   tickets,
		})
	}
}

func handleExport(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		report, err := env.Store.GetReport(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}

		target := model.StandardID(chi.URLParam(req, "standard"))
		res, err := convert.Convert(report, target, env.Registry)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		data, err := template.Render(res)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := env.Pipeline.MarkExported(req.Context(), report.ID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		serveWorkbook(w, fmt.Sprintf("%s_%s.xlsx", report.ID, target), data)
	}
}

func serveWorkbook(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
