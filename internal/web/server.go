// Package web exposes the tracker over a local JSON API: repository CRUD,
// backup export/import, and the AI routes the original client called.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hpungsan/profreach/internal/config"
	"github.com/hpungsan/profreach/internal/oracle"
	"github.com/hpungsan/profreach/internal/repo"
)

// NewServer creates and configures the HTTP server.
func NewServer(r *repo.Repo, ai oracle.Oracle, cfg *config.Config, log *zap.Logger) *http.Server {
	h := NewHandlers(r, ai, cfg, log)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(log))

	router.Route("/api", func(api chi.Router) {
		api.Route("/professors", func(pr chi.Router) {
			pr.Get("/", h.ListProfessors)
			pr.Post("/", h.AddProfessor)
			pr.Get("/{id}", h.GetProfessor)
			pr.Patch("/{id}", h.UpdateProfessor)
			pr.Delete("/{id}", h.DeleteProfessor)
			pr.Get("/{id}/chats", h.ListChats)
			pr.Get("/{id}/drafts", h.ListProfessorDrafts)
			pr.Get("/{id}/notes/preview", h.PreviewNotes)
		})

		api.Get("/profile", h.GetProfile)
		api.Put("/profile", h.PutProfile)

		api.Route("/documents", func(dr chi.Router) {
			dr.Get("/", h.ListDocuments)
			dr.Post("/", h.AddDocument)
			dr.Delete("/{id}", h.DeleteDocument)
		})

		api.Route("/memory", func(mr chi.Router) {
			mr.Get("/", h.ListMemory)
			mr.Post("/", h.AddMemory)
			mr.Delete("/{id}", h.DeleteMemory)
		})

		api.Route("/drafts", func(dr chi.Router) {
			dr.Get("/", h.ListDrafts)
			dr.Delete("/{id}", h.DeleteDraft)
			dr.Get("/{id}/preview", h.PreviewDraft)
		})

		api.Get("/backup/export", h.ExportBackup)
		api.Post("/backup/import", h.ImportBackup)

		api.Route("/ai", func(ar chi.Router) {
			ar.Post("/lookup", h.Lookup)
			ar.Post("/email", h.DraftEmail)
			ar.Post("/chat", h.Chat)
			ar.Post("/resume", h.ParseResume)
		})
	})

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.WebBind, cfg.WebPort),
		Handler: router,
	}
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *zap.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("profreach API running", zap.String("addr", srv.Addr))

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
