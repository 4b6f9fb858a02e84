// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package web exposes the core facades as a JSON HTTP API.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/toeirei/gitident/internal/core"
	"github.com/toeirei/gitident/internal/logging"
)

// Server serves the API for one core.Service.
type Server struct {
	svc *core.Service
}

// NewServer returns a Server for svc.
func NewServer(svc *core.Service) *Server {
	return &Server{svc: svc}
}

// Router builds the route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLog)
	r.Use(chimw.Recoverer)

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/system/prerequisites", s.prerequisites)

		r.Route("/identities", func(r chi.Router) {
			r.Get("/", s.listIdentities)
			r.Post("/", s.createIdentity)
			r.Post("/sync", s.syncIdentities)
			r.Get("/{name}", s.getIdentity)
			r.Patch("/{name}", s.updateIdentity)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.listProjects)
			r.Post("/", s.addProject)
			r.Get("/{id}", s.getProject)
			r.Patch("/{id}", s.updateProject)
			r.Delete("/{id}", s.deleteProject)
			r.Post("/{id}/configure", s.configureProject)
			r.Get("/{id}/validate", s.validateProject)
		})
	})
	return r
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Infof("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Debugf("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond), chimw.GetReqID(r.Context()))
	})
}
