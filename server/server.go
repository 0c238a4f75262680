// Package server exposes md5trace over HTTP: digests, whole traces, single steps and rendered
// traces, all computed per request and never stored.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/p7r0x7/md5trace/internal/config"
	"github.com/p7r0x7/md5trace/internal/log"
	"github.com/p7r0x7/md5trace/render"
)

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

// Server is the trace API.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	maxInput   int
	style      render.Style
	renderers  map[render.Style]*render.Renderer
}

// New builds a Server from a validated configuration.
func New(cfg *config.Config) (*Server, error) {
	style, err := render.ParseStyle(cfg.Render.Style)
	if err != nil {
		return nil, err
	}
	s := &Server{
		router:    chi.NewRouter(),
		maxInput:  cfg.Server.MaxInput,
		style:     style,
		renderers: make(map[render.Style]*render.Renderer, 3),
	}
	for _, st := range []render.Style{render.StyleTree, render.StyleTable, render.StyleText} {
		r := render.New(st)
		if err := r.SetBorder(cfg.Render.Border); err != nil {
			return nil, err
		}
		if err := r.SetTemplates(cfg.Render.StepTemplate, cfg.Render.BlockTemplate); err != nil {
			return nil, err
		}
		s.renderers[st] = r
	}

	s.router.Use(Recovery)
	s.router.Use(Logger)
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/digest", s.handleDigest)
		r.Post("/trace", s.handleTrace)
		r.Post("/trace/blocks/{block}/steps/{step}", s.handleStep)
		r.Post("/render", s.handleRender)
		r.Get("/health", s.handleHealth)
	})
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until Stop is called.
func (s *Server) Start() error {
	log.Infof("[API] Starting server on %s", s.httpServer.Addr)
	log.Infof("[API] Example: curl -d '{\"text\":\"abc\"}' http://%s/api/v1/digest", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
