// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Package api provides the JSON API handlers.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/byceps/byceps-go/internal/render"
	"github.com/byceps/byceps-go/internal/service"
)

// Handler holds shared dependencies for the API handlers.
type Handler struct {
	snippets *service.SnippetService
	renderer *render.Renderer
	log      *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(snippets *service.SnippetService, renderer *render.Renderer, log *slog.Logger) *Handler {
	return &Handler{
		snippets: snippets,
		renderer: renderer,
		log:      log,
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteEmpty writes an empty JSON object with the given status code.
func WriteEmpty(w http.ResponseWriter, statusCode int) {
	WriteJSON(w, statusCode, struct{}{})
}
