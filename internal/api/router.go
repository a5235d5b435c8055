package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/knxcore/knxcore/internal/recorder"
)

// defaultSessionLimit bounds GET /v1/decode/sessions when no limit
// query parameter is given.
const defaultSessionLimit = 50

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.securityHeadersMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/build/{programID}", s.handleGetBuild)
		r.Get("/decode/sessions", s.handleListSessions)
		r.With(s.rateLimitMiddleware(streamRateLimit, rateLimitWindow)).Get("/decode/stream", s.handleDecodeStream)
	})

	return r
}

// handleHealth returns the server's liveness status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleGetBuild returns the last recorded image-builder result for a
// program id.
func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	programID := chi.URLParam(r, "programID")
	if programID == "" {
		writeBadRequest(w, "programID is required")
		return
	}

	rec, err := s.store.GetBuild(r.Context(), programID)
	if err != nil {
		if err == recorder.ErrBuildNotFound {
			writeNotFound(w, "no build result recorded for this program id")
			return
		}
		s.logger.Error("failed to fetch build result", "program_id", programID, "error", err)
		writeInternalError(w, "failed to fetch build result")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"program_id":          rec.ProgramID,
		"base_address":        rec.BaseAddress,
		"image_size":          rec.ImageSize,
		"group_address_count": rec.GroupAddressCount,
		"association_count":   rec.AssociationCount,
		"com_object_count":    rec.ComObjectCount,
		"content_hash":        rec.ContentHash,
		"built_at":            rec.BuiltAt,
	})
}

// handleListSessions returns the most recent decode sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	sessions, err := s.store.ListSessions(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list decode sessions", "error", err)
		writeInternalError(w, "failed to list decode sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
