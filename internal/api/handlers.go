package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/journeykit/journeymap/pkg/cache"
	"github.com/journeykit/journeymap/pkg/canvas"
	apperrors "github.com/journeykit/journeymap/pkg/errors"
	"github.com/journeykit/journeymap/pkg/journey"
	"github.com/journeykit/journeymap/pkg/layout"
	"github.com/journeykit/journeymap/pkg/store"
)

// reorderRequest is the body of POST /journeys/reorder.
type reorderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

// errorResponse is the JSON shape of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// handleGetJourney returns a single journey record without descendants.
func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateID(id); err != nil {
		s.writeError(w, err)
		return
	}

	j, err := s.store.GetJourney(r.Context(), id, false)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, j)
}

// handleGetStructure returns a journey with its flattened collections, and
// with nested subjourneys when include_subjourneys is set. Responses are
// cached per journey.
func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateID(id); err != nil {
		s.writeError(w, err)
		return
	}
	includeSubs := r.URL.Query().Get("include_subjourneys") == "true"

	var key string
	if includeSubs {
		// Only the full structure is cached. The reduced variant is cheap
		// and rare, caching it would double the invalidation surface.
		key = s.keyer.StructureKey(id)
		if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
			s.writeRaw(w, http.StatusOK, "application/json", data)
			return
		}
	}

	j, err := s.store.GetJourney(r.Context(), id, includeSubs)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data, err := json.Marshal(j)
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode structure"))
		return
	}
	if key != "" {
		if err := s.cache.Set(r.Context(), key, data, cache.TTLStructure); err != nil {
			s.logger.Warn("structure cache write failed", "journey", id, "err", err)
		}
	}
	s.writeRaw(w, http.StatusOK, "application/json", data)
}

// handleReorder applies a new sibling ordering. The order is validated and
// applied atomically by the store; cached structures for the reordered
// journeys and for the parent embedding their order are invalidated.
func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := apperrors.ValidateOrderedIDs(req.OrderedIDs); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.ReorderJourneys(r.Context(), req.OrderedIDs); err != nil {
		s.writeError(w, err)
		return
	}

	for _, id := range req.OrderedIDs {
		if err := s.cache.Delete(r.Context(), s.keyer.StructureKey(id)); err != nil {
			s.logger.Warn("structure cache invalidation failed", "journey", id, "err", err)
		}
	}
	s.invalidateParentStructure(r.Context(), req.OrderedIDs[0])
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetCanvasSVG builds, lays out, and renders a journey canvas. The
// rendered artifact is cached by graph content, so an unchanged journey is
// rendered once.
func (s *Server) handleGetCanvasSVG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateID(id); err != nil {
		s.writeError(w, err)
		return
	}

	current, err := s.store.GetJourney(r.Context(), id, true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	parent := s.resolveParent(r, current)

	g := canvas.Build(current, parent)
	g.Nodes = layout.Arrange(g.Nodes, g.Edges)

	snapshot, err := canvas.MarshalGraph(g)
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "encode graph"))
		return
	}
	key := s.keyer.ArtifactKey(cache.Hash(snapshot), "svg")
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		s.writeRaw(w, http.StatusOK, "image/svg+xml", data)
		return
	}

	svg, err := layout.RenderSVG(r.Context(), layout.ToDOT(g))
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render canvas"))
		return
	}
	if err := s.cache.Set(r.Context(), key, svg, cache.TTLArtifact); err != nil {
		s.logger.Warn("artifact cache write failed", "journey", id, "err", err)
	}
	s.writeRaw(w, http.StatusOK, "image/svg+xml", svg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidateParentStructure drops the cached structure of the journey that
// embeds the reordered siblings; its include_subjourneys response carries
// the old order. The parent is resolved through the first sibling's parent
// step. Resolution failure only means the entry lingers until its TTL.
func (s *Server) invalidateParentStructure(ctx context.Context, siblingID string) {
	resolver, ok := s.store.(store.ParentResolver)
	if !ok {
		return
	}
	sib, err := s.store.GetJourney(ctx, siblingID, false)
	if err != nil || sib.ParentStepID == "" {
		return
	}
	parent, err := resolver.FindParent(ctx, sib.ParentStepID)
	if err != nil {
		s.logger.Warn("parent lookup for cache invalidation failed", "journey", siblingID, "err", err)
		return
	}
	if err := s.cache.Delete(ctx, s.keyer.StructureKey(parent.ID)); err != nil {
		s.logger.Warn("structure cache invalidation failed", "journey", parent.ID, "err", err)
	}
}

// resolveParent finds a subjourney's parent when the store can. Failure
// degrades to rendering without the parent overview.
func (s *Server) resolveParent(r *http.Request, current *journey.Journey) *journey.Journey {
	if current == nil || !current.IsSubjourney || current.ParentStepID == "" {
		return nil
	}
	resolver, ok := s.store.(store.ParentResolver)
	if !ok {
		return nil
	}
	parent, err := resolver.FindParent(r.Context(), current.ParentStepID)
	if err != nil {
		s.logger.Debug("parent journey unresolved", "journey", current.ID, "err", err)
		return nil
	}
	return parent
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeRaw(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}
