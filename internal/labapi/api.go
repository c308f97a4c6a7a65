// Package labapi exposes the workbench over HTTP and websocket.
//
// Routes (Go 1.22 ServeMux patterns):
//
//	GET    /v1/catalog/substances
//	GET    /v1/catalog/substances/{id}
//	GET    /v1/catalog/reactions[?substance=ID]
//	GET    /v1/catalog/reactions/{key}        key is "A+B" in either order
//	GET    /v1/catalog/exercises
//	POST   /v1/benches
//	GET    /v1/benches/{id}
//	DELETE /v1/benches/{id}
//	POST   /v1/benches/{id}/mix
//	PUT    /v1/benches/{id}/mode
//	POST   /v1/benches/{id}/mode/toggle
//	POST   /v1/benches/{id}/advance
//	POST   /v1/benches/{id}/reset
//	GET    /v1/benches/{id}/progress
//	GET    /v1/benches/{id}/report.xlsx
//	GET    /v1/benches/{id}/ws
package labapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/p-n-ai/pai-lab/internal/catalog"
	"github.com/p-n-ai/pai-lab/internal/lab"
	"github.com/p-n-ai/pai-lab/internal/report"
	"github.com/p-n-ai/pai-lab/internal/workbench"
)

// Handler serves the lab API.
type Handler struct {
	engine *workbench.Engine
}

// New creates a handler backed by engine.
func New(engine *workbench.Engine) *Handler {
	return &Handler{engine: engine}
}

// Register adds the lab routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/catalog/substances", h.handleListSubstances)
	mux.HandleFunc("GET /v1/catalog/substances/{id}", h.handleGetSubstance)
	mux.HandleFunc("GET /v1/catalog/reactions", h.handleListReactions)
	mux.HandleFunc("GET /v1/catalog/reactions/{key}", h.handleGetReaction)
	mux.HandleFunc("GET /v1/catalog/exercises", h.handleListExercises)

	mux.HandleFunc("POST /v1/benches", h.handleOpenBench)
	mux.HandleFunc("GET /v1/benches/{id}", h.handleGetBench)
	mux.HandleFunc("DELETE /v1/benches/{id}", h.handleCloseBench)
	mux.HandleFunc("POST /v1/benches/{id}/mix", h.handleMix)
	mux.HandleFunc("PUT /v1/benches/{id}/mode", h.handleSetMode)
	mux.HandleFunc("POST /v1/benches/{id}/mode/toggle", h.handleToggleMode)
	mux.HandleFunc("POST /v1/benches/{id}/advance", h.handleAdvance)
	mux.HandleFunc("POST /v1/benches/{id}/reset", h.handleReset)
	mux.HandleFunc("GET /v1/benches/{id}/progress", h.handleProgress)
	mux.HandleFunc("GET /v1/benches/{id}/report.xlsx", h.handleReport)
	mux.HandleFunc("GET /v1/benches/{id}/ws", h.handleWebsocket)
}

// substanceView adds derived presentation fields to a substance.
type substanceView struct {
	catalog.Substance
	HazardMarks string `json:"hazard_marks"`
}

func newSubstanceView(s catalog.Substance) substanceView {
	return substanceView{Substance: s, HazardMarks: s.HazardMarks()}
}

func (h *Handler) handleListSubstances(w http.ResponseWriter, r *http.Request) {
	subs := h.engine.Catalog().Substances()
	out := make([]substanceView, 0, len(subs))
	for _, s := range subs {
		out = append(out, newSubstanceView(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetSubstance(w http.ResponseWriter, r *http.Request) {
	id := catalog.NormalizeID(r.PathValue("id"))
	s, ok := h.engine.Catalog().Substance(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("substance %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, newSubstanceView(s))
}

func (h *Handler) handleListReactions(w http.ResponseWriter, r *http.Request) {
	c := h.engine.Catalog()
	var out []catalog.Reaction
	if id := catalog.NormalizeID(r.URL.Query().Get("substance")); id != "" {
		out = c.ReactionsFor(id)
	} else {
		out = c.Reactions()
	}
	if out == nil {
		out = []catalog.Reaction{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetReaction(w http.ResponseWriter, r *http.Request) {
	key, err := catalog.ParsePairKey(r.PathValue("key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rx, ok := h.engine.Catalog().Reaction(key)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no reaction for %s", key))
		return
	}
	writeJSON(w, http.StatusOK, rx)
}

func (h *Handler) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Catalog().Exercises())
}

func (h *Handler) handleOpenBench(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.Open(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/benches/"+st.ID)
	writeJSON(w, http.StatusCreated, st)
}

func (h *Handler) handleGetBench(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.State(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleCloseBench(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Close(r.Context(), r.PathValue("id")); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMix(w http.ResponseWriter, r *http.Request) {
	var req mixRequest
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		h.writeEngineError(w, err)
		return
	}
	res, err := h.engine.Mix(r.Context(), r.PathValue("id"), req.Container, req.Incoming)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		h.writeEngineError(w, err)
		return
	}
	mode, err := lab.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := h.engine.SetMode(r.Context(), r.PathValue("id"), mode)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleToggleMode(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.ToggleMode(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Advance(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		h.writeEngineError(w, err)
		return
	}
	scope, err := workbench.ParseResetScope(req.Scope)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := h.engine.Reset(r.Context(), r.PathValue("id"), scope)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.State(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Progress)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.State(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	// Render fully before writing headers so a failure can still be a 500.
	var buf bytes.Buffer
	if err := report.Write(&buf, st); err != nil {
		slog.Error("rendering report", "bench_id", st.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="lab-%s.xlsx"`, st.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// statusFor maps engine and request errors to HTTP status codes.
func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad), errors.Is(err, workbench.ErrEmptySubstance):
		return http.StatusBadRequest
	case errors.Is(err, workbench.ErrBenchNotFound):
		return http.StatusNotFound
	case errors.Is(err, workbench.ErrBenchLimit):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("lab request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
