package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"artquiz-service/internal/app"
	"artquiz-service/internal/catalog"
	"artquiz-service/internal/domain"
	"go.uber.org/zap"
)

// APIHandler serves the JSON endpoints next to the websocket: quiz listing, progress, catalog
// browsing and per-painting study tracking.
type APIHandler struct {
	service *app.QuizService
	catalog *catalog.Catalog
	study   *app.StudyTracker
	logger  *zap.Logger
}

func NewAPIHandler(service *app.QuizService, cat *catalog.Catalog, study *app.StudyTracker, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{service: service, catalog: cat, study: study, logger: logger}
}

// Register mounts the endpoints on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /quizzes", h.listQuizzes)
	mux.HandleFunc("GET /progress", h.progress)
	mux.HandleFunc("POST /progress/reset", h.resetProgress)
	mux.HandleFunc("GET /paintings", h.paintings)
	mux.HandleFunc("GET /paintings/{id}", h.painting)
	mux.HandleFunc("GET /artists", h.artists)
	mux.HandleFunc("GET /periods", h.periods)
	if h.study == nil {
		return
	}
	mux.HandleFunc("GET /study", h.studyRecord)
	mux.HandleFunc("GET /paintings/{id}/study", h.paintingStudy)
	mux.HandleFunc("POST /paintings/{id}/favorite", h.studyAction(h.study.ToggleFavorite))
	mux.HandleFunc("POST /paintings/{id}/learned", h.studyAction(h.study.MarkLearned))
	mux.HandleFunc("POST /paintings/{id}/view", h.studyAction(h.study.RecordView))
}

func (h *APIHandler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quizzes)
}

func (h *APIHandler) progress(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Progress())
}

func (h *APIHandler) resetProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetProgress(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Progress())
}

// paintings filters by ?period=, ?artist= and ?q=; filters combine.
func (h *APIHandler) paintings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	out := h.catalog.Search(query.Get("q"))

	if raw := query.Get("period"); raw != "" {
		period, err := domain.ParsePeriod(raw)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
			return
		}
		out = keep(out, func(p domain.Painting) bool { return p.Period == period })
	}
	if artist := query.Get("artist"); artist != "" {
		out = keep(out, func(p domain.Painting) bool { return p.Artist == artist })
	}
	if out == nil {
		out = []domain.Painting{}
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) painting(w http.ResponseWriter, r *http.Request) {
	p, ok := h.catalog.Get(r.PathValue("id"))
	if !ok {
		h.writeJSON(w, http.StatusNotFound, errorPayload{Message: "painting not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *APIHandler) artists(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Artists())
}

type periodCount struct {
	Period domain.Period `json:"period"`
	Count  int           `json:"count"`
}

// periods lists every period in chronological order with its catalog count.
func (h *APIHandler) periods(w http.ResponseWriter, r *http.Request) {
	counts := h.catalog.CountByPeriod()
	out := make([]periodCount, 0, len(domain.AllPeriods()))
	for _, p := range domain.AllPeriods() {
		out = append(out, periodCount{Period: p, Count: counts[p]})
	}
	h.writeJSON(w, http.StatusOK, out)
}

type studySummary struct {
	domain.StudyRecord
	TotalLearned int `json:"totalLearned"`
}

func (h *APIHandler) studyRecord(w http.ResponseWriter, r *http.Request) {
	record := h.study.Snapshot()
	h.writeJSON(w, http.StatusOK, studySummary{StudyRecord: record, TotalLearned: record.TotalLearned()})
}

func (h *APIHandler) paintingStudy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.catalog.Get(id); !ok {
		h.writeJSON(w, http.StatusNotFound, errorPayload{Message: "painting not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.study.Painting(id))
}

// studyAction applies a study change to the painting named in the path. Only catalog paintings
// can be tracked.
func (h *APIHandler) studyAction(apply func(context.Context, string) (domain.PaintingStudy, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, ok := h.catalog.Get(id); !ok {
			h.writeJSON(w, http.StatusNotFound, errorPayload{Message: "painting not found"})
			return
		}
		state, err := apply(r.Context(), id)
		if err != nil {
			h.fail(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, state)
	}
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrQuizLocked):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("api request failed", zap.Error(err))
	}
	h.writeJSON(w, status, errorPayload{Message: err.Error()})
}

// writeJSON encodes v before touching the response so an encode failure can still become a 500.
func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorPayload{Message: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Debug("write response", zap.Error(err))
	}
}

func keep(in []domain.Painting, pred func(domain.Painting) bool) []domain.Painting {
	var out []domain.Painting
	for _, p := range in {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
