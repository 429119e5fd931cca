// Package api is the HTTP adapter in front of the engine.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/willofcode/flowmind/internal/calendar"
	"github.com/willofcode/flowmind/internal/engine"
	"github.com/willofcode/flowmind/internal/logger"
	"github.com/willofcode/flowmind/internal/models"
)

const maxBodyBytes = 1 << 20

// Engine is the part of *engine.Engine the API calls.
type Engine interface {
	Generate(ctx context.Context, req engine.Request) (engine.Response, error)
	Layout(ctx context.Context, personID, date string, commitments []models.Commitment, override *models.ActiveHoursProfile, state models.StateSignals) (engine.Preview, error)
}

type API struct {
	eng Engine
	cal calendar.Calendar
}

func New(eng Engine, cal calendar.Calendar) *API {
	return &API{eng: eng, cal: cal}
}

// Routes builds the router.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/schedule", a.handleSchedule)
		r.Get("/windows", a.handleWindows)
	})
	return r
}

// Server returns an http.Server serving Routes on addr.
func (a *API) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSchedule runs one generation. When the body omits "commitments"
// they are read from the calendar.
func (a *API) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.Commitments == nil && req.PersonID != "" && req.Date != "" {
		existing, err := a.cal.ListExisting(r.Context(), req.PersonID, req.Date)
		if err != nil {
			logger.Error("List calendar failed", "person", req.PersonID, "day", req.Date, "error", err)
			writeError(w, http.StatusBadGateway, "calendar_unavailable")
			return
		}
		req.Commitments = calendar.Externals(existing)
	}

	resp, err := a.eng.Generate(r.Context(), req)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type windowsResponse struct {
	Date      string                  `json:"date"`
	Active    models.ActiveWindow     `json:"active"`
	Blocks    []models.BusyBlock      `json:"busy_blocks"`
	Windows   []models.FreeWindow     `json:"free_windows"`
	Intensity models.IntensityScore   `json:"intensity"`
	Policy    models.GenerationPolicy `json:"policy"`
}

func (a *API) handleWindows(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	personID, date := q.Get("person"), q.Get("date")
	if personID == "" || date == "" {
		writeError(w, http.StatusBadRequest, "person_and_date_required")
		return
	}

	state, err := stateFromQuery(q.Get("mood"), q.Get("energy"), q.Get("stress"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_state")
		return
	}

	existing, err := a.cal.ListExisting(r.Context(), personID, date)
	if err != nil {
		logger.Error("List calendar failed", "person", personID, "day", date, "error", err)
		writeError(w, http.StatusBadGateway, "calendar_unavailable")
		return
	}

	preview, err := a.eng.Layout(r.Context(), personID, date, existing, nil, state)
	if err != nil {
		a.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, windowsResponse{
		Date:      preview.Date,
		Active:    preview.Layout.Active,
		Blocks:    preview.Layout.Blocks,
		Windows:   preview.Layout.Windows,
		Intensity: preview.Layout.Intensity,
		Policy:    preview.Policy,
	})
}

// stateFromQuery parses optional state signals, defaulting to a neutral day.
func stateFromQuery(mood, energy, stress string) (models.StateSignals, error) {
	state := models.StateSignals{MoodScore: 5, EnergyLevel: models.LevelMedium, StressLevel: models.LevelMedium}
	if mood != "" {
		v, err := strconv.ParseFloat(mood, 64)
		if err != nil {
			return state, err
		}
		state.MoodScore = v
	}
	if energy != "" {
		l, err := models.ParseLevel(energy)
		if err != nil {
			return state, err
		}
		state.EnergyLevel = l
	}
	if stress != "" {
		l, err := models.ParseLevel(stress)
		if err != nil {
			return state, err
		}
		state.StressLevel = l
	}
	return state, nil
}

func (a *API) writeEngineError(w http.ResponseWriter, err error) {
	var inErr *engine.InputError
	var writeErr *engine.CalendarWriteError
	switch {
	case errors.As(err, &inErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "invalid_request",
			"conflicts": inErr.Result.Conflicts,
		})
	case errors.As(err, &writeErr):
		logger.Error("Calendar write failed", "written", writeErr.Written, "total", writeErr.Total, "error", writeErr.Err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   "calendar_write_failed",
			"written": writeErr.Written,
			"total":   writeErr.Total,
		})
	default:
		logger.Error("Generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
