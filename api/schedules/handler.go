// Package schedules exposes group draws and scheduling runs over HTTP.
package schedules

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stonk0105/volleysched/app"
	"github.com/stonk0105/volleysched/core/grouping"
	"github.com/stonk0105/volleysched/core/model"
	"github.com/stonk0105/volleysched/core/schedule"
	"github.com/stonk0105/volleysched/core/store"
	"github.com/stonk0105/volleysched/pkg/export"
	"github.com/stonk0105/volleysched/pkg/input"
)

const maxBodyBytes = 1 << 20

// Service is the part of app.Service used by the handlers.
type Service interface {
	Schedule(ctx context.Context, t model.Tournament) (store.RunRecord, error)
	Draw(roster []model.Team, affiliations map[string][]string, seed uint64) (*app.Draw, error)
	Runs(ctx context.Context, q store.RunQuery) ([]store.RunRecord, error)
	Run(ctx context.Context, id string) (store.RunRecord, error)
}

// Options configure the router.
type Options struct {
	// Token protects the POST routes with "Authorization: Bearer <token>" when non-empty.
	Token       string
	CORSOrigins []string
}

type handler struct {
	svc Service
}

// NewRouter returns the API routes:
//
//	POST /api/groups                    draw groups from a roster document
//	POST /api/schedules                 schedule a tournament document
//	GET  /api/schedules                 list runs (start, end, status, limit)
//	GET  /api/schedules/{id}            one run
//	GET  /api/schedules/{id}/{artifact} schedule.csv, referee_counts.csv, groupings.csv or referee_counts.html
func NewRouter(svc Service, opts Options) http.Handler {
	h := &handler{svc: svc}
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/schedules", h.listRuns)
		r.Get("/schedules/{id}", h.getRun)
		r.Get("/schedules/{id}/{artifact}", h.getArtifact)
		r.Group(func(r chi.Router) {
			r.Use(BearerToken(opts.Token))
			r.Post("/groups", h.drawGroups)
			r.Post("/schedules", h.createRun)
		})
	})
	return r
}

// BearerToken rejects requests without the expected bearer token. An empty
// token lets every request through.
func BearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) drawGroups(w http.ResponseWriter, r *http.Request) {
	doc, err := input.DecodeRoster(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := h.svc.Draw(doc.Teams, doc.Affiliations, doc.Seed)
	switch {
	case errors.Is(err, grouping.ErrInsufficientTeams):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, grouping.ErrInvalidRoster):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, d)
	}
}

func (h *handler) createRun(w http.ResponseWriter, r *http.Request) {
	doc, err := input.DecodeTournament(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, err := doc.Tournament()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.svc.Schedule(r.Context(), t)
	writeJSON(w, runStatusCode(err), rec)
}

func runStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.Is(err, schedule.ErrInfeasible), errors.Is(err, schedule.ErrNoSchedule):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrInvalidTournament):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseQuery(r *http.Request) (store.RunQuery, error) {
	var q store.RunQuery
	v := r.URL.Query()
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.End = t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, errors.New("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	q.Status = v.Get("status")
	return q, nil
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := h.svc.Runs(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []store.RunRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (store.RunRecord, bool) {
	rec, err := h.svc.Run(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return rec, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return rec, false
	}
	return rec, true
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	if rec, ok := h.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, rec)
	}
}

func (h *handler) getArtifact(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if rec.Result == nil {
		writeError(w, http.StatusNotFound, "run "+rec.ID+" has no schedule")
		return
	}
	res := rec.Result
	var err error
	switch chi.URLParam(r, "artifact") {
	case export.Files.Schedule:
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteScheduleCSV(w, res.Schedule)
	case export.Files.Referees:
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteRefereeCountsCSV(w, res.RefereeCounts)
	case export.Files.Groupings:
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteGroupingsCSV(w, res.Groupings)
	case export.Files.Chart:
		var html string
		if html, err = export.RefereeChartHTML(res.RefereeCounts); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, err = w.Write([]byte(html))
		}
	default:
		writeError(w, http.StatusNotFound, "unknown artifact")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
