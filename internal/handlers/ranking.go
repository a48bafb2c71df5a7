package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tukangsapu/sapu/internal/app"
	"github.com/tukangsapu/sapu/internal/export"
	"github.com/tukangsapu/sapu/internal/models"
	"github.com/tukangsapu/sapu/internal/scoring"
)

type RankingHandler struct {
	service *app.Service
}

func NewRankingHandler(service *app.Service) *RankingHandler {
	return &RankingHandler{
		service: service,
	}
}

// HandleRanking serves the leaderboard for ?year=&semester=, defaulting to
// the current period. The board is recomputed in full on every request.
func (h *RankingHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	now := time.Now()

	year := now.Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
			return
		}
		year = parsed
	}

	semester := scoring.SemesterOf(now)
	if v := r.URL.Query().Get("semester"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || (parsed != 1 && parsed != 2) {
			http.Error(w, "Semester must be 1 or 2", http.StatusBadRequest)
			observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
			return
		}
		semester = parsed
	}

	entries, err := h.service.Ranking(year, semester)
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"semester": semester,
		"ranking":  entries,
	})
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *RankingHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	stats, err := h.service.Dashboard()
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

// HandleRecap renders the shareable daily recap text for ?date= (default
// today).
func (h *RankingHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "Date must look like 2006-01-02", http.StatusBadRequest)
		observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
		return
	}

	reports, err := h.service.ReportsForDate(date)
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	text := export.BuildDailyRecap(reports, date, h.service.Config.Recap.KetuaOSIS)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *RankingHandler) HandleListClasses(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	classes, err := h.service.Store.ListClasses()
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": classes,
	})
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *RankingHandler) HandleListViolations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": models.ViolationCatalogue,
	})
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}
