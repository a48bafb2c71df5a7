package handlers

import (
	"net/http"
	"strconv"
	"time"

	"encoding/json"

	"github.com/tukangsapu/sapu/internal/app"
)

type GroupHandler struct {
	service *app.Service
}

func NewGroupHandler(service *app.Service) *GroupHandler {
	return &GroupHandler{
		service: service,
	}
}

func (h *GroupHandler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	groups, err := h.service.Store.ListInspectionGroups()
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": groups,
	})
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *GroupHandler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	reportHandler := ReportHandler{service: h.service}
	if !reportHandler.requireAdmin(w, r) {
		observe(r.URL.Path, r.Method, start, http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid group id", http.StatusBadRequest)
		observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
		return
	}

	var body struct {
		Classes  []string `json:"classes"`
		Officers []string `json:"officers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateInspectionGroup(r.Context(), id, body.Classes, body.Officers); err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}
