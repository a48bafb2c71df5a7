package handlers

import (
	"net/http"
	"time"

	"encoding/json"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/app"
	"github.com/tukangsapu/sapu/internal/intake"
	"github.com/tukangsapu/sapu/internal/models"
)

const maxSubmissionBytes = 32 << 20

type ReportHandler struct {
	service *app.Service
}

func NewReportHandler(service *app.Service) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// HandleSubmitReport accepts the multipart submission form: class_id,
// status, deskripsi, petugas, repeated violations fields and up to five
// photos under "fotos". Submission stays open to anonymous callers by
// design.
func (h *ReportHandler) HandleSubmitReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		logger.Debug.Printf("Malformed multipart submission: %v", err)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
		return
	}

	sub := intake.Submission{
		ClassID:        r.FormValue("class_id"),
		Status:         models.ReportStatus(r.FormValue("status")),
		Description:    r.FormValue("deskripsi"),
		OfficerName:    r.FormValue("petugas"),
		ViolationCodes: r.Form["violations"],
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["fotos"] {
			f, err := header.Open()
			if err != nil {
				http.Error(w, "Failed to read uploaded photo", http.StatusBadRequest)
				observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
				return
			}
			defer f.Close()

			sub.Photos = append(sub.Photos, intake.Photo{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        f,
			})
		}
	}

	report, err := h.service.Intake.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, report)
	observe(r.URL.Path, r.Method, start, http.StatusCreated)
}

func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	report, err := h.service.Store.GetReport(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}
	if report == nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		observe(r.URL.Path, r.Method, start, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, report)
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *ReportHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !h.requireAdmin(w, r) {
		observe(r.URL.Path, r.Method, start, http.StatusUnauthorized)
		return
	}

	reports, err := h.service.Store.ListReports(0)
	if err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows": reports,
	})
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *ReportHandler) HandleUpdateReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !h.requireAdmin(w, r) {
		observe(r.URL.Path, r.Method, start, http.StatusUnauthorized)
		return
	}

	var body struct {
		Status    models.ReportStatus `json:"status"`
		Deskripsi string              `json:"deskripsi"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		observe(r.URL.Path, r.Method, start, http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateReport(r.Context(), r.PathValue("id"), body.Status, body.Deskripsi); err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *ReportHandler) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !h.requireAdmin(w, r) {
		observe(r.URL.Path, r.Method, start, http.StatusUnauthorized)
		return
	}

	if err := h.service.DeleteReport(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		observe(r.URL.Path, r.Method, start, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
	observe(r.URL.Path, r.Method, start, http.StatusOK)
}

func (h *ReportHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, err := h.service.Auth.UserFromRequest(r)
	if err != nil {
		logger.Error.Printf("Auth failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}
	if !user.IsAdmin() {
		http.Error(w, "Admin privileges required", http.StatusForbidden)
		return false
	}
	return true
}
