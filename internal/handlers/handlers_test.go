package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tukangsapu/sapu/internal/app"
	"github.com/tukangsapu/sapu/internal/events"
	"github.com/tukangsapu/sapu/internal/intake"
	"github.com/tukangsapu/sapu/internal/models"
	"github.com/tukangsapu/sapu/internal/ranking"
	"github.com/tukangsapu/sapu/internal/scoring"
	"github.com/tukangsapu/sapu/internal/storage/local"
	"github.com/tukangsapu/sapu/internal/store/sqlite"
)

type testEnv struct {
	mux        *http.ServeMux
	service    *app.Service
	store      *sqlite.SQLiteStore
	uploadRoot string
}

// newTestEnv wires the full request path against an in-memory database and
// an on-disk photo store. Auth stays disabled, so every caller is admin.
func newTestEnv(t *testing.T) *testEnv {
	st, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	uploadRoot := t.TempDir()
	objects, err := local.NewLocalStore(uploadRoot, "http://localhost:8080/uploads")
	require.NoError(t, err)

	_, err = st.DB.Exec(`
		INSERT INTO classes (id, nama, tingkat, created_at, updated_at) VALUES
		('c1', 'X A', 'X', 0, 0),
		('c2', 'XI B', 'XI', 0, 0)`)
	require.NoError(t, err)

	bus := events.NewMemoryBus()
	config := &app.Config{}
	config.Recap.KetuaOSIS = "Rina"

	service := &app.Service{
		Config:  config,
		Store:   st,
		Objects: objects,
		Bus:     bus,
		Auth:    &app.Auth{},
		Intake:  intake.New(st, objects, scoring.DefaultScorer(), bus, intake.DefaultPolicy()),
	}

	reportHandler := NewReportHandler(service)
	rankingHandler := NewRankingHandler(service)
	groupHandler := NewGroupHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/reports", reportHandler.HandleSubmitReport)
	mux.HandleFunc("GET /api/v1/reports", reportHandler.HandleListReports)
	mux.HandleFunc("GET /api/v1/reports/{id}", reportHandler.HandleGetReport)
	mux.HandleFunc("PATCH /api/v1/reports/{id}", reportHandler.HandleUpdateReport)
	mux.HandleFunc("DELETE /api/v1/reports/{id}", reportHandler.HandleDeleteReport)
	mux.HandleFunc("GET /api/v1/classes", rankingHandler.HandleListClasses)
	mux.HandleFunc("GET /api/v1/violations", rankingHandler.HandleListViolations)
	mux.HandleFunc("GET /api/v1/ranking", rankingHandler.HandleRanking)
	mux.HandleFunc("GET /api/v1/dashboard", rankingHandler.HandleDashboard)
	mux.HandleFunc("GET /api/v1/recap", rankingHandler.HandleRecap)
	mux.HandleFunc("GET /api/v1/groups", groupHandler.HandleListGroups)
	mux.HandleFunc("PUT /api/v1/groups/{id}", groupHandler.HandleUpdateGroup)

	return &testEnv{
		mux:        mux,
		service:    service,
		store:      st,
		uploadRoot: uploadRoot,
	}
}

type submission struct {
	classID    string
	status     string
	deskripsi  string
	petugas    string
	violations []string
	photos     []string // filenames, content is the filename itself
}

func (e *testEnv) submit(t *testing.T, sub submission) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	require.NoError(t, mw.WriteField("class_id", sub.classID))
	require.NoError(t, mw.WriteField("status", sub.status))
	require.NoError(t, mw.WriteField("deskripsi", sub.deskripsi))
	require.NoError(t, mw.WriteField("petugas", sub.petugas))
	for _, v := range sub.violations {
		require.NoError(t, mw.WriteField("violations", v))
	}
	for _, name := range sub.photos {
		fw, err := mw.CreateFormFile("fotos", name)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader(name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) models.Report {
	var report models.Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	return report
}

func TestSubmitReport(t *testing.T) {
	env := newTestEnv(t)

	t.Run("clean report", func(t *testing.T) {
		w := env.submit(t, submission{classID: "c1", status: "Bersih"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		report := decodeReport(t, w)
		assert.NotEmpty(t, report.ID)
		assert.Equal(t, models.StatusBersih, report.Status)
		assert.Equal(t, 480, report.Score)
		assert.Equal(t, time.Now().Format("2006-01-02"), report.Tanggal)
	})

	t.Run("dirty report with violations and officer", func(t *testing.T) {
		w := env.submit(t, submission{
			classID:    "c1",
			status:     "Kotor",
			deskripsi:  "sampah di kolong meja",
			petugas:    "Budi",
			violations: []string{"lantai_kotor", "sampah_menumpuk"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		report := decodeReport(t, w)
		assert.Equal(t, 460, report.Score)
		assert.Equal(t, "Budi", report.Petugas)
		assert.Equal(t, "[Petugas: Budi] sampah di kolong meja", report.Deskripsi)
	})

	t.Run("photos keep form order", func(t *testing.T) {
		w := env.submit(t, submission{
			classID:   "c1",
			status:    "Kotor",
			deskripsi: "kotor",
			photos:    []string{"satu.jpg", "dua.png"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		report := decodeReport(t, w)
		require.Len(t, report.FotoURL, 2)
		assert.True(t, strings.HasSuffix(report.FotoURL[0], ".jpg"), report.FotoURL[0])
		assert.True(t, strings.HasSuffix(report.FotoURL[1], ".png"), report.FotoURL[1])
	})

	t.Run("missing class", func(t *testing.T) {
		w := env.submit(t, submission{status: "Bersih"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too many photos", func(t *testing.T) {
		w := env.submit(t, submission{
			classID:   "c1",
			status:    "Kotor",
			deskripsi: "kotor",
			photos:    []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg", "6.jpg"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown violation code", func(t *testing.T) {
		w := env.submit(t, submission{
			classID:    "c1",
			status:     "Kotor",
			deskripsi:  "kotor",
			violations: []string{"no_such_code"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetReport(t *testing.T) {
	env := newTestEnv(t)

	created := decodeReport(t, env.submit(t, submission{classID: "c1", status: "Bersih"}))

	w := env.do(t, http.MethodGet, "/api/v1/reports/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeReport(t, w)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "X A", got.ClassNama)

	w = env.do(t, http.MethodGet, "/api/v1/reports/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateReport(t *testing.T) {
	env := newTestEnv(t)

	created := decodeReport(t, env.submit(t, submission{classID: "c1", status: "Bersih"}))

	w := env.do(t, http.MethodPatch, "/api/v1/reports/"+created.ID, map[string]string{
		"status":    "Kotor",
		"deskripsi": "ternyata kotor",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decodeReport(t, env.do(t, http.MethodGet, "/api/v1/reports/"+created.ID, nil))
	assert.Equal(t, models.StatusKotor, got.Status)
	assert.Equal(t, "ternyata kotor", got.Deskripsi)

	t.Run("invalid status", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/api/v1/reports/"+created.ID, map[string]string{
			"status": "Lumayan",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown report", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/api/v1/reports/nope", map[string]string{
			"status": "Bersih",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteReportCleansPhotos(t *testing.T) {
	env := newTestEnv(t)

	created := decodeReport(t, env.submit(t, submission{
		classID:   "c1",
		status:    "Kotor",
		deskripsi: "kotor",
		photos:    []string{"bukti.jpg"},
	}))
	require.Len(t, created.FotoURL, 1)

	objectPath := strings.TrimPrefix(created.FotoURL[0], "http://localhost:8080/uploads/")
	onDisk := filepath.Join(env.uploadRoot, filepath.FromSlash(objectPath))
	_, err := os.Stat(onDisk)
	require.NoError(t, err, "uploaded photo should exist before delete")

	w := env.do(t, http.MethodDelete, "/api/v1/reports/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err), "photo should be removed with the report")

	w = env.do(t, http.MethodGet, "/api/v1/reports/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/reports/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRankingEndpoint(t *testing.T) {
	env := newTestEnv(t)

	reports := []models.Report{
		{ID: "r1", ClassID: "c1", Status: models.StatusBersih, Tanggal: "2025-09-01", Semester: 1, Score: 480},
		{ID: "r2", ClassID: "c1", Status: models.StatusKotor, Tanggal: "2025-09-02", Semester: 1, Score: 440},
	}
	for i := range reports {
		reports[i].CreatedAt = time.Now().Unix()
		require.NoError(t, env.store.CreateReport(&reports[i]))
	}

	w := env.do(t, http.MethodGet, "/api/v1/ranking?year=2025&semester=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Year     int             `json:"year"`
		Semester int             `json:"semester"`
		Ranking  []ranking.Entry `json:"ranking"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2025, body.Year)
	assert.Equal(t, 1, body.Semester)

	require.Len(t, body.Ranking, 2, "classes without reports still rank")
	assert.Equal(t, "X A", body.Ranking[0].Nama)
	assert.Equal(t, 2, body.Ranking[0].ReportCount)
	assert.Equal(t, 1, body.Ranking[0].CleanCount)
	assert.Equal(t, 460.0, body.Ranking[0].AverageScore)
	assert.Equal(t, "XI B", body.Ranking[1].Nama)
	assert.Equal(t, 0, body.Ranking[1].ReportCount)

	t.Run("bad semester", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/ranking?semester=3", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDashboardEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.submit(t, submission{classID: "c1", status: "Bersih"})
	env.submit(t, submission{classID: "c2", status: "Kotor", deskripsi: "kotor"})

	w := env.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats app.DashboardStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 2, stats.TotalReports)
	assert.Equal(t, 1, stats.TotalBersih)
	assert.Equal(t, 1, stats.TotalKotor)
	assert.Equal(t, 2, stats.TodayReports)
	require.NotNil(t, stats.LastReportAt)
}

func TestRecapEndpoint(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.store.CreateReport(&models.Report{
		ID:        "r1",
		ClassID:   "c1",
		Status:    models.StatusKotor,
		Deskripsi: "banyak sampah",
		Tanggal:   "2025-05-02",
		Semester:  2,
		Score:     470,
		CreatedAt: time.Now().Unix(),
	}))

	w := env.do(t, http.MethodGet, "/api/v1/recap?date=2025-05-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	text := w.Body.String()
	assert.Contains(t, text, "LAPORAN KEBERSIHAN KELAS")
	assert.Contains(t, text, "X A : banyak sampah")
	assert.Contains(t, text, "*Rina*")

	t.Run("bad date", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/recap?date=02-05-2025", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogueEndpoints(t *testing.T) {
	env := newTestEnv(t)

	t.Run("classes", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/classes", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Rows []models.Class `json:"rows"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Len(t, body.Rows, 2)
	})

	t.Run("violations", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/violations", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Rows []models.Violation `json:"rows"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, len(models.ViolationCatalogue), len(body.Rows))
	})
}

func TestGroupEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Rows []models.InspectionGroup `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Rows, 3)

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/groups/%d", body.Rows[0].ID), map[string][]string{
		"classes":  {"X A"},
		"officers": {"Budi"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	groups, err := env.store.ListInspectionGroups()
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"X A"}, groups[0].Classes)
	assert.Equal(t, models.StringList{"Budi"}, groups[0].Officers)

	t.Run("unknown group", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1/groups/99", map[string][]string{})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/v1/groups/abc", map[string][]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
