package postgres

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tukangsapu/sapu/internal/models"
)

// setupTestDB spins up a throwaway Postgres container and applies migrations
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	postgres, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := postgres.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn, "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		postgres.Terminate(ctx)
	}

	return s, cleanup
}

type testData struct {
	store *PostgresStore
	now   time.Time
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)
	now := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

	_, err := s.DB.Exec(`
		INSERT INTO classes (id, nama, tingkat, created_at, updated_at) VALUES
		('c1', 'X A', 'X', 0, 0),
		('c2', 'XI B', 'XI', 0, 0)`)
	require.NoError(t, err, "Failed to insert test classes")

	return &testData{
		store: s,
		now:   now,
	}, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestCreateAndGetReport(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	report := models.Report{
		ID:        "r1",
		ClassID:   "c1",
		Status:    models.StatusKotor,
		Deskripsi: "[Petugas: Budi] sampah di kolong meja",
		Petugas:   "Budi",
		FotoURL:   models.PhotoList{"https://cdn.example.com/public_uploads/a.jpg", "https://cdn.example.com/public_uploads/b.jpg"},
		Tanggal:   "2025-09-01",
		Semester:  1,
		Score:     450,
		CreatedAt: td.now.Unix(),
	}

	t.Run("create report", func(t *testing.T) {
		err := td.store.CreateReport(&report)
		require.NoError(t, err, "Failed to create report")
	})

	t.Run("get report", func(t *testing.T) {
		got, err := td.store.GetReport("r1")
		require.NoError(t, err, "Failed to get report")
		require.NotNil(t, got)
		assert.Equal(t, report.ClassID, got.ClassID)
		assert.Equal(t, report.Status, got.Status)
		assert.Equal(t, report.Deskripsi, got.Deskripsi)
		assert.Equal(t, report.FotoURL, got.FotoURL)
		assert.Equal(t, report.Score, got.Score)
		assert.Equal(t, "X A", got.ClassNama)
	})

	t.Run("get non-existent report", func(t *testing.T) {
		got, err := td.store.GetReport("nope")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestReportPeriodFilter(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	fixtures := []struct {
		id       string
		tanggal  string
		semester int
	}{
		{"sem1", "2025-09-01", 1},
		{"sem2", "2025-03-01", 2},
		{"prev-year", "2024-09-01", 1},
	}
	for _, f := range fixtures {
		err := td.store.CreateReport(&models.Report{
			ID:        f.id,
			ClassID:   "c1",
			Status:    models.StatusBersih,
			Tanggal:   f.tanggal,
			Semester:  f.semester,
			Score:     480,
			CreatedAt: td.now.Unix(),
		})
		require.NoError(t, err)
	}

	t.Run("semester one of current year", func(t *testing.T) {
		reports, err := td.store.ListReportsForPeriod(2025, 1)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "sem1", reports[0].ID)
	})

	t.Run("semester two of current year", func(t *testing.T) {
		reports, err := td.store.ListReportsForPeriod(2025, 2)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "sem2", reports[0].ID)
	})
}

func TestUpdateAndDeleteReport(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	err := td.store.CreateReport(&models.Report{
		ID:        "r1",
		ClassID:   "c2",
		Status:    models.StatusBersih,
		Tanggal:   "2025-09-01",
		Semester:  1,
		Score:     480,
		CreatedAt: td.now.Unix(),
	})
	require.NoError(t, err)

	t.Run("update existing", func(t *testing.T) {
		err := td.store.UpdateReport("r1", models.StatusKotor, "ternyata kotor")
		require.NoError(t, err)

		got, err := td.store.GetReport("r1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusKotor, got.Status)
		assert.Equal(t, "ternyata kotor", got.Deskripsi)
	})

	t.Run("update missing", func(t *testing.T) {
		err := td.store.UpdateReport("nope", models.StatusBersih, "")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("delete existing", func(t *testing.T) {
		err := td.store.DeleteReport("r1")
		require.NoError(t, err)

		got, err := td.store.GetReport("r1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestInspectionGroupOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("seeded groups", func(t *testing.T) {
		groups, err := td.store.ListInspectionGroups()
		require.NoError(t, err)
		assert.Len(t, groups, 3)
	})

	t.Run("update group", func(t *testing.T) {
		err := td.store.UpdateInspectionGroup(2, []string{"XI B"}, []string{"Siti"})
		require.NoError(t, err)

		groups, err := td.store.ListInspectionGroups()
		require.NoError(t, err)
		assert.Equal(t, models.StringList{"XI B"}, groups[1].Classes)
		assert.Equal(t, models.StringList{"Siti"}, groups[1].Officers)
	})
}
