package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tukangsapu/sapu/internal/models"
)

type ReportStore interface {
	Close() error
	ApplyMigrations(dir string) error

	ListClasses() ([]models.Class, error)
	GetClass(id string) (*models.Class, error)

	CreateReport(report *models.Report) error
	GetReport(id string) (*models.Report, error)
	ListReports(limit int) ([]models.Report, error)
	ListReportsForPeriod(year, semester int) ([]models.Report, error)
	UpdateReport(id string, status models.ReportStatus, deskripsi string) error
	DeleteReport(id string) error

	ListInspectionGroups() ([]models.InspectionGroup, error)
	UpdateInspectionGroup(id int64, classes, officers []string) error
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) ListClasses() ([]models.Class, error) {
	var classes []models.Class
	err := s.DB.Select(&classes, `
		SELECT id, nama, tingkat, created_at, updated_at
		FROM classes
		ORDER BY nama ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

func (s *BaseStore) GetClass(id string) (*models.Class, error) {
	var class models.Class
	query := s.Converter(`
		SELECT id, nama, tingkat, created_at, updated_at
		FROM classes
		WHERE id = ?
	`)

	err := s.DB.Get(&class, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &class, nil
}

func (s *BaseStore) CreateReport(report *models.Report) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO reports (id, class_id, status, deskripsi, petugas, foto_url, tanggal, semester, score, created_at)
		VALUES (:id, :class_id, :status, :deskripsi, :petugas, :foto_url, :tanggal, :semester, :score, :created_at)
	`, report)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (s *BaseStore) GetReport(id string) (*models.Report, error) {
	var report models.Report
	query := s.Converter(`
		SELECT r.id, r.class_id, r.status, r.deskripsi, r.petugas, r.foto_url,
		       r.tanggal, r.semester, r.score, r.created_at,
		       c.nama AS class_nama
		FROM reports r
		JOIN classes c ON c.id = r.class_id
		WHERE r.id = ?
	`)

	err := s.DB.Get(&report, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (s *BaseStore) ListReports(limit int) ([]models.Report, error) {
	query := `
		SELECT r.id, r.class_id, r.status, r.deskripsi, r.petugas, r.foto_url,
		       r.tanggal, r.semester, r.score, r.created_at,
		       c.nama AS class_nama
		FROM reports r
		JOIN classes c ON c.id = r.class_id
		ORDER BY r.created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var reports []models.Report
	err := s.DB.Select(&reports, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *BaseStore) ListReportsForPeriod(year, semester int) ([]models.Report, error) {
	// tanggal is an ISO date string, so the year window is a plain
	// lexicographic range
	query := s.Converter(`
		SELECT r.id, r.class_id, r.status, r.deskripsi, r.petugas, r.foto_url,
		       r.tanggal, r.semester, r.score, r.created_at,
		       c.nama AS class_nama
		FROM reports r
		JOIN classes c ON c.id = r.class_id
		WHERE r.semester = ?
		AND r.tanggal >= ?
		AND r.tanggal <= ?
		ORDER BY r.tanggal ASC, r.created_at ASC
	`)

	var reports []models.Report
	err := s.DB.Select(&reports, query,
		semester,
		fmt.Sprintf("%04d-01-01", year),
		fmt.Sprintf("%04d-12-31", year),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for period: %w", err)
	}
	return reports, nil
}

func (s *BaseStore) UpdateReport(id string, status models.ReportStatus, deskripsi string) error {
	query := s.Converter(`
		UPDATE reports
		SET status = ?, deskripsi = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query, status, deskripsi, id)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *BaseStore) DeleteReport(id string) error {
	query := s.Converter(`DELETE FROM reports WHERE id = ?`)

	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *BaseStore) ListInspectionGroups() ([]models.InspectionGroup, error) {
	var groups []models.InspectionGroup
	err := s.DB.Select(&groups, `
		SELECT id, classes, officers
		FROM inspection_groups
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspection groups: %w", err)
	}
	return groups, nil
}

func (s *BaseStore) UpdateInspectionGroup(id int64, classes, officers []string) error {
	query := s.Converter(`
		UPDATE inspection_groups
		SET classes = ?, officers = ?
		WHERE id = ?
	`)

	res, err := s.DB.Exec(query, models.StringList(classes), models.StringList(officers), id)
	if err != nil {
		return fmt.Errorf("failed to update inspection group: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
