package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/apperr"
	"github.com/tukangsapu/sapu/internal/events"
	"github.com/tukangsapu/sapu/internal/intake"
	"github.com/tukangsapu/sapu/internal/models"
	"github.com/tukangsapu/sapu/internal/ranking"
	"github.com/tukangsapu/sapu/internal/storage"
	"github.com/tukangsapu/sapu/internal/store"
)

type Service struct {
	Config  *Config
	Store   store.ReportStore
	Objects storage.ObjectStore
	Bus     events.Bus
	Auth    *Auth
	Intake  *intake.Intake
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	objects, err := NewObjectStore(context.Background(), config.Storage.DSN, config.Storage.PublicBaseURL)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	var bus events.Bus
	if config.Events.RedisURL != "" {
		bus, err = events.NewRedisBus(config.Events.RedisURL, config.Events.Channel)
		if err != nil {
			st.Close()
			objects.Close()
			return nil, fmt.Errorf("failed to init event bus: %w", err)
		}
	} else {
		bus = events.NewMemoryBus()
	}

	auth, err := NewAuth(config)
	if err != nil {
		st.Close()
		objects.Close()
		bus.Close()
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	scorer := config.Scoring

	return &Service{
		Config:  config,
		Store:   st,
		Objects: objects,
		Bus:     bus,
		Auth:    auth,
		Intake:  intake.New(st, objects, &scorer, bus, config.Intake),
	}, nil
}

// Ranking recomputes the full leaderboard for the requested window. Every
// class in the catalogue appears, classes without reports with zero stats.
func (s *Service) Ranking(year, semester int) ([]ranking.Entry, error) {
	classes, err := s.Store.ListClasses()
	if err != nil {
		return nil, &apperr.FetchError{What: "classes", Err: err}
	}

	reports, err := s.Store.ListReportsForPeriod(year, semester)
	if err != nil {
		return nil, &apperr.FetchError{What: "reports", Err: err}
	}

	return ranking.Rank(classes, reports), nil
}

type DashboardStats struct {
	TotalReports int    `json:"total_reports"`
	TotalBersih  int    `json:"total_bersih"`
	TotalKotor   int    `json:"total_kotor"`
	TodayReports int    `json:"today_reports"`
	LastReportAt *int64 `json:"last_report_at,omitempty"`
}

func (s *Service) Dashboard() (*DashboardStats, error) {
	reports, err := s.Store.ListReports(0)
	if err != nil {
		return nil, &apperr.FetchError{What: "reports", Err: err}
	}

	today := time.Now().Format("2006-01-02")
	stats := &DashboardStats{}
	for _, r := range reports {
		stats.TotalReports++
		switch r.Status {
		case models.StatusBersih:
			stats.TotalBersih++
		case models.StatusKotor:
			stats.TotalKotor++
		}
		if r.Tanggal == today {
			stats.TodayReports++
		}
		if stats.LastReportAt == nil || r.CreatedAt > *stats.LastReportAt {
			created := r.CreatedAt
			stats.LastReportAt = &created
		}
	}

	return stats, nil
}

// ReportsForDate returns the reports written on one calendar date, for the
// daily recap.
func (s *Service) ReportsForDate(date string) ([]models.Report, error) {
	all, err := s.Store.ListReports(0)
	if err != nil {
		return nil, &apperr.FetchError{What: "reports", Err: err}
	}

	var out []models.Report
	for _, r := range all {
		if r.Tanggal == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) UpdateReport(ctx context.Context, id string, status models.ReportStatus, deskripsi string) error {
	if !status.Valid() {
		return apperr.Validation("status", "status must be Bersih or Kotor")
	}

	if err := s.Store.UpdateReport(id, status, deskripsi); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return &apperr.PersistenceError{Op: "update report", Err: err}
	}

	s.publish(ctx, events.Change{Table: "reports", Op: events.OpUpdate, ID: id})
	return nil
}

// DeleteReport removes the row and its photos. Storage cleanup runs first
// and is best-effort; a row delete failure after cleanup is not rolled
// back.
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	report, err := s.Store.GetReport(id)
	if err != nil {
		return &apperr.FetchError{What: "report", Err: err}
	}
	if report == nil {
		return sql.ErrNoRows
	}

	if len(report.FotoURL) > 0 {
		paths := make([]string, 0, len(report.FotoURL))
		for _, url := range report.FotoURL {
			if p := storage.PathFromURL(url); p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) > 0 {
			if err := s.Objects.Remove(ctx, paths); err != nil {
				logger.Error.Printf("Photo cleanup for report %s: %v", id, err)
			}
		}
	}

	if err := s.Store.DeleteReport(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return &apperr.PersistenceError{Op: "delete report", Err: err}
	}

	s.publish(ctx, events.Change{Table: "reports", Op: events.OpDelete, ID: id})
	return nil
}

func (s *Service) UpdateInspectionGroup(ctx context.Context, id int64, classes, officers []string) error {
	if err := s.Store.UpdateInspectionGroup(id, classes, officers); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return &apperr.PersistenceError{Op: "update inspection group", Err: err}
	}

	s.publish(ctx, events.Change{Table: "inspection_groups", Op: events.OpUpdate, ID: fmt.Sprintf("%d", id)})
	return nil
}

func (s *Service) publish(ctx context.Context, change events.Change) {
	if err := s.Bus.Publish(ctx, change); err != nil {
		logger.Error.Printf("Failed to publish change event: %v", err)
	}
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Objects.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	if err := s.Bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
