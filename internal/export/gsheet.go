package export

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/app"
	"github.com/tukangsapu/sapu/internal/scoring"
)

// GSheetExporter pushes the class leaderboard into a spreadsheet on a
// cron schedule, one exporter per configured sheet.
type GSheetExporter struct {
	service       *app.Service
	cfg           app.GSheetConfig
	sheetsService *sheets.Service
}

// ScheduleExports wires every configured sheet into one shared scheduler
// and starts it.
func ScheduleExports(service *app.Service) (*gocron.Scheduler, error) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)

	for _, cfg := range service.Config.GSheet {
		svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service: %w", err)
		}

		exporter := &GSheetExporter{
			service:       service,
			cfg:           cfg,
			sheetsService: svc,
		}

		if _, err := scheduler.Cron(cfg.Schedule).Do(func() {
			if err := exporter.Export(); err != nil {
				logger.Error.Printf("Ranking export to %s failed: %v", exporter.cfg.SheetID, err)
			}
		}); err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	scheduler.StartAsync()
	return scheduler, nil
}

// Export writes the current leaderboard into the configured range. Year
// or semester left at zero in config track the current period.
func (e *GSheetExporter) Export() error {
	now := time.Now()

	year := e.cfg.Year
	if year == 0 {
		year = now.Year()
	}
	semester := e.cfg.Semester
	if semester == 0 {
		semester = scoring.SemesterOf(now)
	}

	entries, err := e.service.Ranking(year, semester)
	if err != nil {
		return fmt.Errorf("failed to compute ranking: %w", err)
	}

	values := [][]interface{}{
		{"Peringkat", "Kelas", "Tingkat", "Laporan", "Bersih", "Rata-rata Skor", "% Bersih"},
	}
	for i, entry := range entries {
		values = append(values, []interface{}{
			i + 1,
			entry.Nama,
			entry.Tingkat,
			entry.ReportCount,
			entry.CleanCount,
			entry.AverageScore,
			entry.CleanPercentage,
		})
	}

	writeRange := fmt.Sprintf("%s!A1", e.cfg.SheetName)
	_, err = e.sheetsService.Spreadsheets.Values.Update(
		e.cfg.SheetID,
		writeRange,
		&sheets.ValueRange{Values: values},
	).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to write ranking to sheet: %w", err)
	}

	logger.Info.Printf("Exported %d ranking rows to %s (%d/S%d)", len(entries), e.cfg.SheetID, year, semester)
	return nil
}
