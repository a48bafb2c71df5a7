package intake

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/apperr"
	"github.com/tukangsapu/sapu/internal/events"
	"github.com/tukangsapu/sapu/internal/metrics"
	"github.com/tukangsapu/sapu/internal/models"
	"github.com/tukangsapu/sapu/internal/scoring"
	"github.com/tukangsapu/sapu/internal/storage"
	"github.com/tukangsapu/sapu/internal/store"
)

// Photo is one submitted image blob.
type Photo struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// Submission is the raw intake contract. OfficerName is free text because
// anonymous submission has no authenticated user row to reference.
type Submission struct {
	ClassID        string
	Status         models.ReportStatus
	Description    string
	OfficerName    string
	ViolationCodes []string
	Photos         []Photo
}

// Policy is the configurable part of intake validation.
type Policy struct {
	MaxPhotos               int  `toml:"max_photos"`
	RequireDirtyDescription bool `toml:"require_dirty_description"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxPhotos:               models.MaxPhotosPerReport,
		RequireDirtyDescription: true,
	}
}

type Intake struct {
	store   store.ReportStore
	objects storage.ObjectStore
	scorer  *scoring.Scorer
	bus     events.Bus
	policy  Policy

	now func() time.Time
}

func New(st store.ReportStore, objects storage.ObjectStore, scorer *scoring.Scorer, bus events.Bus, policy Policy) *Intake {
	return &Intake{
		store:   st,
		objects: objects,
		scorer:  scorer,
		bus:     bus,
		policy:  policy,
		now:     time.Now,
	}
}

// Submit validates a submission, uploads its photos and persists the
// report. Validation failures happen before any network call. All photo
// uploads must succeed before the insert is attempted; any upload failure
// aborts the whole submission and nothing is persisted. An insert failure
// after successful uploads leaves the uploaded objects orphaned, which is
// accepted (the admin delete path is the one that cleans storage).
func (in *Intake) Submit(ctx context.Context, sub Submission) (*models.Report, error) {
	violations, err := in.validate(&sub)
	if err != nil {
		return nil, err
	}

	score := in.scorer.Score(sub.Status, violations)

	deskripsi := strings.TrimSpace(sub.Description)
	officer := strings.TrimSpace(sub.OfficerName)
	if officer != "" {
		deskripsi = fmt.Sprintf("[Petugas: %s] %s", officer, deskripsi)
	}

	urls, err := in.uploadPhotos(ctx, sub.Photos)
	if err != nil {
		return nil, err
	}

	today := in.now()
	report := &models.Report{
		ID:        uuid.NewString(),
		ClassID:   sub.ClassID,
		Status:    sub.Status,
		Deskripsi: deskripsi,
		Petugas:   officer,
		FotoURL:   urls,
		Tanggal:   today.Format("2006-01-02"),
		Semester:  scoring.SemesterOf(today),
		Score:     score,
		CreatedAt: today.Unix(),
	}

	if err := in.store.CreateReport(report); err != nil {
		return nil, &apperr.PersistenceError{Op: "create report", Err: err}
	}

	metrics.ReportsTotal.WithLabelValues(string(report.Status)).Inc()
	metrics.ReportScoreHistogram.WithLabelValues(string(report.Status)).Observe(float64(report.Score))

	if err := in.bus.Publish(ctx, events.Change{
		Table: "reports",
		Op:    events.OpInsert,
		ID:    report.ID,
	}); err != nil {
		logger.Error.Printf("Failed to publish report change: %v", err)
	}

	return report, nil
}

func (in *Intake) validate(sub *Submission) ([]models.Violation, error) {
	if strings.TrimSpace(sub.ClassID) == "" {
		return nil, apperr.Validation("class_id", "class required")
	}
	if !sub.Status.Valid() {
		return nil, apperr.Validation("status", "status must be Bersih or Kotor")
	}
	if len(sub.Photos) > in.policy.MaxPhotos {
		return nil, apperr.Validation("photos", fmt.Sprintf("at most %d photos per report", in.policy.MaxPhotos))
	}
	if in.policy.RequireDirtyDescription &&
		sub.Status == models.StatusKotor &&
		strings.TrimSpace(sub.Description) == "" {
		return nil, apperr.Validation("deskripsi", "description required")
	}

	// a clean report carries no violations regardless of what was checked
	if sub.Status == models.StatusBersih {
		return nil, nil
	}

	violations := make([]models.Violation, 0, len(sub.ViolationCodes))
	seen := make(map[string]bool, len(sub.ViolationCodes))
	for _, code := range sub.ViolationCodes {
		if seen[code] {
			continue
		}
		seen[code] = true

		v, err := models.ViolationByCode(code)
		if err != nil {
			return nil, apperr.Validation("violations", err.Error())
		}
		violations = append(violations, v)
	}

	return violations, nil
}

// uploadPhotos fans the uploads out concurrently and joins on all of them.
// The result slice keeps submission order regardless of completion order.
func (in *Intake) uploadPhotos(ctx context.Context, photos []Photo) (models.PhotoList, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	urls := make(models.PhotoList, len(photos))
	g, gctx := errgroup.WithContext(ctx)

	for i, photo := range photos {
		g.Go(func() error {
			objectPath, err := storage.ObjectPath(photo.Filename)
			if err != nil {
				return &apperr.UploadError{Path: photo.Filename, Err: err}
			}

			url, err := in.objects.Upload(gctx, objectPath, photo.ContentType, photo.Data)
			if err != nil {
				metrics.PhotoUploadsTotal.WithLabelValues("error").Inc()
				return &apperr.UploadError{Path: objectPath, Err: err}
			}

			metrics.PhotoUploadsTotal.WithLabelValues("ok").Inc()
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
