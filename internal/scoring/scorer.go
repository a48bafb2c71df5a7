package scoring

import (
	"time"

	"github.com/tukangsapu/sapu/internal/models"
)

// Scorer computes the cleanliness score of a report from the checked
// violation set. A clean report always gets the full base score.
type Scorer struct {
	BaseScore        int  `toml:"base_score"`
	ViolationPenalty int  `toml:"violation_penalty"`
	ClampFloor       bool `toml:"clamp_floor"`
}

func DefaultScorer() *Scorer {
	return &Scorer{
		BaseScore:        480,
		ViolationPenalty: 10,
		ClampFloor:       true,
	}
}

// Score deducts ViolationPenalty per checked violation. Violations are
// ignored entirely when the status is Bersih.
func (s *Scorer) Score(status models.ReportStatus, violations []models.Violation) int {
	if status == models.StatusBersih {
		return s.BaseScore
	}

	score := s.BaseScore - s.ViolationPenalty*len(violations)
	if s.ClampFloor && score < 0 {
		return 0
	}
	return score
}

// SemesterOf maps a calendar date to the academic semester: July through
// December is semester 1, January through June is semester 2.
func SemesterOf(t time.Time) int {
	if t.Month() >= time.July {
		return 1
	}
	return 2
}
