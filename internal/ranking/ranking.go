package ranking

import (
	"math"
	"sort"

	"github.com/tukangsapu/sapu/internal/models"
)

// Entry is one derived leaderboard row. Entries are never persisted;
// the board is recomputed in full on every query.
type Entry struct {
	ClassID         string  `json:"class_id"`
	Nama            string  `json:"nama"`
	Tingkat         string  `json:"tingkat"`
	CleanCount      int     `json:"total_bersih"`
	ReportCount     int     `json:"total_laporan"`
	AverageScore    float64 `json:"average_score"`
	CleanPercentage int     `json:"persentase_bersih"`
}

// Rank aggregates the filtered report set per class and returns the
// leaderboard ordered by average score, ties broken by report count
// (a class inspected more often ranks above one with the same average),
// then by class name for a stable display order. Every known class
// appears, classes without reports with zero stats.
func Rank(classes []models.Class, reports []models.Report) []Entry {
	byClass := make(map[string][]models.Report, len(classes))
	for _, r := range reports {
		byClass[r.ClassID] = append(byClass[r.ClassID], r)
	}

	entries := make([]Entry, 0, len(classes))
	for _, cls := range classes {
		group := byClass[cls.ID]

		entry := Entry{
			ClassID: cls.ID,
			Nama:    cls.Nama,
			Tingkat: cls.Tingkat,
		}

		var scoreSum int
		for _, r := range group {
			entry.ReportCount++
			scoreSum += r.Score
			if r.Status == models.StatusBersih {
				entry.CleanCount++
			}
		}

		if entry.ReportCount > 0 {
			avg := float64(scoreSum) / float64(entry.ReportCount)
			entry.AverageScore = math.Round(avg*100) / 100
			entry.CleanPercentage = int(math.Round(100 * float64(entry.CleanCount) / float64(entry.ReportCount)))
		}

		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AverageScore != entries[j].AverageScore {
			return entries[i].AverageScore > entries[j].AverageScore
		}
		if entries[i].ReportCount != entries[j].ReportCount {
			return entries[i].ReportCount > entries[j].ReportCount
		}
		return entries[i].Nama < entries[j].Nama
	})

	return entries
}
