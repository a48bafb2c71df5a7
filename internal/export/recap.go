package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tukangsapu/sapu/internal/models"
)

var hariIndonesia = map[time.Weekday]string{
	time.Sunday:    "Minggu",
	time.Monday:    "Senin",
	time.Tuesday:   "Selasa",
	time.Wednesday: "Rabu",
	time.Thursday:  "Kamis",
	time.Friday:    "Jumat",
	time.Saturday:  "Sabtu",
}

var bulanIndonesia = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func formatTanggalIndonesia(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %02d %s %d",
		hariIndonesia[t.Weekday()],
		t.Day(),
		bulanIndonesia[t.Month()-1],
		t.Year(),
	)
}

// BuildDailyRecap renders the shareable plain-text recap of one day's
// inspections, one line per class. Reports are expected newest-first; when
// a class was reported more than once that day the latest report wins.
func BuildDailyRecap(reports []models.Report, date, ketuaOSIS string) string {
	byClass := make(map[string]string)
	for _, r := range reports {
		name := r.ClassNama
		if name == "" {
			name = r.ClassID
		}
		if _, seen := byClass[name]; seen {
			continue
		}

		content := "Bersih"
		if r.Status == models.StatusKotor {
			content = r.Deskripsi
			if strings.TrimSpace(content) == "" {
				content = "Kotor"
			}
		}
		byClass[name] = content
	}

	names := make([]string, 0, len(byClass))
	for name := range byClass {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "LAPORAN KEBERSIHAN KELAS\n%s :\n\n", formatTanggalIndonesia(date))
	for _, name := range names {
		fmt.Fprintf(&b, "%s : %s\n", name, byClass[name])
	}
	fmt.Fprintf(&b, "\nTTD Ketua OSIS\n*%s*", ketuaOSIS)

	return b.String()
}
