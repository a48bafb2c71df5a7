package models

import "fmt"

// Violation is one entry of the fixed defect catalogue. Violations are not
// persisted as rows; a submission carries a set of codes and each checked
// code deducts a fixed amount from the report score.
type Violation struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var ViolationCatalogue = []Violation{
	{Code: "lantai_kotor", Label: "Lantai kelas kotor"},
	{Code: "jendela_kotor", Label: "Jendela / kaca berdebu"},
	{Code: "papan_tulis", Label: "Papan tulis tidak dibersihkan"},
	{Code: "sampah_menumpuk", Label: "Sampah tidak dibuang"},
	{Code: "meja_berantakan", Label: "Meja dan kursi berantakan"},
	{Code: "alat_kebersihan", Label: "Alat kebersihan hilang / tidak lengkap"},
	{Code: "coretan", Label: "Coretan di meja atau dinding"},
	{Code: "sarang_laba", Label: "Sarang laba-laba di langit-langit"},
}

func ViolationByCode(code string) (Violation, error) {
	for _, v := range ViolationCatalogue {
		if v.Code == code {
			return v, nil
		}
	}
	return Violation{}, fmt.Errorf("unknown violation code: %s", code)
}
