package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type ReportStatus string

const (
	StatusBersih ReportStatus = "Bersih"
	StatusKotor  ReportStatus = "Kotor"
)

func (s ReportStatus) Valid() bool {
	return s == StatusBersih || s == StatusKotor
}

// MaxPhotosPerReport caps the number of photos a single submission may carry.
const MaxPhotosPerReport = 5

// PhotoList stores the uploaded photo URLs as a JSON array so the same
// column type works in both postgres and sqlite. Order follows the order
// the photos were submitted in.
type PhotoList []string

func (p PhotoList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photo list: %w", err)
	}
	return string(data), nil
}

func (p *PhotoList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into PhotoList", src)
	}
}

type Report struct {
	ID        string       `db:"id" json:"id"`
	ClassID   string       `db:"class_id" json:"class_id" validate:"required"`
	Status    ReportStatus `db:"status" json:"status" validate:"required,oneof=Bersih Kotor"`
	Deskripsi string       `db:"deskripsi" json:"deskripsi"`
	Petugas   string       `db:"petugas" json:"petugas"`
	FotoURL   PhotoList    `db:"foto_url" json:"foto_url" validate:"max=5"`
	Tanggal   string       `db:"tanggal" json:"tanggal" validate:"required,datetime=2006-01-02"`
	Semester  int          `db:"semester" json:"semester" validate:"required,oneof=1 2"`
	Score     int          `db:"score" json:"score" validate:"min=0"`
	CreatedAt int64        `db:"created_at" json:"created_at"`

	// ClassNama is populated on list queries that join the class catalogue.
	ClassNama string `db:"class_nama" json:"class_nama,omitempty"`
}

func (r *Report) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
