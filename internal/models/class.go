package models

// Class is reference data managed by an external admin process; the
// service only ever reads it.
type Class struct {
	ID        string `db:"id" json:"id"`
	Nama      string `db:"nama" json:"nama"`
	Tingkat   string `db:"tingkat" json:"tingkat"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
	UpdatedAt int64  `db:"updated_at" json:"updated_at"`
}
