package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InspectionGroup is one row of the piket schedule: which officers walk
// which classes. Admins edit groups in place, rows are seeded by migration.
type InspectionGroup struct {
	ID       int64      `db:"id" json:"id"`
	Classes  StringList `db:"classes" json:"classes"`
	Officers StringList `db:"officers" json:"officers"`
}

// StringList is a JSON-encoded string array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(data), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}
