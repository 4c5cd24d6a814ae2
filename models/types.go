package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice is a custom type for handling JSON arrays of strings in database
type StringSlice []string

// Value implements driver.Valuer interface for database storage
func (ss StringSlice) Value() (driver.Value, error) {
	if ss == nil {
		return nil, nil
	}
	return json.Marshal(ss)
}

// Scan implements sql.Scanner interface for database retrieval
func (ss *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*ss = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ss)
	case string:
		return json.Unmarshal([]byte(v), ss)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// GormDataType returns the data type for GORM
func (StringSlice) GormDataType() string {
	return "json"
}

// MarshalJSON implements json.Marshaler interface
func (ss StringSlice) MarshalJSON() ([]byte, error) {
	if ss == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(ss))
}

// UnmarshalJSON implements json.Unmarshaler interface
func (ss *StringSlice) UnmarshalJSON(data []byte) error {
	var slice []string
	if err := json.Unmarshal(data, &slice); err != nil {
		return err
	}
	*ss = StringSlice(slice)
	return nil
}

// Post variants
const (
	VariantPlain      = "plain"
	VariantExperiment = "experiment"
)

// Experiment status values
const (
	ExperimentPlanned   = "planned"
	ExperimentActive    = "active"
	ExperimentCompleted = "completed"
	ExperimentFailed    = "failed"
)

// ExperimentDetails holds the structured metadata carried by "experiment" posts.
// Stored as a single JSON column on the post row.
type ExperimentDetails struct {
	Title    string `json:"title"`
	Goal     string `json:"goal"`
	Duration string `json:"duration"`
	Status   string `json:"status"`
	Results  string `json:"results"`
}

// Value implements driver.Valuer interface for database storage
func (ed *ExperimentDetails) Value() (driver.Value, error) {
	if ed == nil {
		return nil, nil
	}
	return json.Marshal(ed)
}

// Scan implements sql.Scanner interface for database retrieval
func (ed *ExperimentDetails) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ed)
	case string:
		return json.Unmarshal([]byte(v), ed)
	default:
		return fmt.Errorf("cannot scan %T into ExperimentDetails", value)
	}
}

// GormDataType returns the data type for GORM
func (*ExperimentDetails) GormDataType() string {
	return "json"
}

// ValidExperimentStatus reports whether s is one of the allowed status values.
func ValidExperimentStatus(s string) bool {
	switch s {
	case ExperimentPlanned, ExperimentActive, ExperimentCompleted, ExperimentFailed:
		return true
	}
	return false
}
