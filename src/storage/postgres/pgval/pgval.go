package pgval

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"resumatch/src/core/search"
)

// Vector stores an embedding as a JSON array column.
type Vector []float32

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]float32(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vector: %w", err)
	}
	return string(data), nil
}

func (v *Vector) Scan(src interface{}) error {
	return scanJSON(src, (*[]float32)(v))
}

// Strings stores a string slice as a JSON array column.
type Strings []string

func (s Strings) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal strings: %w", err)
	}
	return string(data), nil
}

func (s *Strings) Scan(src interface{}) error {
	return scanJSON(src, (*[]string)(s))
}

// Features stores extracted query features as a JSON object column.
type Features search.QueryFeatures

func (f Features) Value() (driver.Value, error) {
	data, err := json.Marshal(search.QueryFeatures(f))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}
	return string(data), nil
}

func (f *Features) Scan(src interface{}) error {
	return scanJSON(src, (*search.QueryFeatures)(f))
}

func scanJSON(src, dst interface{}) error {
	switch typed := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(typed, dst)
	case string:
		return json.Unmarshal([]byte(typed), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
