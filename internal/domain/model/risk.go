package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RiskLevel is an ordinal 0..3 risk assessment. A zero RiskLevel (Valid=false)
// means no assessment was recorded, which is not the same as level 0.
type RiskLevel struct {
	Level int
	Valid bool
}

// Risk returns a recorded risk level.
func Risk(level int) RiskLevel {
	return RiskLevel{Level: level, Valid: true}
}

// Max returns the higher of r and o, skipping values without data.
func (r RiskLevel) Max(o RiskLevel) RiskLevel {
	switch {
	case !o.Valid:
		return r
	case !r.Valid:
		return o
	case o.Level > r.Level:
		return o
	default:
		return r
	}
}

func (r RiskLevel) String() string {
	if !r.Valid {
		return "null"
	}
	return fmt.Sprintf("%d", r.Level)
}

// MarshalJSON encodes a missing assessment as null.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Level)
}

// UnmarshalJSON accepts an integer or null.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RiskLevel{}
		return nil
	}
	var level int
	if err := json.Unmarshal(data, &level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRisk, err)
	}
	*r = Risk(level)
	return nil
}

// MarshalYAML encodes a missing assessment as null.
func (r RiskLevel) MarshalYAML() (any, error) {
	if !r.Valid {
		return nil, nil
	}
	return r.Level, nil
}

// UnmarshalYAML accepts an integer or null.
func (r *RiskLevel) UnmarshalYAML(value *yaml.Node) error {
	if value.ShortTag() == "!!null" {
		*r = RiskLevel{}
		return nil
	}
	var level int
	if err := value.Decode(&level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRisk, err)
	}
	*r = Risk(level)
	return nil
}

// UnmarshalTOML accepts an integer. TOML has no null; omit the key instead.
func (r *RiskLevel) UnmarshalTOML(v any) error {
	level, ok := v.(int64)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidRisk, v)
	}
	*r = Risk(int(level))
	return nil
}
