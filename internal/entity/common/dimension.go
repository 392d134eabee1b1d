package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Dimension 数据质量维度，取值集合是封闭的。
type Dimension string

const (
	DimensionCompleteness Dimension = "completeness"
	DimensionTimeliness   Dimension = "timeliness"
	DimensionValidity     Dimension = "validity"
	DimensionAccuracy     Dimension = "accuracy"
	DimensionConsistency  Dimension = "consistency"
)

var dimensionOrder = [...]Dimension{
	DimensionCompleteness,
	DimensionTimeliness,
	DimensionValidity,
	DimensionAccuracy,
	DimensionConsistency,
}

// Dimensions returns every dimension in enumeration order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensionOrder))
	copy(out, dimensionOrder[:])
	return out
}

// Valid reports whether d is one of the known dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionCompleteness, DimensionTimeliness, DimensionValidity, DimensionAccuracy, DimensionConsistency:
		return true
	default:
		return false
	}
}

func (d Dimension) String() string {
	return string(d)
}

// ParseDimension 解析维度名称（不区分大小写）。
func ParseDimension(value string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(value)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown dimension %q", value)
	}
	return d, nil
}

// UnmarshalJSON rejects values outside the enumeration.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dimension must be a string: %w", err)
	}
	parsed, err := ParseDimension(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
