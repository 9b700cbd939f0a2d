package thing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/photo-cycler/backend/internal/models"
)

var (
	ErrNotFound     = errors.New("property not found")
	ErrReadOnly     = errors.New("property is read-only")
	ErrInvalidValue = errors.New("invalid property value")
)

// Getter returns the current value of a property.
type Getter func() interface{}

// Setter applies a validated value. A nil Setter makes the property read-only.
type Setter func(ctx context.Context, value interface{}) error

// Property is a named value with metadata describing its type and bounds.
type Property struct {
	Name     string
	Metadata models.PropertyMetadata

	get Getter
	set Setter
}

// NewProperty creates a property. When set is nil the metadata is marked read-only.
func NewProperty(name string, metadata models.PropertyMetadata, get Getter, set Setter) *Property {
	if set == nil {
		metadata.ReadOnly = true
	}
	return &Property{
		Name:     name,
		Metadata: metadata,
		get:      get,
		set:      set,
	}
}

// Value returns the current value.
func (p *Property) Value() interface{} {
	if p.get == nil {
		return nil
	}
	return p.get()
}

// Validate checks a decoded JSON value against the metadata and returns it
// converted to the Go type the setter receives.
func (p *Property) Validate(value interface{}) (interface{}, error) {
	if p.Metadata.ReadOnly || p.set == nil {
		return nil, ErrReadOnly
	}

	switch p.Metadata.Type {
	case "null":
		if value != nil {
			return nil, fmt.Errorf("%w: %s must be null", ErrInvalidValue, p.Name)
		}
		return nil, nil
	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a boolean", ErrInvalidValue, p.Name)
		}
		return b, nil
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidValue, p.Name)
		}
		return s, nil
	case "number", "integer":
		n, err := toFloat(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, p.Name)
		}
		if p.Metadata.Type == "integer" && n != math.Trunc(n) {
			return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidValue, p.Name)
		}
		if p.Metadata.Minimum != nil && n < *p.Metadata.Minimum {
			return nil, fmt.Errorf("%w: %s must be >= %g", ErrInvalidValue, p.Name, *p.Metadata.Minimum)
		}
		if p.Metadata.Maximum != nil && n > *p.Metadata.Maximum {
			return nil, fmt.Errorf("%w: %s must be <= %g", ErrInvalidValue, p.Name, *p.Metadata.Maximum)
		}
		return n, nil
	}

	return value, nil
}

func toFloat(value interface{}) (float64, error) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		n = f
	default:
		return 0, fmt.Errorf("unexpected type %T", value)
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return n, nil
}
