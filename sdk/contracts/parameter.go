package contracts

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidParameter is returned by Parameter.Validate.
var ErrInvalidParameter = errors.New("invalid parameter")

// ParameterType selects the UI control the host renders.
type ParameterType string

const (
	ParamInt    ParameterType = "int"
	ParamFloat  ParameterType = "float"
	ParamBool   ParameterType = "bool"
	ParamString ParameterType = "string"
	ParamChoice ParameterType = "choice"
)

// Parameter declares a user-adjustable control.
type Parameter struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        ParameterType `json:"type"`
	Default     any           `json:"default"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Step        *float64      `json:"step,omitempty"`
	Choices     []string      `json:"choices,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Bound is a helper for the optional Min, Max and Step fields.
func Bound(v float64) *float64 {
	return &v
}

// IntParameter declares an integer control with bounds.
func IntParameter(id, name string, def, lo, hi int) Parameter {
	return Parameter{ID: id, Name: name, Type: ParamInt, Default: def, Min: Bound(float64(lo)), Max: Bound(float64(hi))}
}

// FloatParameter declares a float control with bounds and step.
func FloatParameter(id, name string, def, lo, hi, step float64) Parameter {
	return Parameter{ID: id, Name: name, Type: ParamFloat, Default: def, Min: Bound(lo), Max: Bound(hi), Step: Bound(step)}
}

// ChoiceParameter declares a drop-down.
func ChoiceParameter(id, name, def string, choices ...string) Parameter {
	return Parameter{ID: id, Name: name, Type: ParamChoice, Default: def, Choices: choices}
}

// BoolParameter declares a toggle.
func BoolParameter(id, name string, def bool) Parameter {
	return Parameter{ID: id, Name: name, Type: ParamBool, Default: def}
}

// Validate checks that the declaration is usable by the host UI.
func (p Parameter) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidParameter)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: %s: missing name", ErrInvalidParameter, p.ID)
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return fmt.Errorf("%w: %s: min %g above max %g", ErrInvalidParameter, p.ID, *p.Min, *p.Max)
	}

	switch p.Type {
	case ParamInt, ParamFloat:
		v, ok := toFloat(p.Default)
		if !ok {
			return fmt.Errorf("%w: %s: default %v is not a number", ErrInvalidParameter, p.ID, p.Default)
		}
		if (p.Min != nil && v < *p.Min) || (p.Max != nil && v > *p.Max) {
			return fmt.Errorf("%w: %s: default %v outside bounds", ErrInvalidParameter, p.ID, p.Default)
		}
	case ParamBool:
		if _, ok := p.Default.(bool); !ok {
			return fmt.Errorf("%w: %s: default %v is not a bool", ErrInvalidParameter, p.ID, p.Default)
		}
	case ParamChoice:
		if len(p.Choices) == 0 {
			return fmt.Errorf("%w: %s: choice parameter without choices", ErrInvalidParameter, p.ID)
		}
		def, _ := p.Default.(string)
		if !slices.Contains(p.Choices, def) {
			return fmt.Errorf("%w: %s: default %v is not one of the choices", ErrInvalidParameter, p.ID, p.Default)
		}
	case ParamString:
	default:
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidParameter, p.ID, p.Type)
	}
	return nil
}
