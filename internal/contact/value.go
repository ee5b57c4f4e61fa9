package contact

import (
	"encoding/json"
	"fmt"
)

// ArtifactValue is either a Scalar or a List.
type ArtifactValue interface {
	// IsList reports whether the value is stored as a list.
	IsList() bool
	// Items returns the value as a list; a non-empty scalar becomes its sole element.
	Items() []string
	// Display renders the value for humans.
	Display() string
	isArtifactValue()
}

// Scalar is a single-string artifact value.
type Scalar string

// List is an ordered list artifact value.
type List []string

func (Scalar) isArtifactValue() {}
func (List) isArtifactValue()   {}

func (Scalar) IsList() bool { return false }
func (List) IsList() bool   { return true }

func (s Scalar) Items() []string {
	if s == "" {
		return []string{}
	}
	return []string{string(s)}
}

func (l List) Items() []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

func (s Scalar) Display() string { return string(s) }

func (l List) Display() string {
	b, _ := json.Marshal([]string(l))
	return string(b)
}

// EncodeValue converts a value into its stored form (text column + is_array flag).
func EncodeValue(v ArtifactValue) (string, bool, error) {
	switch val := v.(type) {
	case Scalar:
		return string(val), false, nil
	case List:
		items := []string(val)
		if items == nil {
			items = []string{}
		}
		b, err := json.Marshal(items)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	case nil:
		return "", false, nil
	default:
		return "", false, fmt.Errorf("unknown artifact value %T", v)
	}
}

// DecodeValue converts a stored text + is_array pair back to a value.
func DecodeValue(text string, isArray bool) (ArtifactValue, error) {
	if !isArray {
		return Scalar(text), nil
	}
	if text == "" {
		return List{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("decode artifact list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return List(items), nil
}
