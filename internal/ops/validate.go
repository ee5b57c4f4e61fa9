package ops

import (
	"strings"

	"github.com/hpungsan/orbit/internal/config"
	"github.com/hpungsan/orbit/internal/contact"
	"github.com/hpungsan/orbit/internal/errors"
)

// Validator vets prospective names and artifact values before they are
// committed. A non-nil error blocks the write.
type Validator interface {
	ValidateContactName(name string) error
	ValidateArtifactValue(key, value string) error
}

// LimitValidator enforces the configured length limits.
type LimitValidator struct {
	NameMaxChars     int
	ArtifactMaxChars int
}

// NewLimitValidator reads limits from cfg (nil means defaults).
func NewLimitValidator(cfg *config.Config) LimitValidator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return LimitValidator{
		NameMaxChars:     cfg.NameMaxChars,
		ArtifactMaxChars: cfg.ArtifactMaxChars,
	}
}

// ValidateContactName checks the name length. Zero disables the limit.
func (v LimitValidator) ValidateContactName(name string) error {
	if n := contact.CountChars(name); v.NameMaxChars > 0 && n > v.NameMaxChars {
		return errors.NewValueTooLarge("name", v.NameMaxChars, n)
	}
	return nil
}

// ValidateArtifactValue checks the value length. Zero disables the limit.
func (v LimitValidator) ValidateArtifactValue(key, value string) error {
	if n := contact.CountChars(value); v.ArtifactMaxChars > 0 && n > v.ArtifactMaxChars {
		return errors.NewValueTooLarge("artifact "+key, v.ArtifactMaxChars, n)
	}
	return nil
}

// nameMarkers are characters that start a token in the command language.
// A name containing one could never be typed back as @Name or *Name.
const nameMarkers = `@*!#^>"“”`

// checkName cleans a contact or constellation name and applies the
// structural rules every name must meet.
func checkName(kind, raw string) (string, error) {
	name := contact.CleanName(raw)
	if name == "" {
		return "", errors.NewInvalidRequest(kind + " name is required")
	}
	if strings.ContainsAny(name, nameMarkers) {
		return "", errors.NewInvalidRequest(kind + " name must not contain any of " + nameMarkers)
	}
	return name, nil
}
