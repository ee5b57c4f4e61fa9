package contact

// Orbit bounds. Orbit 0 is the innermost tier.
const (
	MinOrbit = 0
	MaxOrbit = 4
)

// Contact is a person being tracked.
type Contact struct {
	// ID is a ULID that uniquely identifies this contact
	ID string `json:"id"`

	// Name is the display name as provided by the user
	Name string `json:"name"`

	// NameNorm is the normalized name used for case-insensitive matching
	NameNorm string `json:"name_norm"`

	// Notes is free-text markdown
	Notes string `json:"notes"`

	// Archived contacts are hidden from default lookups
	Archived bool `json:"archived"`

	// TargetOrbit is the desired proximity tier (MinOrbit..MaxOrbit)
	TargetOrbit int `json:"target_orbit"`

	// LastContactAt caches the max date among non-deleted interactions (nullable)
	LastContactAt *int64 `json:"last_contact_at"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Interaction is a single logged touchpoint with a contact.
// Tags are a denormalized comma-joined label list, not a relation.
type Interaction struct {
	ID        string `json:"id"`
	ContactID string `json:"contact_id"`
	Impulse   string `json:"impulse"`
	Content   string `json:"content"`
	Date      int64  `json:"date"`
	TagNames  string `json:"tag_names"`
	CreatedAt int64  `json:"created_at"`

	// DeletedAt marks a soft-deleted interaction (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the interaction has been soft-deleted.
func (i *Interaction) IsDeleted() bool {
	return i.DeletedAt != nil
}

// Tags returns the interaction's tag names in stored order.
func (i *Interaction) Tags() []string {
	return SplitTags(i.TagNames)
}

// Artifact is a keyed fact attached to a contact.
// Exactly one artifact exists per (ContactID, KeyNorm).
type Artifact struct {
	ID        string        `json:"id"`
	ContactID string        `json:"contact_id"`
	Key       string        `json:"key"`
	KeyNorm   string        `json:"key_norm"`
	Value     ArtifactValue `json:"value"`
	Category  *string       `json:"category,omitempty"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
}

// Tag is a catalog entry for autocomplete. It is not linked to contacts.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameNorm  string `json:"name_norm"`
	CreatedAt int64  `json:"created_at"`
}

// Constellation is a named group of contacts.
type Constellation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameNorm  string `json:"name_norm"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// ValidOrbit reports whether o is within MinOrbit..MaxOrbit.
func ValidOrbit(o int) bool {
	return o >= MinOrbit && o <= MaxOrbit
}
