package command

// Kind identifies a command variant.
type Kind string

const (
	KindInvalid                     Kind = "invalid"
	KindUndo                        Kind = "undo"
	KindArchiveContact              Kind = "archive_contact"
	KindRestoreContact              Kind = "restore_contact"
	KindLogInteraction              Kind = "log_interaction"
	KindLogConstellationInteraction Kind = "log_constellation_interaction"
	KindSetArtifact                 Kind = "set_artifact"
	KindAppendArtifact              Kind = "append_artifact"
	KindRemoveArtifact              Kind = "remove_artifact"
	KindDeleteArtifact              Kind = "delete_artifact"
	KindSearchContact               Kind = "search_contact"
	KindSearchConstellation         Kind = "search_constellation"
)

// Command is the closed set of parsed commands. Only types in this package
// implement it.
type Command interface {
	Kind() Kind
	String() string
	isCommand()
}

// Invalid is a grammar failure; Reason is shown to the user verbatim.
type Invalid struct {
	Reason string `json:"reason"`
}

// Undo soft-deletes the most recently logged interaction.
type Undo struct{}

// ArchiveContact hides a contact from default lookups.
type ArchiveContact struct {
	ContactName string `json:"contact_name"`
}

// RestoreContact un-archives a contact.
type RestoreContact struct {
	ContactName string `json:"contact_name"`
}

// LogInteraction records an interaction with one contact.
type LogInteraction struct {
	ContactName  string   `json:"contact_name"`
	Impulse      string   `json:"impulse"`
	Tags         []string `json:"tags"`
	Note         *string  `json:"note,omitempty"`
	TimeModifier *string  `json:"time_modifier,omitempty"`
}

// LogConstellationInteraction records the same interaction with every
// active member of a constellation.
type LogConstellationInteraction struct {
	ConstellationName string   `json:"constellation_name"`
	Impulse           string   `json:"impulse"`
	Tags              []string `json:"tags"`
	Note              *string  `json:"note,omitempty"`
	TimeModifier      *string  `json:"time_modifier,omitempty"`
}

// SetArtifact overwrites an artifact with a scalar value.
type SetArtifact struct {
	ContactName string  `json:"contact_name"`
	Key         string  `json:"key"`
	Category    *string `json:"category,omitempty"`
	Value       string  `json:"value"`
}

// AppendArtifact appends to a list artifact. Appending to an existing scalar
// requires ForceConvert.
type AppendArtifact struct {
	ContactName  string  `json:"contact_name"`
	Key          string  `json:"key"`
	Category     *string `json:"category,omitempty"`
	Value        string  `json:"value"`
	ForceConvert bool    `json:"force_convert"`
}

// RemoveArtifact removes matching entries from a list artifact.
type RemoveArtifact struct {
	ContactName string `json:"contact_name"`
	Key         string `json:"key"`
	Value       string `json:"value"`
}

// DeleteArtifact removes an artifact entirely.
type DeleteArtifact struct {
	ContactName string `json:"contact_name"`
	Key         string `json:"key"`
}

// SearchContact is a lookup intent; Query may be empty for a bare lookup.
type SearchContact struct {
	ContactName string `json:"contact_name"`
	Query       string `json:"query"`
}

// SearchConstellation is a lookup intent for a constellation.
type SearchConstellation struct {
	ConstellationName string `json:"constellation_name"`
	Query             string `json:"query"`
}

func (Invalid) Kind() Kind                     { return KindInvalid }
func (Undo) Kind() Kind                        { return KindUndo }
func (ArchiveContact) Kind() Kind              { return KindArchiveContact }
func (RestoreContact) Kind() Kind              { return KindRestoreContact }
func (LogInteraction) Kind() Kind              { return KindLogInteraction }
func (LogConstellationInteraction) Kind() Kind { return KindLogConstellationInteraction }
func (SetArtifact) Kind() Kind                 { return KindSetArtifact }
func (AppendArtifact) Kind() Kind              { return KindAppendArtifact }
func (RemoveArtifact) Kind() Kind              { return KindRemoveArtifact }
func (DeleteArtifact) Kind() Kind              { return KindDeleteArtifact }
func (SearchContact) Kind() Kind               { return KindSearchContact }
func (SearchConstellation) Kind() Kind         { return KindSearchConstellation }

func (Invalid) isCommand()                     {}
func (Undo) isCommand()                        {}
func (ArchiveContact) isCommand()              {}
func (RestoreContact) isCommand()              {}
func (LogInteraction) isCommand()              {}
func (LogConstellationInteraction) isCommand() {}
func (SetArtifact) isCommand()                 {}
func (AppendArtifact) isCommand()              {}
func (RemoveArtifact) isCommand()              {}
func (DeleteArtifact) isCommand()              {}
func (SearchContact) isCommand()               {}
func (SearchConstellation) isCommand()         {}
