package command

import (
	"strings"
)

// String renders the command back into the command language.
func (c Invalid) String() string { return "invalid: " + c.Reason }

func (Undo) String() string { return "!undo" }

func (c ArchiveContact) String() string { return "@" + c.ContactName + " !archive" }

func (c RestoreContact) String() string { return "@" + c.ContactName + " !restore" }

func (c LogInteraction) String() string {
	return formatLog("@"+c.ContactName, c.Impulse, c.Tags, c.Note, c.TimeModifier)
}

func (c LogConstellationInteraction) String() string {
	return formatLog("*"+c.ConstellationName, c.Impulse, c.Tags, c.Note, c.TimeModifier)
}

func (c SetArtifact) String() string {
	return "@" + c.ContactName + " > " + qualifiedKey(c.Category, c.Key) + ": " + c.Value
}

func (c AppendArtifact) String() string {
	return "@" + c.ContactName + " > " + qualifiedKey(c.Category, c.Key) + " + " + c.Value
}

func (c RemoveArtifact) String() string {
	return "@" + c.ContactName + " > " + c.Key + " - " + c.Value
}

func (c DeleteArtifact) String() string {
	return "@" + c.ContactName + " > " + c.Key + ": void"
}

func (c SearchContact) String() string {
	if c.Query == "" {
		return "@" + c.ContactName
	}
	return "@" + c.ContactName + " " + c.Query
}

func (c SearchConstellation) String() string {
	if c.Query == "" {
		return "*" + c.ConstellationName
	}
	return "*" + c.ConstellationName + " " + c.Query
}

func formatLog(target, impulse string, tags []string, note, timeMod *string) string {
	var b strings.Builder
	b.WriteString(target)
	b.WriteString(" !")
	b.WriteString(impulse)
	for _, t := range tags {
		b.WriteString(" #")
		b.WriteString(t)
	}
	if note != nil {
		b.WriteString(` "`)
		b.WriteString(*note)
		b.WriteString(`"`)
	}
	if timeMod != nil {
		b.WriteString(" ^")
		b.WriteString(*timeMod)
	}
	return b.String()
}

func qualifiedKey(category *string, key string) string {
	if category == nil || *category == "" {
		return key
	}
	return *category + "/" + key
}
