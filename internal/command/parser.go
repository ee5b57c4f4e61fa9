package command

import (
	"fmt"
	"strings"
)

// Reserved impulses.
const (
	impulseArchive = "archive"
	impulseRestore = "restore"
	impulseUndo    = "undo"
)

// Parse resolves a command line into a Command. It never fails: grammar
// problems come back as Invalid.
func Parse(text string) Command {
	if strings.EqualFold(strings.TrimSpace(text), "!"+impulseUndo) {
		return Undo{}
	}
	return ParseTokens(Tokenize(text))
}

// parsed collects the first-of-kind tokens the grammar cares about.
type parsed struct {
	entity        string
	constellation string
	impulses      []string
	tags          []string
	note          *string
	timeModifier  *string
	texts         []string
	artifactKey   *Token
	artifactOp    *Token
	artifactValue *Token
}

func collect(tokens []Token) parsed {
	p := parsed{tags: []string{}}
	for i := range tokens {
		tok := tokens[i]
		switch tok.Kind {
		case TokenEntity:
			if p.entity == "" {
				p.entity = strings.TrimSpace(tok.Value)
			}
		case TokenConstellation:
			if p.constellation == "" {
				p.constellation = strings.TrimSpace(tok.Value)
			}
		case TokenImpulse:
			if v := strings.TrimSpace(tok.Value); v != "" {
				p.impulses = append(p.impulses, v)
			}
		case TokenTag:
			if v := strings.TrimSpace(tok.Value); v != "" {
				p.tags = append(p.tags, v)
			}
		case TokenQuotedText:
			if p.note == nil {
				note := tok.Value
				p.note = &note
			}
		case TokenTimeModifier:
			if p.timeModifier == nil {
				mod := tok.Value
				p.timeModifier = &mod
			}
		case TokenText:
			p.texts = append(p.texts, tok.Value)
		case TokenArtifactKey:
			if p.artifactKey == nil {
				p.artifactKey = &tokens[i]
			}
		case TokenArtifactOp:
			if p.artifactOp == nil {
				p.artifactOp = &tokens[i]
			}
		case TokenArtifactValue, TokenVoid:
			if p.artifactValue == nil {
				p.artifactValue = &tokens[i]
			}
		}
	}
	return p
}

// ParseTokens resolves an already-tokenized line.
func ParseTokens(tokens []Token) Command {
	p := collect(tokens)

	if p.entity == "" && p.constellation == "" {
		return Invalid{Reason: "must begin with @ContactName"}
	}

	for _, imp := range p.impulses {
		switch strings.ToLower(imp) {
		case impulseArchive:
			if p.entity == "" {
				return Invalid{Reason: "!archive needs an @ContactName"}
			}
			return ArchiveContact{ContactName: p.entity}
		case impulseRestore:
			if p.entity == "" {
				return Invalid{Reason: "!restore needs an @ContactName"}
			}
			return RestoreContact{ContactName: p.entity}
		}
	}
	for _, imp := range p.impulses {
		if strings.EqualFold(imp, impulseUndo) {
			return Invalid{Reason: "!undo must be entered on its own"}
		}
	}

	if p.artifactKey != nil {
		if p.entity == "" {
			return Invalid{Reason: "artifact commands need an @ContactName"}
		}
		return parseArtifact(p)
	}

	if len(p.impulses) > 0 {
		if p.constellation != "" {
			return LogConstellationInteraction{
				ConstellationName: p.constellation,
				Impulse:           p.impulses[0],
				Tags:              p.tags,
				Note:              p.note,
				TimeModifier:      p.timeModifier,
			}
		}
		return LogInteraction{
			ContactName:  p.entity,
			Impulse:      p.impulses[0],
			Tags:         p.tags,
			Note:         p.note,
			TimeModifier: p.timeModifier,
		}
	}

	query := strings.Join(p.texts, " ")
	if p.constellation != "" {
		return SearchConstellation{ConstellationName: p.constellation, Query: query}
	}
	return SearchContact{ContactName: p.entity, Query: query}
}

func parseArtifact(p parsed) Command {
	category, key := SplitArtifactKey(p.artifactKey.Value)
	if key == "" {
		return Invalid{Reason: "artifact key is required"}
	}

	if p.artifactValue != nil &&
		(p.artifactValue.Kind == TokenVoid || strings.EqualFold(strings.TrimSpace(p.artifactValue.Value), "void")) {
		return DeleteArtifact{ContactName: p.entity, Key: key}
	}
	if p.artifactValue == nil {
		return Invalid{Reason: fmt.Sprintf("artifact %q needs a value", key)}
	}
	value := strings.TrimSpace(p.artifactValue.Value)

	op := OpSet
	if p.artifactOp != nil {
		op = p.artifactOp.Value
	}

	switch op {
	case OpAppend:
		return AppendArtifact{ContactName: p.entity, Key: key, Category: category, Value: value}
	case OpRemove:
		return RemoveArtifact{ContactName: p.entity, Key: key, Value: value}
	default:
		return SetArtifact{ContactName: p.entity, Key: key, Category: category, Value: value}
	}
}

// SplitArtifactKey splits "category/key" on the first '/'. The category is
// nil when absent or blank.
func SplitArtifactKey(raw string) (*string, string) {
	raw = strings.TrimSpace(raw)
	left, right, found := strings.Cut(raw, "/")
	if !found {
		return nil, raw
	}
	key := strings.TrimSpace(right)
	category := strings.TrimSpace(left)
	if category == "" {
		return nil, key
	}
	return &category, key
}
