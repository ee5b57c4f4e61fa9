package command

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Artifact operators.
const (
	OpSet    = ":"
	OpAppend = "+"
	OpRemove = "-"
)

// isMarker reports whether r starts a token of its own.
func isMarker(r rune) bool {
	switch r {
	case '@', '*', '!', '#', '^', '>', '"', '“', '”':
		return true
	}
	return false
}

func isOpenQuote(r rune) bool {
	return r == '"' || r == '“'
}

func isArtifactOp(b byte) bool {
	return b == ':' || b == '+' || b == '-'
}

// Tokenize scans text into tokens in a single left-to-right pass.
// It never fails: anything unrecognized becomes a text token. Whitespace
// between tokens is discarded.
func Tokenize(text string) []Token {
	s := &scanner{src: text}
	for s.pos < len(s.src) {
		r, size := s.peek()
		switch {
		case unicode.IsSpace(r):
			s.pos += size
		case r == '@':
			s.prefixed(TokenEntity)
		case r == '*':
			s.prefixed(TokenConstellation)
		case r == '!':
			s.prefixed(TokenImpulse)
		case r == '#':
			s.prefixed(TokenTag)
		case r == '^':
			s.prefixed(TokenTimeModifier)
		case isOpenQuote(r):
			s.quoted()
		case r == '>':
			s.artifact()
		default:
			s.text()
		}
	}
	return s.tokens
}

type scanner struct {
	src    string
	pos    int
	tokens []Token
}

func (s *scanner) peek() (rune, int) {
	return utf8.DecodeRuneInString(s.src[s.pos:])
}

func (s *scanner) emit(kind TokenKind, value string, start, end int) {
	s.tokens = append(s.tokens, Token{Kind: kind, Value: value, Span: Span{Start: start, End: end}})
}

// prefixed consumes a one-rune marker and the word after it up to
// whitespace or the next marker.
func (s *scanner) prefixed(kind TokenKind) {
	start := s.pos
	_, size := s.peek()
	s.pos += size
	valueStart := s.pos
	for s.pos < len(s.src) {
		r, size := s.peek()
		if unicode.IsSpace(r) || isMarker(r) {
			break
		}
		s.pos += size
	}
	s.emit(kind, s.src[valueStart:s.pos], start, s.pos)
}

// quoted consumes up to the closing quote, or to end of input when unterminated.
func (s *scanner) quoted() {
	start := s.pos
	_, size := s.peek()
	s.pos += size
	rest := s.src[s.pos:]

	end := strings.IndexFunc(rest, func(r rune) bool { return r == '"' || r == '”' })
	if end < 0 {
		value := strings.TrimRightFunc(rest, unicode.IsSpace)
		s.pos = len(s.src)
		s.emit(TokenQuotedText, value, start, start+size+len(value))
		return
	}
	_, closeSize := utf8.DecodeRuneInString(rest[end:])
	s.pos += end + closeSize
	s.emit(TokenQuotedText, rest[:end], start, s.pos)
}

// text consumes an unrecognized run up to whitespace, a quote or a marker.
// The first rune is always consumed so a stray closing quote cannot stall the scan.
func (s *scanner) text() {
	start := s.pos
	_, size := s.peek()
	s.pos += size
	for s.pos < len(s.src) {
		r, size := s.peek()
		if unicode.IsSpace(r) || isMarker(r) {
			break
		}
		s.pos += size
	}
	s.emit(TokenText, s.src[start:s.pos], start, s.pos)
}

// nextNonSpace returns the byte offset of the first non-space rune at or after i.
func (s *scanner) nextNonSpace(i int) int {
	for i < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[i:])
		if !unicode.IsSpace(r) {
			return i
		}
		i += size
	}
	return i
}

// artifact scans "> key op value". The key may contain spaces; a space only
// ends the key when the next non-space byte is an operator or a word-leading
// marker. The value runs to end of input or to a marker that starts a word.
func (s *scanner) artifact() {
	start := s.pos
	s.pos++ // '>'
	s.pos = s.nextNonSpace(s.pos)

	keyStart := s.pos
	keyEnd := s.pos
	for s.pos < len(s.src) {
		if isArtifactOp(s.src[s.pos]) {
			break
		}
		r, size := s.peek()
		if s.pos == keyStart && isMarker(r) {
			break
		}
		if unicode.IsSpace(r) {
			next := s.nextNonSpace(s.pos)
			if next >= len(s.src) || isArtifactOp(s.src[next]) {
				s.pos = next
				break
			}
			nr, _ := utf8.DecodeRuneInString(s.src[next:])
			if isMarker(nr) {
				break
			}
			s.pos = next
			continue
		}
		s.pos += size
		keyEnd = s.pos
	}

	tokenEnd := keyEnd
	if keyEnd == keyStart {
		tokenEnd = start + 1
	}
	s.emit(TokenArtifactKey, s.src[keyStart:keyEnd], start, tokenEnd)

	if s.pos >= len(s.src) || !isArtifactOp(s.src[s.pos]) {
		return
	}
	s.emit(TokenArtifactOp, s.src[s.pos:s.pos+1], s.pos, s.pos+1)
	s.pos++
	s.pos = s.nextNonSpace(s.pos)

	valueStart := s.pos
	for s.pos < len(s.src) {
		r, size := s.peek()
		if s.pos == valueStart && isMarker(r) {
			break
		}
		if unicode.IsSpace(r) {
			next := s.nextNonSpace(s.pos)
			if next >= len(s.src) {
				break
			}
			nr, _ := utf8.DecodeRuneInString(s.src[next:])
			if isMarker(nr) {
				break
			}
			s.pos = next
			continue
		}
		s.pos += size
	}

	value := s.src[valueStart:s.pos]
	if value == "" {
		return
	}
	kind := TokenArtifactValue
	if strings.EqualFold(strings.TrimSpace(value), "void") {
		kind = TokenVoid
	}
	s.emit(kind, value, valueStart, s.pos)
}
