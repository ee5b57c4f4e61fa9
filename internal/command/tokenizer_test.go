package command

import (
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func tok(kind TokenKind, value string, start, end int) Token {
	return Token{Kind: kind, Value: value, Span: Span{Start: start, End: end}}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "entity and impulse",
			input: "@Sarah !Coffee",
			want: []Token{
				tok(TokenEntity, "Sarah", 0, 6),
				tok(TokenImpulse, "Coffee", 7, 14),
			},
		},
		{
			name:  "full interaction line",
			input: `@Sarah !Coffee #Work "note" ^yesterday`,
			want: []Token{
				tok(TokenEntity, "Sarah", 0, 6),
				tok(TokenImpulse, "Coffee", 7, 14),
				tok(TokenTag, "Work", 15, 20),
				tok(TokenQuotedText, "note", 21, 27),
				tok(TokenTimeModifier, "yesterday", 28, 38),
			},
		},
		{
			name:  "markers split adjacent words",
			input: "@Sarah!Coffee",
			want: []Token{
				tok(TokenEntity, "Sarah", 0, 6),
				tok(TokenImpulse, "Coffee", 6, 13),
			},
		},
		{
			name:  "constellation",
			input: "*Family !Dinner",
			want: []Token{
				tok(TokenConstellation, "Family", 0, 7),
				tok(TokenImpulse, "Dinner", 8, 15),
			},
		},
		{
			name:  "artifact append",
			input: "@Tom > likes + Jazz",
			want: []Token{
				tok(TokenEntity, "Tom", 0, 4),
				tok(TokenArtifactKey, "likes", 5, 12),
				tok(TokenArtifactOp, "+", 13, 14),
				tok(TokenArtifactValue, "Jazz", 15, 19),
			},
		},
		{
			name:  "artifact key with internal space",
			input: "@Tom > favorite food: pizza",
			want: []Token{
				tok(TokenEntity, "Tom", 0, 4),
				tok(TokenArtifactKey, "favorite food", 5, 20),
				tok(TokenArtifactOp, ":", 20, 21),
				tok(TokenArtifactValue, "pizza", 22, 27),
			},
		},
		{
			name:  "artifact void",
			input: "@Tom > fax: void",
			want: []Token{
				tok(TokenEntity, "Tom", 0, 4),
				tok(TokenArtifactKey, "fax", 5, 10),
				tok(TokenArtifactOp, ":", 10, 11),
				tok(TokenVoid, "void", 12, 16),
			},
		},
		{
			name:  "artifact value keeps mid-word markers",
			input: "@Tom > email: tom@example.com #work",
			want: []Token{
				tok(TokenEntity, "Tom", 0, 4),
				tok(TokenArtifactKey, "email", 5, 12),
				tok(TokenArtifactOp, ":", 12, 13),
				tok(TokenArtifactValue, "tom@example.com", 14, 29),
				tok(TokenTag, "work", 30, 35),
			},
		},
		{
			name:  "artifact key without operator",
			input: "@Tom > likes #tag",
			want: []Token{
				tok(TokenEntity, "Tom", 0, 4),
				tok(TokenArtifactKey, "likes", 5, 12),
				tok(TokenTag, "tag", 13, 17),
			},
		},
		{
			name:  "artifact empty key",
			input: "> : x",
			want: []Token{
				tok(TokenArtifactKey, "", 0, 1),
				tok(TokenArtifactOp, ":", 2, 3),
				tok(TokenArtifactValue, "x", 4, 5),
			},
		},
		{
			name:  "unterminated quote runs to end",
			input: `"unterminated note  `,
			want: []Token{
				tok(TokenQuotedText, "unterminated note", 0, 18),
			},
		},
		{
			name:  "smart quotes",
			input: "@Sarah “smart quotes”",
			want: []Token{
				tok(TokenEntity, "Sarah", 0, 6),
				tok(TokenQuotedText, "smart quotes", 7, 25),
			},
		},
		{
			name:  "plain text",
			input: "hello world",
			want: []Token{
				tok(TokenText, "hello", 0, 5),
				tok(TokenText, "world", 6, 11),
			},
		},
		{
			name:  "bare marker",
			input: "@",
			want: []Token{
				tok(TokenEntity, "", 0, 1),
			},
		},
		{
			name:  "empty input",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

// tokenizerInputs covers well-formed and malformed lines.
var tokenizerInputs = []string{
	"",
	"@Sarah !Coffee #Work \"Great talk\" ^yesterday",
	"@Tom > likes + Jazz",
	"@Tom >   favorite   food  :   deep dish pizza   #food",
	"@Tom > personal/birthday: May 4 ^2d",
	"\"open quote @Sarah",
	"”stray close",
	">>>",
	"> - + :",
	"@@!!##^^**",
	"@Élodie !Café #amitié “naïve”",
	"\t@Sarah\n!Call\r\n",
	"a@b!c#d^e*f>g",
	"@Tom > C# skill: expert",
}

func TestTokenize_SpansWellFormed(t *testing.T) {
	for _, input := range tokenizerInputs {
		tokens := Tokenize(input)
		prevEnd := 0
		for i, tk := range tokens {
			if tk.Span.Start < prevEnd {
				t.Errorf("Tokenize(%q)[%d] overlaps previous token: %+v", input, i, tk)
			}
			if tk.Span.End <= tk.Span.Start || tk.Span.End > len(input) {
				t.Errorf("Tokenize(%q)[%d] has bad span: %+v", input, i, tk)
				continue
			}
			first, _ := utf8.DecodeRuneInString(input[tk.Span.Start:])
			last, _ := utf8.DecodeLastRuneInString(input[:tk.Span.End])
			if unicode.IsSpace(first) || unicode.IsSpace(last) {
				t.Errorf("Tokenize(%q)[%d] span starts or ends in whitespace: %+v", input, i, tk)
			}
			prevEnd = tk.Span.End
		}
	}
}

func TestTokenize_Idempotent(t *testing.T) {
	for _, input := range tokenizerInputs {
		first := Tokenize(input)
		second := Tokenize(input)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Tokenize(%q) not idempotent:\n%s", input, diff)
		}
	}
}
