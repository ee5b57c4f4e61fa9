package contact

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple lowercase",
			input: "Sarah Connor",
			want:  "sarah connor",
		},
		{
			name:  "trim whitespace",
			input: "  Tom  ",
			want:  "tom",
		},
		{
			name:  "collapse internal whitespace",
			input: "Mary   Jane",
			want:  "mary jane",
		},
		{
			name:  "tabs and newlines",
			input: "favorite\t\n  food",
			want:  "favorite food",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "unicode characters",
			input: "  ÉLODIE   ÖZTÜRK  ",
			want:  "élodie öztürk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanName_NormalizeIsLowercase(t *testing.T) {
	for _, in := range []string{"  Sarah ", "Jean  Luc", "ÖMER"} {
		cleaned := CleanName(in)
		if Normalize(cleaned) != Normalize(in) {
			t.Errorf("Normalize(CleanName(%q)) = %q, want %q", in, Normalize(cleaned), Normalize(in))
		}
	}
}

func TestJoinTags(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{name: "nil", input: nil, want: ""},
		{name: "single", input: []string{"Work"}, want: "Work"},
		{name: "order kept", input: []string{"Work", "Family"}, want: "Work,Family"},
		{name: "hash stripped", input: []string{"#Work"}, want: "Work"},
		{name: "case-insensitive repeats", input: []string{"Work", "work", "WORK"}, want: "Work"},
		{name: "blanks dropped", input: []string{"", " ", "Gym"}, want: "Gym"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinTags(tt.input); got != tt.want {
				t.Errorf("JoinTags(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitTags(t *testing.T) {
	if got := SplitTags(""); got != nil {
		t.Errorf("SplitTags(\"\") = %v, want nil", got)
	}
	got := SplitTags("Work, Family,,Gym")
	want := []string{"Work", "Family", "Gym"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTags() = %v, want %v", got, want)
	}
}
