package contact

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeValue(t *testing.T) {
	tests := []struct {
		name      string
		value     ArtifactValue
		wantText  string
		wantArray bool
	}{
		{name: "scalar", value: Scalar("Elena"), wantText: "Elena", wantArray: false},
		{name: "empty scalar", value: Scalar(""), wantText: "", wantArray: false},
		{name: "list", value: List{"Jazz", "Blues"}, wantText: `["Jazz","Blues"]`, wantArray: true},
		{name: "empty list", value: List{}, wantText: `[]`, wantArray: true},
		{name: "nil list", value: List(nil), wantText: `[]`, wantArray: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isArray, err := EncodeValue(tt.value)
			if err != nil {
				t.Fatalf("EncodeValue() error = %v", err)
			}
			if text != tt.wantText || isArray != tt.wantArray {
				t.Errorf("EncodeValue() = (%q, %v), want (%q, %v)", text, isArray, tt.wantText, tt.wantArray)
			}

			decoded, err := DecodeValue(text, isArray)
			if err != nil {
				t.Fatalf("DecodeValue() error = %v", err)
			}
			if decoded.IsList() != tt.wantArray {
				t.Errorf("decoded IsList() = %v, want %v", decoded.IsList(), tt.wantArray)
			}
		})
	}
}

func TestDecodeValue_Malformed(t *testing.T) {
	if _, err := DecodeValue("not json", true); err == nil {
		t.Error("DecodeValue() expected error for malformed list")
	}
}

func TestItems(t *testing.T) {
	if got := Scalar("").Items(); len(got) != 0 {
		t.Errorf("Scalar(\"\").Items() = %v, want empty", got)
	}
	if got := Scalar("Elena").Items(); !reflect.DeepEqual(got, []string{"Elena"}) {
		t.Errorf("Scalar.Items() = %v", got)
	}

	orig := List{"a", "b"}
	items := orig.Items()
	items[0] = "changed"
	if orig[0] != "a" {
		t.Error("List.Items() must return a copy")
	}
}
