package decode

import "testing"

func TestDecode_ValidUTF8(t *testing.T) {
	input := []byte("a,b\n1,2\n")

	got := Decode(input)
	if got != "a,b\n1,2\n" {
		t.Errorf("Expected 'a,b\\n1,2\\n', got %q", got)
	}
}

func TestDecode_Empty(t *testing.T) {
	if got := Decode(nil); got != "" {
		t.Errorf("Expected empty string for nil input, got %q", got)
	}
	if got := Decode([]byte{}); got != "" {
		t.Errorf("Expected empty string for empty input, got %q", got)
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	inputs := [][]byte{
		{0xff, 0xfe, 0xfd},
		{'a', 0x80, 'b'},
		{0xc3, 0x28}, // truncated multi-byte sequence
	}

	for _, input := range inputs {
		if got := Decode(input); got != "" {
			t.Errorf("Expected empty string for invalid UTF-8 %v, got %q", input, got)
		}
	}
}

func TestDecode_Multibyte(t *testing.T) {
	input := []byte("név,érték\nanna,42\n")

	got := Decode(input)
	if got != "név,érték\nanna,42\n" {
		t.Errorf("Unexpected decode result: %q", got)
	}
}
