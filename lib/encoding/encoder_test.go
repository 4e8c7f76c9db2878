package encoding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewEncoder(t *testing.T) {
	if _, err := NewEncoder([]byte("short")); err != nil {
		t.Fatalf("NewEncoder with short key failed: %v", err)
	}
	if _, err := NewEncoder([]byte("this-is-a-32-byte-key-for-aes!!!")); err != nil {
		t.Fatalf("NewEncoder with 32-byte key failed: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	values := map[string]any{
		"count":  int64(12345),
		"title":  "test-file.txt",
		"gift":   true,
		"ratio":  0.25,
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"x": int64(1)},
	}

	for _, sensitive := range []bool{false, true} {
		encoded, err := enc.Encode(values, sensitive)
		if err != nil {
			t.Fatalf("Encode(sensitive=%v) failed: %v", sensitive, err)
		}
		got, err := enc.Decode(encoded, sensitive)
		if err != nil {
			t.Fatalf("Decode(sensitive=%v) failed: %v", sensitive, err)
		}
		if diff := cmp.Diff(values, got); diff != "" {
			t.Errorf("Decode(sensitive=%v) mismatch (-want +got):\n%s", sensitive, diff)
		}
	}
}

func TestSmallIntegersDecodeAsInt64(t *testing.T) {
	b, err := Marshal(7)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	v, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if v != int64(7) {
		t.Errorf("Unmarshal() = %v (%T), want int64 7", v, v)
	}
}

func TestDecodeErrors(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	other, _ := NewEncoder([]byte("other-key"))

	signed, err := enc.Encode(map[string]any{"id": 1}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	sealed, err := enc.Encode(map[string]any{"id": 1}, true)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name      string
		encoded   string
		sensitive bool
		dec       *Encoder
		want      error
	}{
		{"missing separator", "invalidbase64withoutseparator", false, enc, ErrInvalidFormat},
		{"tampered signature", signed[:len(signed)-2] + "XX", false, enc, ErrSignatureInvalid},
		{"different key", signed, false, other, ErrSignatureInvalid},
		{"tampered ciphertext", sealed[:len(sealed)-2] + "XX", true, enc, ErrDecryptFailed},
		{"short ciphertext", "AAAA", true, enc, ErrInvalidFormat},
		{"encrypted with other key", sealed, true, other, ErrDecryptFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.dec.Decode(tt.encoded, tt.sensitive)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeNonMap(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	b, _ := Marshal("just a string")
	token := enc.sign(b)
	if _, err := enc.Decode(token, false); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Decode() error = %v, want ErrInvalidFormat", err)
	}
}

func TestEmptyValues(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	encoded, err := enc.Encode(nil, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := enc.Decode(encoded, false)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Decode() = %v, want empty", got)
	}
}
