package payload

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"nil", nil, "--"},
		{"empty", []byte{}, "--"},
		{"single", []byte{0x0A}, "0A"},
		{"int", FromInt64(65534), "00-00-00-00-00-00-FF-FE"},
		{"text", []byte("hi"), "68-69"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Print(tt.in); got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{"dashed", "00-2A-ff", []byte{0x00, 0x2A, 0xFF}, false},
		{"plain", "002aff", []byte{0x00, 0x2A, 0xFF}, false},
		{"spaced", " 00 2A\nFF ", []byte{0x00, 0x2A, 0xFF}, false},
		{"empty marker", "--", []byte{}, false},
		{"blank", "", []byte{}, false},
		{"odd", "0-2A-F", nil, true},
		{"not hex", "ZZ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHex) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidHex", tt.in, err)
				}
				return
			}
			if !bytes.Equal(got, tt.want) || got == nil {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrintParseRoundTrip(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	got, err := Parse(Print(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("round trip changed the payload")
	}
}

func TestPrimitives(t *testing.T) {
	if v, err := ToInt64(FromInt64(-42)); err != nil || v != -42 {
		t.Errorf("int64 = %d, %v", v, err)
	}
	if v, err := ToFloat64(FromFloat64(math.Pi)); err != nil || v != math.Pi {
		t.Errorf("float64 = %v, %v", v, err)
	}
	if v, err := ToBool(FromBool(true)); err != nil || !v {
		t.Errorf("bool = %v, %v", v, err)
	}
	if v, err := ToString(FromString("привет")); err != nil || v != "привет" {
		t.Errorf("string = %q, %v", v, err)
	}

	if _, err := ToInt64([]byte{1, 2}); !errors.Is(err, ErrWrongSize) {
		t.Errorf("ToInt64 short error = %v, want ErrWrongSize", err)
	}
	if _, err := ToBool(nil); !errors.Is(err, ErrWrongSize) {
		t.Errorf("ToBool nil error = %v, want ErrWrongSize", err)
	}
	if _, err := ToString([]byte{0xff, 0xfe}); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("ToString error = %v, want ErrInvalidUTF8", err)
	}
}
