package wasm_test

import (
	"testing"

	"github.com/andrewdavidmackenzie/wazm/wasm"
)

func TestScanInitExpr(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want int
	}{
		{"empty expression", []byte{0x0B}, 1},
		{"i32.const", []byte{0x41, 0x2A, 0x0B}, 3},
		{"i32.const negative", []byte{0x41, 0x7F, 0x0B}, 3},
		{"i64.const multi-byte", []byte{0x42, 0x80, 0x01, 0x0B}, 4},
		{"f32.const", []byte{0x43, 0x00, 0x00, 0x80, 0x3F, 0x0B}, 6},
		{"f64.const", []byte{0x44, 0, 0, 0, 0, 0, 0, 0xF0, 0x3F, 0x0B}, 10},
		{"global.get", []byte{0x23, 0x07, 0x0B}, 3},
		{"ref.null funcref", []byte{0xD0, 0x70, 0x0B}, 3},
		{"ref.func", []byte{0xD2, 0x03, 0x0B}, 3},
		{"v128.const", append(append([]byte{0xFD, 0x0C}, make([]byte, 16)...), 0x0B), 19},
		{"extended const arithmetic", []byte{0x41, 0x01, 0x41, 0x02, 0x6A, 0x0B}, 6},
		{"stops at first end", []byte{0x41, 0x00, 0x0B, 0x41, 0x01, 0x0B}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wasm.ScanInitExpr(tt.data)
			if err != nil {
				t.Fatalf("ScanInitExpr: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected length %d, got %d", tt.want, got)
			}
		})
	}
}

func TestScanInitExprErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"missing end", []byte{0x41, 0x00}},
		{"non-constant opcode", []byte{0x20, 0x00, 0x0B}},
		{"non-constant SIMD opcode", []byte{0xFD, 0x00, 0x0B}},
		{"truncated f64 immediate", []byte{0x44, 0x00, 0x00}},
		{"truncated v128 immediate", []byte{0xFD, 0x0C, 0x00, 0x0B}},
		{"padded immediate", []byte{0x41, 0x80, 0x00, 0x0B}},
		{"truncated immediate", []byte{0x42, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := wasm.ScanInitExpr(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}
