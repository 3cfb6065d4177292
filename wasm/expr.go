package wasm

import (
	"bytes"
	"fmt"

	"github.com/andrewdavidmackenzie/wazm/internal/binary"
)

// Expr holds the bytes of a constant expression, including the terminating
// end opcode. Expressions are carried verbatim so re-encoding cannot drift.
type Expr []byte

// ScanInitExpr scans a constant expression at the start of data and returns
// the number of bytes it occupies, including the terminating end opcode.
// Constant expressions appear in global initializers, element and data
// segment offsets, and element expression lists. Only the constant operator
// set is accepted: numeric consts, global.get, ref.null, ref.func, the
// extended-const arithmetic ops, and v128.const.
func ScanInitExpr(data []byte) (int, error) {
	r := binary.NewReader(bytes.NewReader(data))
	for {
		op, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("unterminated expression: %w", err)
		}
		switch op {
		case OpEnd:
			return r.Position(), nil
		case OpI32Const, OpI64Const, OpRefNull:
			// i32.const carries an s32 and ref.null an s33; the s64 scan
			// covers both widths
			if _, err := r.ReadS64(); err != nil {
				return 0, err
			}
		case OpF32Const:
			if _, err := r.ReadBytes(4); err != nil {
				return 0, err
			}
		case OpF64Const:
			if _, err := r.ReadBytes(8); err != nil {
				return 0, err
			}
		case OpGlobalGet, OpRefFunc:
			if _, err := r.ReadU32(); err != nil {
				return 0, err
			}
		case OpI32Add, OpI32Sub, OpI32Mul, OpI64Add, OpI64Sub, OpI64Mul:
			// extended-const arithmetic, no immediates
		case OpPrefixSIMD:
			sub, err := r.ReadU32()
			if err != nil {
				return 0, err
			}
			if sub != simdV128Const {
				return 0, fmt.Errorf("non-constant SIMD opcode 0x%02x in expression", sub)
			}
			if _, err := r.ReadBytes(16); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("non-constant opcode 0x%02x in expression", op)
		}
	}
}
