package analysis

import (
	"fmt"

	"github.com/andrewdavidmackenzie/wazm/wasm"
)

const opReturnCall byte = 0x12

// cursor walks an instruction stream without canonicality checks. Code
// bodies are opaque to the codec layer, and producers are allowed to pad
// LEB128 immediates, so the strict section reader does not apply here.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) done() bool { return c.pos >= len(c.data) }

func (c *cursor) byte() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, errTruncated
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) skip(n int) error {
	if len(c.data)-c.pos < n {
		return errTruncated
	}
	c.pos += n
	return nil
}

// varU reads a LEB128 value of at most max bytes, minimal or not.
func (c *cursor) varU(max int) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; i < max; i++ {
		b, err := c.byte()
		if err != nil {
			return 0, err
		}
		if shift < 64 {
			v |= uint64(b&0x7F) << shift
		}
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
	return 0, errImmediate
}

var (
	errTruncated = fmt.Errorf("truncated instruction stream")
	errImmediate = fmt.Errorf("oversized immediate")
)

func skipMemArg(c *cursor) error {
	align, err := c.varU(5)
	if err != nil {
		return err
	}
	if align&0x40 != 0 {
		if _, err := c.varU(5); err != nil {
			return err
		}
	}
	// Offsets are 64-bit under memory64.
	_, err = c.varU(10)
	return err
}

func skipImm(c *cursor, shape immShape) error {
	switch shape {
	case immNone:
		return nil
	case immIndex, immI32, immBlockType, immHeapType:
		_, err := c.varU(5)
		return err
	case immIndexPair:
		if _, err := c.varU(5); err != nil {
			return err
		}
		_, err := c.varU(5)
		return err
	case immMemArg:
		return skipMemArg(c)
	case immMemArgLane:
		if err := skipMemArg(c); err != nil {
			return err
		}
		return c.skip(1)
	case immBrTable:
		n, err := c.varU(5)
		if err != nil {
			return err
		}
		if n > uint64(len(c.data)-c.pos) {
			return errTruncated
		}
		for i := uint64(0); i < n; i++ {
			if _, err := c.varU(5); err != nil {
				return err
			}
		}
		_, err = c.varU(5)
		return err
	case immI64:
		_, err := c.varU(10)
		return err
	case immF32:
		return c.skip(4)
	case immF64:
		return c.skip(8)
	case immV128:
		return c.skip(16)
	case immByte:
		return c.skip(1)
	case immValTypes:
		n, err := c.varU(5)
		if err != nil {
			return err
		}
		if n > uint64(len(c.data)-c.pos) {
			return errTruncated
		}
		return c.skip(int(n))
	}
	return nil
}

// scanBody walks one function body, collecting direct call targets. When
// hist is non-nil each operator name is tallied into it, and total is
// incremented per operator.
func scanBody(code []byte, hist map[string]uint64, total *uint64) ([]uint32, error) {
	c := &cursor{data: code}
	var calls []uint32
	for !c.done() {
		op, err := c.byte()
		if err != nil {
			return calls, err
		}
		var name string
		switch op {
		case wasm.OpPrefixMisc, wasm.OpPrefixSIMD, wasm.OpPrefixAtomic:
			sub64, err := c.varU(5)
			if err != nil {
				return calls, err
			}
			sub := uint32(sub64)
			var shape immShape
			switch op {
			case wasm.OpPrefixMisc:
				info, ok := miscInfo(sub)
				if !ok {
					return calls, fmt.Errorf("unknown misc opcode 0x%02x", sub)
				}
				name, shape = info.name, info.imm
			case wasm.OpPrefixSIMD:
				name, shape = simdName(sub), simdShape(sub)
			default:
				name, shape = atomicName(sub), atomicShape(sub)
			}
			if err := skipImm(c, shape); err != nil {
				return calls, err
			}
		case wasm.OpPrefixGC:
			return calls, fmt.Errorf("unsupported opcode prefix 0x%02x", op)
		case wasm.OpCall, opReturnCall:
			callee, err := c.varU(5)
			if err != nil {
				return calls, err
			}
			calls = append(calls, uint32(callee))
			name = coreOps[op].name
		default:
			info := coreOps[op]
			if info.name == "" {
				return calls, fmt.Errorf("unknown opcode 0x%02x", op)
			}
			if err := skipImm(c, info.imm); err != nil {
				return calls, err
			}
			name = info.name
		}
		if hist != nil {
			hist[name]++
		}
		if total != nil {
			*total++
		}
	}
	return calls, nil
}
