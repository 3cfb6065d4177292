package analysis

import "fmt"

// immShape classifies an instruction's immediate bytes so the scanner can
// skip them without modeling every operand.
type immShape byte

const (
	immNone       immShape = iota
	immIndex               // one u32 index
	immIndexPair           // two u32 indices
	immMemArg              // alignment, optional memory index, offset
	immMemArgLane          // memarg followed by a lane byte
	immBlockType           // s33 block type
	immBrTable             // label vector plus default label
	immI32                 // signed 32-bit constant
	immI64                 // signed 64-bit constant
	immF32                 // 4 raw bytes
	immF64                 // 8 raw bytes
	immV128                // 16 raw bytes
	immByte                // one raw byte
	immValTypes            // vector of value types
	immHeapType            // s33 heap type
)

type opInfo struct {
	name string
	imm  immShape
}

// coreOps covers the single-byte opcode space. An empty name marks an
// undefined or unsupported encoding; hitting one aborts the body scan.
var coreOps = [256]opInfo{
	0x00: {"unreachable", immNone},
	0x01: {"nop", immNone},
	0x02: {"block", immBlockType},
	0x03: {"loop", immBlockType},
	0x04: {"if", immBlockType},
	0x05: {"else", immNone},
	0x06: {"try", immBlockType},
	0x07: {"catch", immIndex},
	0x08: {"throw", immIndex},
	0x09: {"rethrow", immIndex},
	0x0A: {"throw_ref", immNone},
	0x0B: {"end", immNone},
	0x0C: {"br", immIndex},
	0x0D: {"br_if", immIndex},
	0x0E: {"br_table", immBrTable},
	0x0F: {"return", immNone},
	0x10: {"call", immIndex},
	0x11: {"call_indirect", immIndexPair},
	0x12: {"return_call", immIndex},
	0x13: {"return_call_indirect", immIndexPair},
	0x14: {"call_ref", immIndex},
	0x15: {"return_call_ref", immIndex},
	0x18: {"delegate", immIndex},
	0x19: {"catch_all", immNone},
	0x1A: {"drop", immNone},
	0x1B: {"select", immNone},
	0x1C: {"select", immValTypes},
	0x20: {"local.get", immIndex},
	0x21: {"local.set", immIndex},
	0x22: {"local.tee", immIndex},
	0x23: {"global.get", immIndex},
	0x24: {"global.set", immIndex},
	0x25: {"table.get", immIndex},
	0x26: {"table.set", immIndex},
	0x28: {"i32.load", immMemArg},
	0x29: {"i64.load", immMemArg},
	0x2A: {"f32.load", immMemArg},
	0x2B: {"f64.load", immMemArg},
	0x2C: {"i32.load8_s", immMemArg},
	0x2D: {"i32.load8_u", immMemArg},
	0x2E: {"i32.load16_s", immMemArg},
	0x2F: {"i32.load16_u", immMemArg},
	0x30: {"i64.load8_s", immMemArg},
	0x31: {"i64.load8_u", immMemArg},
	0x32: {"i64.load16_s", immMemArg},
	0x33: {"i64.load16_u", immMemArg},
	0x34: {"i64.load32_s", immMemArg},
	0x35: {"i64.load32_u", immMemArg},
	0x36: {"i32.store", immMemArg},
	0x37: {"i64.store", immMemArg},
	0x38: {"f32.store", immMemArg},
	0x39: {"f64.store", immMemArg},
	0x3A: {"i32.store8", immMemArg},
	0x3B: {"i32.store16", immMemArg},
	0x3C: {"i64.store8", immMemArg},
	0x3D: {"i64.store16", immMemArg},
	0x3E: {"i64.store32", immMemArg},
	0x3F: {"memory.size", immIndex},
	0x40: {"memory.grow", immIndex},
	0x41: {"i32.const", immI32},
	0x42: {"i64.const", immI64},
	0x43: {"f32.const", immF32},
	0x44: {"f64.const", immF64},
	0x45: {"i32.eqz", immNone},
	0x46: {"i32.eq", immNone},
	0x47: {"i32.ne", immNone},
	0x48: {"i32.lt_s", immNone},
	0x49: {"i32.lt_u", immNone},
	0x4A: {"i32.gt_s", immNone},
	0x4B: {"i32.gt_u", immNone},
	0x4C: {"i32.le_s", immNone},
	0x4D: {"i32.le_u", immNone},
	0x4E: {"i32.ge_s", immNone},
	0x4F: {"i32.ge_u", immNone},
	0x50: {"i64.eqz", immNone},
	0x51: {"i64.eq", immNone},
	0x52: {"i64.ne", immNone},
	0x53: {"i64.lt_s", immNone},
	0x54: {"i64.lt_u", immNone},
	0x55: {"i64.gt_s", immNone},
	0x56: {"i64.gt_u", immNone},
	0x57: {"i64.le_s", immNone},
	0x58: {"i64.le_u", immNone},
	0x59: {"i64.ge_s", immNone},
	0x5A: {"i64.ge_u", immNone},
	0x5B: {"f32.eq", immNone},
	0x5C: {"f32.ne", immNone},
	0x5D: {"f32.lt", immNone},
	0x5E: {"f32.gt", immNone},
	0x5F: {"f32.le", immNone},
	0x60: {"f32.ge", immNone},
	0x61: {"f64.eq", immNone},
	0x62: {"f64.ne", immNone},
	0x63: {"f64.lt", immNone},
	0x64: {"f64.gt", immNone},
	0x65: {"f64.le", immNone},
	0x66: {"f64.ge", immNone},
	0x67: {"i32.clz", immNone},
	0x68: {"i32.ctz", immNone},
	0x69: {"i32.popcnt", immNone},
	0x6A: {"i32.add", immNone},
	0x6B: {"i32.sub", immNone},
	0x6C: {"i32.mul", immNone},
	0x6D: {"i32.div_s", immNone},
	0x6E: {"i32.div_u", immNone},
	0x6F: {"i32.rem_s", immNone},
	0x70: {"i32.rem_u", immNone},
	0x71: {"i32.and", immNone},
	0x72: {"i32.or", immNone},
	0x73: {"i32.xor", immNone},
	0x74: {"i32.shl", immNone},
	0x75: {"i32.shr_s", immNone},
	0x76: {"i32.shr_u", immNone},
	0x77: {"i32.rotl", immNone},
	0x78: {"i32.rotr", immNone},
	0x79: {"i64.clz", immNone},
	0x7A: {"i64.ctz", immNone},
	0x7B: {"i64.popcnt", immNone},
	0x7C: {"i64.add", immNone},
	0x7D: {"i64.sub", immNone},
	0x7E: {"i64.mul", immNone},
	0x7F: {"i64.div_s", immNone},
	0x80: {"i64.div_u", immNone},
	0x81: {"i64.rem_s", immNone},
	0x82: {"i64.rem_u", immNone},
	0x83: {"i64.and", immNone},
	0x84: {"i64.or", immNone},
	0x85: {"i64.xor", immNone},
	0x86: {"i64.shl", immNone},
	0x87: {"i64.shr_s", immNone},
	0x88: {"i64.shr_u", immNone},
	0x89: {"i64.rotl", immNone},
	0x8A: {"i64.rotr", immNone},
	0x8B: {"f32.abs", immNone},
	0x8C: {"f32.neg", immNone},
	0x8D: {"f32.ceil", immNone},
	0x8E: {"f32.floor", immNone},
	0x8F: {"f32.trunc", immNone},
	0x90: {"f32.nearest", immNone},
	0x91: {"f32.sqrt", immNone},
	0x92: {"f32.add", immNone},
	0x93: {"f32.sub", immNone},
	0x94: {"f32.mul", immNone},
	0x95: {"f32.div", immNone},
	0x96: {"f32.min", immNone},
	0x97: {"f32.max", immNone},
	0x98: {"f32.copysign", immNone},
	0x99: {"f64.abs", immNone},
	0x9A: {"f64.neg", immNone},
	0x9B: {"f64.ceil", immNone},
	0x9C: {"f64.floor", immNone},
	0x9D: {"f64.trunc", immNone},
	0x9E: {"f64.nearest", immNone},
	0x9F: {"f64.sqrt", immNone},
	0xA0: {"f64.add", immNone},
	0xA1: {"f64.sub", immNone},
	0xA2: {"f64.mul", immNone},
	0xA3: {"f64.div", immNone},
	0xA4: {"f64.min", immNone},
	0xA5: {"f64.max", immNone},
	0xA6: {"f64.copysign", immNone},
	0xA7: {"i32.wrap_i64", immNone},
	0xA8: {"i32.trunc_f32_s", immNone},
	0xA9: {"i32.trunc_f32_u", immNone},
	0xAA: {"i32.trunc_f64_s", immNone},
	0xAB: {"i32.trunc_f64_u", immNone},
	0xAC: {"i64.extend_i32_s", immNone},
	0xAD: {"i64.extend_i32_u", immNone},
	0xAE: {"i64.trunc_f32_s", immNone},
	0xAF: {"i64.trunc_f32_u", immNone},
	0xB0: {"i64.trunc_f64_s", immNone},
	0xB1: {"i64.trunc_f64_u", immNone},
	0xB2: {"f32.convert_i32_s", immNone},
	0xB3: {"f32.convert_i32_u", immNone},
	0xB4: {"f32.convert_i64_s", immNone},
	0xB5: {"f32.convert_i64_u", immNone},
	0xB6: {"f32.demote_f64", immNone},
	0xB7: {"f64.convert_i32_s", immNone},
	0xB8: {"f64.convert_i32_u", immNone},
	0xB9: {"f64.convert_i64_s", immNone},
	0xBA: {"f64.convert_i64_u", immNone},
	0xBB: {"f64.promote_f32", immNone},
	0xBC: {"i32.reinterpret_f32", immNone},
	0xBD: {"i64.reinterpret_f64", immNone},
	0xBE: {"f32.reinterpret_i32", immNone},
	0xBF: {"f64.reinterpret_i64", immNone},
	0xC0: {"i32.extend8_s", immNone},
	0xC1: {"i32.extend16_s", immNone},
	0xC2: {"i64.extend8_s", immNone},
	0xC3: {"i64.extend16_s", immNone},
	0xC4: {"i64.extend32_s", immNone},
	0xD0: {"ref.null", immHeapType},
	0xD1: {"ref.is_null", immNone},
	0xD2: {"ref.func", immIndex},
	0xD3: {"ref.eq", immNone},
	0xD4: {"ref.as_non_null", immNone},
	0xD5: {"br_on_null", immIndex},
	0xD6: {"br_on_non_null", immIndex},
}

// miscOps names the 0xFC-prefixed sub-opcodes.
var miscOps = map[uint32]opInfo{
	0:  {"i32.trunc_sat_f32_s", immNone},
	1:  {"i32.trunc_sat_f32_u", immNone},
	2:  {"i32.trunc_sat_f64_s", immNone},
	3:  {"i32.trunc_sat_f64_u", immNone},
	4:  {"i64.trunc_sat_f32_s", immNone},
	5:  {"i64.trunc_sat_f32_u", immNone},
	6:  {"i64.trunc_sat_f64_s", immNone},
	7:  {"i64.trunc_sat_f64_u", immNone},
	8:  {"memory.init", immIndexPair},
	9:  {"data.drop", immIndex},
	10: {"memory.copy", immIndexPair},
	11: {"memory.fill", immIndex},
	12: {"table.init", immIndexPair},
	13: {"elem.drop", immIndex},
	14: {"table.copy", immIndexPair},
	15: {"table.grow", immIndex},
	16: {"table.size", immIndex},
	17: {"table.fill", immIndex},
}

// simdOps names the 0xFD-prefixed sub-opcodes the scanner can label
// precisely. Anything else still skips correctly via simdShape and shows
// up in histograms under a hex name.
var simdOps = map[uint32]string{
	0:  "v128.load",
	1:  "v128.load8x8_s",
	2:  "v128.load8x8_u",
	3:  "v128.load16x4_s",
	4:  "v128.load16x4_u",
	5:  "v128.load32x2_s",
	6:  "v128.load32x2_u",
	7:  "v128.load8_splat",
	8:  "v128.load16_splat",
	9:  "v128.load32_splat",
	10: "v128.load64_splat",
	11: "v128.store",
	12: "v128.const",
	13: "i8x16.shuffle",
	14: "i8x16.swizzle",
	15: "i8x16.splat",
	16: "i16x8.splat",
	17: "i32x4.splat",
	18: "i64x2.splat",
	19: "f32x4.splat",
	20: "f64x2.splat",
	92: "v128.load32_zero",
	93: "v128.load64_zero",
}

// simdShape classifies the immediates of any 0xFD sub-opcode.
func simdShape(sub uint32) immShape {
	switch {
	case sub <= 11, sub == 92, sub == 93:
		return immMemArg
	case sub == 12, sub == 13:
		return immV128
	case sub >= 21 && sub <= 34:
		return immByte
	case sub >= 84 && sub <= 91:
		return immMemArgLane
	}
	return immNone
}

// atomicOps names the 0xFE-prefixed sub-opcodes the scanner labels
// precisely.
var atomicOps = map[uint32]string{
	0x00: "memory.atomic.notify",
	0x01: "memory.atomic.wait32",
	0x02: "memory.atomic.wait64",
	0x03: "atomic.fence",
	0x10: "i32.atomic.load",
	0x11: "i64.atomic.load",
	0x17: "i32.atomic.store",
	0x18: "i64.atomic.store",
	0x1E: "i32.atomic.rmw.add",
	0x1F: "i64.atomic.rmw.add",
}

func atomicShape(sub uint32) immShape {
	if sub == 0x03 {
		return immByte
	}
	return immMemArg
}

func simdName(sub uint32) string {
	if name, ok := simdOps[sub]; ok {
		return name
	}
	return fmt.Sprintf("simd(0x%02x)", sub)
}

func atomicName(sub uint32) string {
	if name, ok := atomicOps[sub]; ok {
		return name
	}
	return fmt.Sprintf("atomic(0x%02x)", sub)
}

func miscInfo(sub uint32) (opInfo, bool) {
	info, ok := miscOps[sub]
	return info, ok
}
