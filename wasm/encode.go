package wasm

import (
	"github.com/andrewdavidmackenzie/wazm/internal/binary"
)

// Encode serializes the module back into binary form. It is total: any
// Module value encodes, and for modules produced by Decode the output is
// byte-identical to the original input. Sections are written in Module
// order; nothing is reordered, merged, or dropped.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()

	w.WriteU32LE(Magic)
	w.WriteU32LE(m.Version)

	for _, s := range m.Sections {
		writeSection(w, s)
	}

	return w.Bytes()
}

func writeSection(w *binary.Writer, s Section) {
	w.Byte(byte(s.ID))
	w.WriteU32(uint32(len(s.Payload)))
	w.WriteBytes(s.Payload)
}
