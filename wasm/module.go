package wasm

import (
	"bytes"

	"github.com/andrewdavidmackenzie/wazm/internal/binary"
)

// Module is the decoded unit: the format version and the ordered sequence of
// sections exactly as they appeared in the byte stream. Payloads are kept
// verbatim, so Encode reproduces the input bytes without consulting any
// kind-specific knowledge. Reordering Sections changes module semantics and
// is never done implicitly.
type Module struct {
	Version  uint32
	Sections []Section
}

// Section is one length-delimited record of a module: a section kind and its
// raw payload. The declared length from the byte stream always equals
// len(Payload); decode fails rather than truncate.
type Section struct {
	ID      SectionID
	Payload []byte
}

// CustomName returns the name of a custom section. The second result is
// false when the section is not custom or its name prefix does not parse.
func (s Section) CustomName() (string, bool) {
	if s.ID != SectionCustom {
		return "", false
	}
	r := binary.NewReader(bytes.NewReader(s.Payload))
	name, err := r.ReadName()
	if err != nil {
		return "", false
	}
	return name, true
}

// FindSection returns the first section with the given ID.
func (m *Module) FindSection(id SectionID) (Section, bool) {
	for _, s := range m.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}
