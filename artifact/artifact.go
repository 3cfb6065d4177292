// Package artifact defines the on-disk container for compressed modules.
//
// An artifact records everything needed to reconstruct the original module
// byte for byte: which tool compressed it, which transform rewrote each
// section, and the compressed image of the rewritten payloads. The
// container layout is deliberately dumb; all cleverness lives in the
// transforms and the compression backends.
//
// Container layout, uncompressed:
//
//	u32le magic "wzaf" | format version byte | tool name | module version u32le |
//	u32 entry count | (section id byte, transform id byte) * count |
//	u32 image length | compressed image
//
// The image, once decompressed, is one length-prefixed record per entry in
// module order:
//
//	(u32 payload length | payload bytes) * count
//
// Varints use canonical LEB128, same as the module format. An artifact
// whose framing does not parse, whose varints are padded, or whose lengths
// disagree with the bytes present is malformed; there is no partial decode.
package artifact

import (
	"bytes"
	"fmt"
	"io"

	goerrors "errors"

	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/internal/binary"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

const (
	// Magic identifies an artifact file: "wzaf" read as a little-endian u32.
	Magic uint32 = 0x66617A77

	// FormatVersion is bumped when the container layout changes.
	FormatVersion byte = 1

	// Extension is the conventional artifact file suffix.
	Extension = ".wz"
)

// Entry pairs one module section with the transform that rewrote it. The
// entry's position in the artifact is the section's position in the module.
type Entry struct {
	SectionID   wasm.SectionID
	TransformID byte
}

// Artifact is a decoded container. Image holds the compressed bytes
// verbatim; decompressing and splitting it is the caller's job because only
// the backend layer knows the tool's codec.
type Artifact struct {
	Tool          string
	ModuleVersion uint32
	Entries       []Entry
	Image         []byte
}

// Encode serializes the artifact container.
func (a *Artifact) Encode() []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.Byte(FormatVersion)
	w.WriteName(a.Tool)
	w.WriteU32LE(a.ModuleVersion)
	w.WriteU32(uint32(len(a.Entries)))
	for _, e := range a.Entries {
		w.Byte(byte(e.SectionID))
		w.Byte(e.TransformID)
	}
	w.WriteU32(uint32(len(a.Image)))
	w.WriteBytes(a.Image)
	return w.Bytes()
}

// Decode parses an artifact container. Any framing defect is a
// malformed-artifact error.
func Decode(data []byte) (*Artifact, error) {
	br := bytes.NewReader(data)
	r := binary.NewReader(br)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, errors.MalformedArtifact("file shorter than magic", err)
	}
	if magic != Magic {
		return nil, errors.MalformedArtifact(fmt.Sprintf("invalid magic 0x%08X", magic), nil)
	}

	version, err := r.ReadByte()
	if err != nil {
		return nil, errors.MalformedArtifact("file shorter than format version", err)
	}
	if version != FormatVersion {
		return nil, errors.MalformedArtifact(fmt.Sprintf("unsupported format version %d", version), nil)
	}

	a := &Artifact{}
	if a.Tool, err = r.ReadName(); err != nil {
		return nil, wrapFraming("tool name", err)
	}
	if a.Tool == "" {
		return nil, errors.MalformedArtifact("empty tool name", nil)
	}
	if a.ModuleVersion, err = r.ReadU32LE(); err != nil {
		return nil, wrapFraming("module version", err)
	}

	count, err := r.ReadU32()
	if err != nil {
		return nil, wrapFraming("entry count", err)
	}
	if int64(count)*2 > int64(br.Len()) {
		return nil, errors.MalformedArtifact(
			fmt.Sprintf("entry count %d exceeds %d remaining bytes", count, br.Len()), nil)
	}
	a.Entries = make([]Entry, count)
	for i := range a.Entries {
		id, err := r.ReadByte()
		if err != nil {
			return nil, wrapFraming("entry table", err)
		}
		tid, err := r.ReadByte()
		if err != nil {
			return nil, wrapFraming("entry table", err)
		}
		a.Entries[i] = Entry{SectionID: wasm.SectionID(id), TransformID: tid}
	}

	imageLen, err := r.ReadU32()
	if err != nil {
		return nil, wrapFraming("image length", err)
	}
	if int64(imageLen) != int64(br.Len()) {
		return nil, errors.MalformedArtifact(
			fmt.Sprintf("image length %d, %d bytes follow", imageLen, br.Len()), nil)
	}
	if a.Image, err = r.ReadBytes(int(imageLen)); err != nil {
		return nil, wrapFraming("image", err)
	}

	return a, nil
}

func wrapFraming(field string, err error) error {
	switch {
	case goerrors.Is(err, binary.ErrNonCanonical):
		return errors.MalformedArtifact(field+": non-canonical varint", err)
	case goerrors.Is(err, binary.ErrOverflow):
		return errors.MalformedArtifact(field+": varint overflow", err)
	case goerrors.Is(err, io.EOF), goerrors.Is(err, io.ErrUnexpectedEOF):
		return errors.MalformedArtifact(field+": truncated", err)
	}
	return errors.MalformedArtifact(field, err)
}
