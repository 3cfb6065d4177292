package transform

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// Transform ids as stored in artifacts. The id is part of the on-disk
// format and never changes for a shipped transform.
const (
	IdentityID   byte = 0
	CodeSplitID  byte = 1
	DataSplitID  byte = 2
	IndexDeltaID byte = 3
)

// Transform is a reversible section payload rewrite. Forward rearranges a
// payload into a form that compresses better; Inverse restores the original
// bytes exactly. Implementations are stateless and safe for concurrent use.
type Transform interface {
	// ID is the stable identifier recorded in artifacts.
	ID() byte

	// Name is the human-readable identifier used in logs.
	Name() string

	// Applicable reports whether the transform targets this section kind.
	// Applicability is a cheap filter; Forward may still reject a payload
	// whose internal structure does not parse.
	Applicable(s wasm.Section) bool

	// Forward rewrites the payload. The input is not modified.
	Forward(payload []byte) ([]byte, error)

	// Inverse restores the original payload from Forward's output.
	Inverse(data []byte) ([]byte, error)
}

// Pipeline selects and applies transforms in a fixed priority order. The
// identity transform is always the final entry, so selection cannot fail.
type Pipeline struct {
	transforms []Transform
	byID       map[byte]Transform
}

// New builds a pipeline trying the given transforms in order, with identity
// appended as the unconditional fallback.
func New(transforms ...Transform) *Pipeline {
	p := &Pipeline{byID: make(map[byte]Transform, len(transforms)+1)}
	for _, tr := range transforms {
		p.transforms = append(p.transforms, tr)
		p.byID[tr.ID()] = tr
	}
	id := Identity{}
	p.transforms = append(p.transforms, id)
	p.byID[id.ID()] = id
	return p
}

// Default returns the standard pipeline: code splitting, then data
// splitting, then function index deltas, then identity.
func Default() *Pipeline {
	return New(CodeSplit{}, DataSplit{}, IndexDelta{})
}

// ByID returns the transform registered under id.
func (p *Pipeline) ByID(id byte) (Transform, bool) {
	tr, ok := p.byID[id]
	return tr, ok
}

// Apply rewrites one section payload with the highest-priority applicable
// transform and returns the transform id alongside the rewritten bytes.
//
// Before accepting a rewrite, Apply proves it reversible: the inverse of
// the forward output must reproduce the payload byte for byte. A transform
// that fails to parse the payload, or fails its own invertibility check, is
// skipped with a warning and the next candidate is tried. Identity closes
// the chain, so the returned rewrite is always reversible.
func (p *Pipeline) Apply(s wasm.Section) (byte, []byte) {
	for _, tr := range p.transforms {
		if !tr.Applicable(s) {
			continue
		}

		out, err := tr.Forward(s.Payload)
		if err != nil {
			if tr.ID() != IdentityID {
				Logger().Debug("transform rejected payload",
					zap.String("transform", tr.Name()),
					zap.String("section", s.ID.String()),
					zap.Error(err))
			}
			continue
		}

		if err := checkInverse(tr, s.ID.String(), out, s.Payload); err != nil {
			Logger().Warn("transform failed invertibility check, skipping",
				zap.String("transform", tr.Name()),
				zap.String("section", s.ID.String()),
				zap.Error(err))
			continue
		}

		return tr.ID(), out
	}

	// Unreachable: identity accepts every payload.
	return IdentityID, s.Payload
}

func checkInverse(tr Transform, section string, out, payload []byte) error {
	back, err := tr.Inverse(out)
	if err != nil {
		return errors.InvariantViolation(tr.Name(), section, err.Error())
	}
	if !bytes.Equal(back, payload) {
		return errors.InvariantViolation(tr.Name(), section, "inverse does not reproduce input")
	}
	return nil
}

// Revert undoes a recorded rewrite. The id comes from an artifact, so an
// unregistered id means the artifact was produced by an incompatible
// build and is reported as such.
func (p *Pipeline) Revert(id byte, data []byte) ([]byte, error) {
	tr, ok := p.byID[id]
	if !ok {
		return nil, errors.UnknownTransform(id)
	}
	out, err := tr.Inverse(data)
	if err != nil {
		return nil, errors.MalformedArtifact("reverting "+tr.Name()+" rewrite", err)
	}
	return out, nil
}
