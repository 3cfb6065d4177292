package transform

import (
	"github.com/andrewdavidmackenzie/wazm/wasm"
)

// Identity passes payloads through untouched. It applies to every section,
// cannot fail, and anchors the bottom of the pipeline's priority order.
type Identity struct{}

func (Identity) ID() byte     { return IdentityID }
func (Identity) Name() string { return "identity" }

func (Identity) Applicable(wasm.Section) bool { return true }

func (Identity) Forward(payload []byte) ([]byte, error) { return payload, nil }

func (Identity) Inverse(data []byte) ([]byte, error) { return data, nil }
