package artifact

import (
	"bytes"
	"fmt"

	"github.com/andrewdavidmackenzie/wazm/errors"
	"github.com/andrewdavidmackenzie/wazm/internal/binary"
)

// BuildImage concatenates section payloads into the uncompressed image:
// one length-prefixed record per payload, in order.
func BuildImage(payloads [][]byte) []byte {
	w := binary.NewWriter()
	for _, p := range payloads {
		w.WriteU32(uint32(len(p)))
		w.WriteBytes(p)
	}
	return w.Bytes()
}

// SplitImage cuts a decompressed image back into its n payloads. The image
// must contain exactly n records and nothing else; anything less or more
// means the artifact and its entry table disagree.
func SplitImage(image []byte, n int) ([][]byte, error) {
	br := bytes.NewReader(image)
	r := binary.NewReader(br)

	payloads := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return nil, wrapFraming(fmt.Sprintf("image record %d length", i), err)
		}
		if int64(size) > int64(br.Len()) {
			return nil, errors.MalformedArtifact(
				fmt.Sprintf("image record %d: length %d exceeds %d remaining bytes", i, size, br.Len()), nil)
		}
		p, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, wrapFraming(fmt.Sprintf("image record %d", i), err)
		}
		payloads = append(payloads, p)
	}
	if br.Len() != 0 {
		return nil, errors.MalformedArtifact(
			fmt.Sprintf("%d trailing bytes after %d image records", br.Len(), n), nil)
	}
	return payloads, nil
}
