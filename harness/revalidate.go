package harness

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/andrewdavidmackenzie/wazm/errors"
)

// revalidate compiles the restored bytes to confirm the round trip
// produced a module the runtime still accepts, not merely identical
// bytes. The interpreter configuration avoids native code generation for
// what is a validation pass only.
func revalidate(ctx context.Context, data []byte) error {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, data)
	if err != nil {
		return errors.New(errors.PhaseVerify, errors.KindMalformedModule).
			Detail("restored module failed revalidation").
			Cause(err).Build()
	}
	return compiled.Close(ctx)
}
