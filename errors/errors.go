package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// Phase indicates where in the pipeline the error occurred
type Phase string

const (
	PhaseDecode     Phase = "decode"     // bytes to module
	PhaseEncode     Phase = "encode"     // module to bytes
	PhaseTransform  Phase = "transform"  // section rewrites
	PhaseCompress   Phase = "compress"   // backend compression
	PhaseDecompress Phase = "decompress" // backend decompression
	PhaseVerify     Phase = "verify"     // round-trip comparison
	PhaseAnalyze    Phase = "analyze"    // module inspection
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedModule    Kind = "malformed_module"    // bad magic/version, truncated or overlong varint, length mismatch
	KindUnsupportedShape   Kind = "unsupported_shape"   // section payload structure not decodable, opaque fallback applies
	KindInvariantViolation Kind = "invariant_violation" // transform failed its invertibility self-check
	KindToolInvocation     Kind = "tool_invocation"     // backend process failure, non-zero exit, or timeout
	KindRoundTripMismatch  Kind = "round_trip_mismatch" // reconstructed bytes differ from the original
	KindMalformedArtifact  Kind = "malformed_artifact"  // corrupt or truncated compressed artifact
	KindUnknownTool        Kind = "unknown_tool"        // tool name not registered
	KindUnknownTransform   Kind = "unknown_transform"   // transform id not registered
	KindIO                 Kind = "io"                  // file read/write failure
)

// Error is the structured error type used throughout the toolchain
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Tool    string
	Detail  string
	Path    []string
	Timeout bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Timeout {
		b.WriteString("(timeout)")
	}

	if e.Tool != "" {
		b.WriteString(" tool ")
		b.WriteString(e.Tool)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err or any error it wraps carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsTimeout reports whether err is a tool invocation error caused by the
// invocation deadline.
func IsTimeout(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == KindToolInvocation && e.Timeout
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path (file, section, field)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Tool sets the backend tool name
func (b *Builder) Tool(name string) *Builder {
	b.err.Tool = name
	return b
}

// Timeout marks the error as deadline-induced
func (b *Builder) Timeout() *Builder {
	b.err.Timeout = true
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the taxonomy

// MalformedModule reports unparseable module bytes. Always fatal for that
// module; the input itself is invalid.
func MalformedModule(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformedModule,
		Detail: detail,
		Cause:  cause,
	}
}

// UnsupportedShape reports a section whose internal structure the typed
// decoder cannot handle. Recoverable: the opaque representation applies.
func UnsupportedShape(section string, cause error) *Error {
	return &Error{
		Phase: PhaseDecode,
		Kind:  KindUnsupportedShape,
		Path:  []string{section},
		Cause: cause,
	}
}

// InvariantViolation reports a transform that failed its invertibility
// self-check. Recoverable: the identity transform applies instead.
func InvariantViolation(transform, section, detail string) *Error {
	return &Error{
		Phase:  PhaseTransform,
		Kind:   KindInvariantViolation,
		Path:   []string{section, transform},
		Detail: detail,
	}
}

// ToolFailure reports a backend process that failed to start, crashed, or
// exited non-zero. Fatal for the (tool, file) pair, never for the sweep.
func ToolFailure(phase Phase, tool string, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindToolInvocation,
		Tool:   tool,
		Detail: detail,
		Cause:  cause,
	}
}

// ToolTimeout reports a backend invocation that exceeded its deadline.
func ToolTimeout(phase Phase, tool string, limit time.Duration) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindToolInvocation,
		Tool:    tool,
		Detail:  fmt.Sprintf("no exit within %s", limit),
		Timeout: true,
	}
}

// MalformedArtifact reports corrupt or truncated compressed artifact bytes.
func MalformedArtifact(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecompress,
		Kind:   KindMalformedArtifact,
		Detail: detail,
		Cause:  cause,
	}
}

// UnknownTool reports a tool name with no registered backend.
func UnknownTool(name string) *Error {
	return &Error{
		Phase:  PhaseCompress,
		Kind:   KindUnknownTool,
		Tool:   name,
		Detail: "not registered",
	}
}

// UnknownTransform reports a transform identifier with no registered inverse.
func UnknownTransform(id byte) *Error {
	return &Error{
		Phase:  PhaseDecompress,
		Kind:   KindUnknownTransform,
		Detail: fmt.Sprintf("transform id 0x%02x not registered", id),
	}
}

// IOFailure reports a file system failure while moving module bytes around.
func IOFailure(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindIO,
		Path:  []string{path},
		Cause: cause,
	}
}
