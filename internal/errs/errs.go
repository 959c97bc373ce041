// Package errs defines the stable, user-visible error taxonomy shared by
// every leta component (§7). Handlers convert any failure into one of these
// kinds; nothing above the LSP client layer panics on server misbehavior.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds that carry no extra data.
var (
	// ErrNotFound means a symbol expression matched zero entries.
	ErrNotFound = errors.New("not found")

	// ErrTimedOut means an LSP request exceeded its deadline.
	ErrTimedOut = errors.New("timed out")

	// ErrServerDead means the subprocess exited during the request.
	ErrServerDead = errors.New("server dead")

	// ErrRestarted means a workspace restart invalidated the in-flight request.
	ErrRestarted = errors.New("restarted")

	// ErrProtocol means a malformed frame or unparseable payload was received.
	ErrProtocol = errors.New("protocol error")

	// ErrIO means a filesystem or IPC I/O failure occurred.
	ErrIO = errors.New("i/o error")

	// ErrUsage means malformed input from the CLI user.
	ErrUsage = errors.New("usage error")

	// ErrSignatureChanged means replace-function's signature check failed.
	ErrSignatureChanged = errors.New("signature changed")

	// ErrPathNotFound means calls --from/--to BFS exhausted without a path.
	ErrPathNotFound = errors.New("path not found")
)

// NotSupportedError reports that a server lacks a required capability.
type NotSupportedError struct {
	Capability string
	Server     string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: capability %q not supported", e.Server, e.Capability)
}

// AmbiguousError carries the candidate list surfaced when a symbol
// expression fails to disambiguate to a single location.
type AmbiguousError struct {
	Expression string
	Candidates []string // formatted qualified names, pastable as next argument
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous among %d candidates", e.Expression, len(e.Candidates))
}

// ServerError wraps an error with the language server it originated from.
type ServerError struct {
	LanguageID string
	Err        error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server %s: %v", e.LanguageID, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// RPCError represents a JSON-RPC error returned by a server (§7 ServerError{code,message}).
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Kind is the stable string tag attached to IPC error envelopes and used by
// the CLI to select an exit code (§6, §7).
type Kind string

const (
	KindNotFound         Kind = "NotFound"
	KindAmbiguous        Kind = "Ambiguous"
	KindNotSupported     Kind = "NotSupported"
	KindTimedOut         Kind = "TimedOut"
	KindServerDead       Kind = "ServerDead"
	KindRestarted        Kind = "Restarted"
	KindProtocolError    Kind = "ProtocolError"
	KindServerError      Kind = "ServerError"
	KindIOError          Kind = "IOError"
	KindUsageError       Kind = "UsageError"
	KindSignatureChanged Kind = "SignatureChanged"
	KindPathNotFound     Kind = "PathNotFound"
	KindInternal         Kind = "InternalError"
)

// Classify maps an error produced anywhere in the daemon to its taxonomy
// kind, for the IPC response envelope and CLI exit-code selection.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrTimedOut):
		return KindTimedOut
	case errors.Is(err, ErrServerDead):
		return KindServerDead
	case errors.Is(err, ErrRestarted):
		return KindRestarted
	case errors.Is(err, ErrProtocol):
		return KindProtocolError
	case errors.Is(err, ErrIO):
		return KindIOError
	case errors.Is(err, ErrUsage):
		return KindUsageError
	case errors.Is(err, ErrSignatureChanged):
		return KindSignatureChanged
	case errors.Is(err, ErrPathNotFound):
		return KindPathNotFound
	}

	var amb *AmbiguousError
	if errors.As(err, &amb) {
		return KindAmbiguous
	}
	var ns *NotSupportedError
	if errors.As(err, &ns) {
		return KindNotSupported
	}
	var rpc *RPCError
	if errors.As(err, &rpc) {
		return KindServerError
	}
	var se *ServerError
	if errors.As(err, &se) {
		return Classify(se.Err)
	}
	return KindInternal
}

// ExitCode maps a taxonomy kind to the CLI process exit code (§6: 0
// success, 1 handled error, 2 usage; exit code 3, daemon unreachable, is
// assigned by the CLI front-end itself before an error ever reaches this
// taxonomy).
func ExitCode(k Kind) int {
	switch k {
	case "":
		return 0
	case KindUsageError:
		return 2
	default:
		return 1
	}
}
