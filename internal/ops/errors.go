package ops

import "fmt"

// errWrapSentinel wraps err so errors.Is(result, sentinel) holds, while
// Error() still shows the underlying message — the shape every handler
// uses to surface a §7 taxonomy kind without losing the original cause.
func errWrapSentinel(sentinel, err error) error {
	return fmt.Errorf("%w: %v", sentinel, err)
}
