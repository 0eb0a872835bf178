package engine

// CancelMessage is the literal error text a cancelled request carries across
// the boundary. Callers on the far side match on this sentinel string.
const CancelMessage = "cancelled"

// cancelledError marks a generation terminated by a superseding request,
// an explicit cancel-all, or a reconfigure. All three surface identically.
type cancelledError struct{}

func (cancelledError) Error() string { return CancelMessage }

func ErrCancelled() error { return cancelledError{} }

// IsCancelled reports whether err indicates a cancelled generation or load.
func IsCancelled(err error) bool {
	_, ok := err.(cancelledError)
	return ok
}

// invalidOptionsError signals a rejected generation-options update.
type invalidOptionsError struct{ msg string }

func (e invalidOptionsError) Error() string { return e.msg }

func ErrInvalidOptions(msg string) error { return invalidOptionsError{msg: msg} }

// IsInvalidOptions reports whether err indicates rejected option values.
func IsInvalidOptions(err error) bool {
	_, ok := err.(invalidOptionsError)
	return ok
}

// dependencyUnavailableError signals a missing runtime dependency (e.g. the
// native model backend) so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	_, ok := err.(dependencyUnavailableError)
	return ok
}
