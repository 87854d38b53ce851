package importer

import "errors"

// Result classifies the outcome of an import.
type Result int

const (
	// Success: the container is now part of the workspace.
	Success Result = iota
	// AlreadyExists: a source container with the same language and
	// identifier is already imported.
	AlreadyExists
	// UnmatchedHelp: a help container declared no relation that resolves to
	// an imported book.
	UnmatchedHelp
	// LoadError: the container could not be read or written.
	LoadError
)

// String implements fmt.Stringer for logs and CLI output.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case AlreadyExists:
		return "already exists"
	case UnmatchedHelp:
		return "unmatched help"
	case LoadError:
		return "load error"
	default:
		return "unknown"
	}
}

// ErrNotFound reports a Remove target that is not imported.
var ErrNotFound = errors.New("container not found")

// ErrDependencyExists reports a Remove target that derived containers still
// reference.
var ErrDependencyExists = errors.New("derived containers depend on this container")

// resultError carries a non-success classification out of the transaction;
// Import translates it at the boundary.
type resultError struct {
	result Result
	err    error
}

func (e *resultError) Error() string {
	if e.err != nil {
		return e.result.String() + ": " + e.err.Error()
	}
	return e.result.String()
}

func (e *resultError) Unwrap() error {
	return e.err
}

func abort(result Result, err error) error {
	return &resultError{result: result, err: err}
}
