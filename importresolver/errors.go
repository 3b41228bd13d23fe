package importresolver

import "fmt"

// ErrorTag classifies an ImportError.
type ErrorTag int

const (
	// ErrDisallowedScheme covers a URL scheme not in AllowedSchemes.
	ErrDisallowedScheme ErrorTag = iota
	// ErrDisallowedExtension covers a URL path extension not in Extensions.
	ErrDisallowedExtension
	// ErrSensitivePath covers a file path under a refused prefix
	// (/etc/, /proc/, /sys/, /dev/).
	ErrSensitivePath
	// ErrNotFound covers a file that does not exist or is unreadable.
	ErrNotFound
	// ErrFetch covers a network or I/O failure while fetching.
	ErrFetch
	// ErrCircularImport covers a URL already present in the ancestor set.
	ErrCircularImport
	// ErrDepthExceeded covers MaxDepth being exceeded.
	ErrDepthExceeded
	// ErrParse covers a failure to parse the fetched CSS text.
	ErrParse
)

func (t ErrorTag) String() string {
	switch t {
	case ErrDisallowedScheme:
		return "disallowed-scheme"
	case ErrDisallowedExtension:
		return "disallowed-extension"
	case ErrSensitivePath:
		return "sensitive-path"
	case ErrNotFound:
		return "not-found"
	case ErrFetch:
		return "fetch-failed"
	case ErrCircularImport:
		return "circular-import"
	case ErrDepthExceeded:
		return "depth-exceeded"
	case ErrParse:
		return "parse-failed"
	default:
		return "unknown"
	}
}

// ImportError is returned for any failure encountered resolving a single
// @import; Resolve aggregates these via go.uber.org/multierr rather than
// aborting the whole pass on the first bad import.
type ImportError struct {
	Tag ErrorTag
	URL string
	Msg string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Tag, e.Msg, e.URL)
}

func newImportError(tag ErrorTag, url, msg string) *ImportError {
	return &ImportError{Tag: tag, URL: url, Msg: msg}
}
