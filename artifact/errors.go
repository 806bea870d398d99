package artifact

import "fmt"

var (
	// ErrNotFound is returned when a report artifact with the given name does
	// not exist in the underlying store.
	ErrNotFound = fmt.Errorf("report not found")
)
