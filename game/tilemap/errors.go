package tilemap

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedMap = errors.New("malformed map")
	ErrEmptyMap     = errors.New("map has no rows")
)

// MalformedMapError reports the first offending cell of a map file.
type MalformedMapError struct {
	Row    int // 1-based, 0 when the map as a whole is at fault
	Column int // 1-based, 0 when the whole row is at fault
	Reason string
	Err    error // optional sentinel such as ErrEmptyMap
}

func (e *MalformedMapError) Error() string {
	switch {
	case e.Row == 0:
		return "malformed map: " + e.Reason
	case e.Column == 0:
		return fmt.Sprintf("malformed map: row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed map: row %d, col %d: %s", e.Row, e.Column, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedMap) and with
// the more specific sentinel when one is set.
func (e *MalformedMapError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedMap}
	}
	return []error{ErrMalformedMap, e.Err}
}

func emptyMapError() error {
	return &MalformedMapError{Reason: ErrEmptyMap.Error(), Err: ErrEmptyMap}
}

// MapLoadError is returned when a map file cannot be turned into a Grid,
// either because it could not be read or because its contents are malformed.
type MapLoadError struct {
	Path string
	Err  error
}

func (e *MapLoadError) Error() string {
	return fmt.Sprintf("failed to load map %s: %v", e.Path, e.Err)
}

func (e *MapLoadError) Unwrap() error {
	return e.Err
}
