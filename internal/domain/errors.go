package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound means the fetched page has no forecast table. The run
	// produced nothing and must not be persisted.
	ErrTableNotFound = errors.New("forecast table not found")

	// ErrEmptyRegionName is reported for a region cell without text; its
	// records would have no key to be stored under.
	ErrEmptyRegionName = errors.New("empty region name")

	// ErrRowMissing is reported when a region row node is nil.
	ErrRowMissing = errors.New("region row missing")

	// ErrCellMissing is reported when a forecast cell node is nil.
	ErrCellMissing = errors.New("forecast cell missing")
)

// RegionError records a failure scoped to one region row. Records parsed from
// the same row before or after the failure are kept.
type RegionError struct {
	Region string
	Err    error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("failed to get weekly weather forecast: region=%s: %v", e.Region, e.Err)
}

func (e *RegionError) Unwrap() error { return e.Err }

// CellError records a failure of a single forecast cell.
type CellError struct {
	Offset int
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("forecast cell %d: %v", e.Offset, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
