package pdb

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedContainer is returned when a computed offset or length falls
	// outside the buffer. It always aborts the decode.
	ErrTruncatedContainer = errors.New("truncated PDB container")

	// ErrMissingDecoder marks a region that is present but has no decoder.
	// It is reported as a Diagnostic unless strict decoding is requested.
	ErrMissingDecoder = errors.New("no decoder configured")

	// ErrEncodingFailure is returned when a field cannot be represented in the
	// container's wire format.
	ErrEncodingFailure = errors.New("PDB encoding failure")
)

// Region names a part of the container that a Diagnostic refers to.
type Region string

const (
	RegionAppInfo  Region = "app_info"
	RegionSortInfo Region = "sort_info"
	RegionRecords  Region = "records"
)

// Diagnostic is a recoverable problem found while decoding. The affected
// region is absent from the resulting Database.
type Diagnostic struct {
	Region Region
	Offset uint32
	Err    error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", d.Region, d.Offset, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics accumulates recoverable problems from one decode.
type Diagnostics []Diagnostic

// Err joins all diagnostics into a single error, or returns nil if there are none.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i := range ds {
		errs[i] = ds[i]
	}
	return errors.Join(errs...)
}

// Skipped reports whether the given region was skipped.
func (ds Diagnostics) Skipped(r Region) bool {
	for _, d := range ds {
		if d.Region == r {
			return true
		}
	}
	return false
}

func truncated(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTruncatedContainer, what, err)
}

func encodingFailure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEncodingFailure, fmt.Sprintf(format, args...))
}
