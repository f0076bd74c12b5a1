package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// DataError reports malformed or missing upstream fields.
type DataError struct {
	msg string
}

func (e *DataError) Error() string {
	return "data error: " + e.msg
}

// LookupError reports a driver that could not be found.
type LookupError struct {
	DriverNumber int
	msg          string
}

func (e *LookupError) Error() string {
	return "lookup error: " + e.msg
}

// ConsistencyError reports duplicate or invalid positions in a snapshot.
type ConsistencyError struct {
	msg string
}

func (e *ConsistencyError) Error() string {
	return "consistency error: " + e.msg
}

func NewDataError(format string, args ...any) error {
	return errors.WithStack(&DataError{msg: fmt.Sprintf(format, args...)})
}

func NewLookupError(driverNumber int, format string, args ...any) error {
	return errors.WithStack(&LookupError{DriverNumber: driverNumber, msg: fmt.Sprintf(format, args...)})
}

func NewConsistencyError(format string, args ...any) error {
	return errors.WithStack(&ConsistencyError{msg: fmt.Sprintf(format, args...)})
}

func IsDataError(err error) bool {
	var target *DataError
	return errors.As(err, &target)
}

func IsLookupError(err error) bool {
	var target *LookupError
	return errors.As(err, &target)
}

func IsConsistencyError(err error) bool {
	var target *ConsistencyError
	return errors.As(err, &target)
}

// Kind names the error class for logs and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsDataError(err):
		return "data"
	case IsLookupError(err):
		return "lookup"
	case IsConsistencyError(err):
		return "consistency"
	default:
		return "other"
	}
}
