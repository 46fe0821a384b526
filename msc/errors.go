package msc

import "errors"

var (
	// ErrInvalidConfiguration is returned when a sub-channel or frame geometry
	// does not map to an entry of the standard's tables. Nothing is constructed.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrSizeMismatch is returned when a stage receives a block whose length or
	// position disagrees with the derived parameters. The pipeline must stop.
	ErrSizeMismatch = errors.New("size mismatch")
)
