package compose

import "errors"

var (
	// ErrUnknownSlot is returned for a slot name other than S1, S2 or S3.
	ErrUnknownSlot = errors.New("unknown slot")
)
