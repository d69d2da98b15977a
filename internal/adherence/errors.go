package adherence

import "errors"

var (
	// ErrInvalidDate is returned when a dose carries a date that cannot be read as a calendar day.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidConfiguration is returned when an engine or calculator is built with unusable settings.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
