package constants

import "time"

const (
	// InitialPageSize is doubled before the first listtransactions call.
	InitialPageSize = 5

	DefaultRefreshInterval  = 10 * time.Second
	DefaultFetchConcurrency = 4
	DefaultListLimit        = 20

	DateFormat = "2006-01-02 15:04:05"
)
