package model

import "time"

// Message holds the header fields extracted from a single .eml file. Sender
// is the raw From value as it appears in the file; it is used verbatim as
// the matching key for sender folders. A zero Date means the Date header was
// absent or unparseable.
type Message struct {
	Filename string
	Path     string
	Sender   string
	Subject  string
	Date     time.Time
	Size     int64
}

// Skipped records a source file that was excluded from sorting and why.
type Skipped struct {
	Filename string
	Reason   string
}
