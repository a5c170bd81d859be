package stats

import (
	"fmt"
	"sort"
)

type Stage string

const (
	StageScan Stage = "scan"
	StageCopy Stage = "copy"
)

type EventType string

const (
	EventTypeScanned    EventType = "scanned"
	EventTypeCopied     EventType = "copied"
	EventTypeDryRunCopy EventType = "dry_run_copied"
	EventTypeSkipped    EventType = "skipped"
	EventTypeCollision  EventType = "collision"
	EventTypeError      EventType = "error"
)

type Event struct {
	Stage  Stage
	Type   EventType
	File   string
	Err    error
	Detail string
}

type Summary struct {
	Scanned      int
	Copied       int
	DryRunCopied int
	Skipped      int
	Collisions   int
	Errors       int
	LastError    error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"copied", s.Copied,
		"dryRunCopied", s.DryRunCopied,
		"skipped", s.Skipped,
		"collisions", s.Collisions,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Sink receives events as they happen. The run has exactly one worker, so
// implementations are applied synchronously.
type Sink interface {
	Apply(evt Event)
}

type Collector struct {
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Apply(evt Event) {
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeCopied:
		c.summary.Copied++
	case EventTypeDryRunCopy:
		c.summary.DryRunCopied++
	case EventTypeSkipped:
		c.summary.Skipped++
	case EventTypeCollision:
		c.summary.Collisions++
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	return c.summary
}

// PrettyPrintTop prints the top N most frequent items in a map.
func PrettyPrintTop(m map[string]int, limit int) {
	type pair struct {
		Key   string
		Value int
	}

	var pairs []pair
	for k, v := range m {
		pairs = append(pairs, pair{k, v})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Value > pairs[j].Value
	})

	for i := 0; i < limit && i < len(pairs); i++ {
		fmt.Printf("%d. %s (%d)\n", i+1, pairs[i].Key, pairs[i].Value)
	}
}
