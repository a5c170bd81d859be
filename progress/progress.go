// Package progress renders the operator-facing console output of a run: one
// line per copied message plus a final summary section.
package progress

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/dhcgn/eml-sort/filter"
	"github.com/dhcgn/eml-sort/model"
	"github.com/dhcgn/eml-sort/stats"
)

type Printer struct {
	enabled bool
	started time.Time
}

// New creates a printer that emits progress output when logLevel is "info".
// Colored output is disabled when stdout is not a terminal.
func New(logLevel string) *Printer {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableColor()
	}
	return &Printer{
		enabled: logLevel == "info",
		started: time.Now(),
	}
}

// Copied prints the progress line for a completed copy.
func (p *Printer) Copied(n, total int, source, folder, name string) {
	if !p.enabled {
		return
	}
	fmt.Printf("[%d/%d] Copied email %s to folder %s with name %s\n", n, total, source, folder, name)
}

// WouldCopy prints the dry-run equivalent of Copied.
func (p *Printer) WouldCopy(n, total int, source, folder, name string) {
	if !p.enabled {
		return
	}
	fmt.Printf("[%d/%d] Would copy email %s to folder %s with name %s\n", n, total, source, folder, name)
}

// Skipped reports the files the scan excluded and why.
func (p *Printer) Skipped(skipped []model.Skipped) {
	if !p.enabled || len(skipped) == 0 {
		return
	}
	pterm.Println()
	pterm.Warning.Printf("Skipped %d file(s):\n", len(skipped))
	for _, s := range skipped {
		pterm.Warning.Printf("  %s: %s\n", s.Filename, s.Reason)
	}
	pterm.Println()
}

// FilterStats prints per-pattern hit counts for an active filter.
func (p *Printer) FilterStats(fs filter.Stats) {
	if !p.enabled {
		return
	}
	sections := []struct {
		title    string
		patterns []string
		hits     map[string]int
	}{
		{"Include header filters", fs.IncludeHeaderPatterns, fs.IncludeHeaderHits},
		{"Include body filters", fs.IncludeBodyPatterns, fs.IncludeBodyHits},
		{"Exclude header filters", fs.ExcludeHeaderPatterns, fs.ExcludeHeaderHits},
		{"Exclude body filters", fs.ExcludeBodyPatterns, fs.ExcludeBodyHits},
	}
	for _, s := range sections {
		if len(s.patterns) == 0 {
			continue
		}
		pterm.Info.Printf("%s:\n", s.title)
		for _, line := range patternHitLines(s.patterns, s.hits) {
			pterm.Info.Printf("  %s\n", line)
		}
	}
}

// patternHitLines orders patterns by hit count descending, then by pattern.
func patternHitLines(patterns []string, hits map[string]int) []string {
	type pair struct {
		pattern string
		count   int
	}
	pairs := make([]pair, 0, len(patterns))
	for _, p := range patterns {
		pairs = append(pairs, pair{p, hits[p]})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].pattern < pairs[j].pattern
	})

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("%s: %d hit(s)", p.pattern, p.count))
	}
	return lines
}

// Summary prints the final statistics section.
func (p *Printer) Summary(summary stats.Summary) {
	if !p.enabled {
		return
	}
	pterm.Println()
	pterm.DefaultSection.Println("Summary")
	pterm.Info.Printf("Duration: %v\n", time.Since(p.started))
	pterm.Info.Printf("Scanned: %d\n", summary.Scanned)
	pterm.Info.Printf("Copied: %d\n", summary.Copied)
	pterm.Info.Printf("Dry-run copies: %d\n", summary.DryRunCopied)
	pterm.Info.Printf("Skipped: %d\n", summary.Skipped)
	pterm.Info.Printf("Name collisions: %d\n", summary.Collisions)
	pterm.Info.Printf("Errors: %d\n", summary.Errors)
	if summary.LastError != nil {
		pterm.Error.Printf("Last error: %v\n", summary.LastError)
	} else {
		pterm.Success.Println("Sorting complete!")
	}
}
