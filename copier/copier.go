// Package copier writes each discovered sender's messages into its folder
// under the destination root.
package copier

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhcgn/eml-sort/model"
	"github.com/dhcgn/eml-sort/progress"
	"github.com/dhcgn/eml-sort/sanitize"
	"github.com/dhcgn/eml-sort/scan"
	"github.com/dhcgn/eml-sort/state"
	"github.com/dhcgn/eml-sort/stats"
)

const (
	// UnknownDate substitutes for an absent or unparseable Date header.
	UnknownDate = "UnknownDate"

	dateLayout = "2006-01-02_15-04-05"
)

type Options struct {
	DestDir string
	DryRun  bool
	// SuffixCollisions appends _2, _3, ... when two messages compose the
	// same destination name within one run. The default is the silent
	// overwrite the naming scheme implies.
	SuffixCollisions bool
}

type Copier struct {
	opts    Options
	tracker *state.Tracker
	sink    stats.Sink
	printer *progress.Printer
	logger  *slog.Logger
}

func New(opts Options, sink stats.Sink, printer *progress.Printer, logger *slog.Logger) (*Copier, error) {
	if strings.TrimSpace(opts.DestDir) == "" {
		return nil, fmt.Errorf("destination directory is empty")
	}
	if sink == nil {
		return nil, fmt.Errorf("stats sink must not be nil")
	}
	return &Copier{
		opts:    opts,
		tracker: state.NewTracker(),
		sink:    sink,
		printer: printer,
		logger:  logger,
	}, nil
}

// Run creates one folder per discovered sender and copies every matching
// message into it under its composed name. Messages are matched to folders
// by their raw From string; sanitization only affects the folder name. The
// first failing directory creation or copy aborts the remaining work.
func (c *Copier) Run(result scan.Result) error {
	groups := result.BySender()
	total := len(result.Messages)
	done := 0

	for _, sender := range result.Senders() {
		folder := sanitize.FolderName(sender)
		senderDir := filepath.Join(c.opts.DestDir, folder)

		if !c.opts.DryRun {
			if err := os.MkdirAll(senderDir, 0o755); err != nil {
				err = fmt.Errorf("create sender folder %s: %w", folder, err)
				c.sink.Apply(stats.Event{Stage: stats.StageCopy, Type: stats.EventTypeError, Err: err})
				return err
			}
		}

		for _, msg := range groups[sender] {
			done++
			name := ComposeName(msg)
			dest := filepath.Join(senderDir, name)

			if prior := c.tracker.Record(dest); prior > 0 {
				c.sink.Apply(stats.Event{Stage: stats.StageCopy, Type: stats.EventTypeCollision, File: msg.Filename, Detail: name})
				if c.opts.SuffixCollisions {
					name, dest = c.nextFree(senderDir, name)
				}
			}

			if c.opts.DryRun {
				c.sink.Apply(stats.Event{Stage: stats.StageCopy, Type: stats.EventTypeDryRunCopy, File: msg.Filename, Detail: name})
				if c.printer != nil {
					c.printer.WouldCopy(done, total, msg.Filename, folder, name)
				}
				continue
			}

			if err := copyFile(msg.Path, dest); err != nil {
				err = fmt.Errorf("copy %s: %w", msg.Filename, err)
				c.sink.Apply(stats.Event{Stage: stats.StageCopy, Type: stats.EventTypeError, File: msg.Filename, Err: err})
				return err
			}

			c.sink.Apply(stats.Event{Stage: stats.StageCopy, Type: stats.EventTypeCopied, File: msg.Filename, Detail: name})
			if c.printer != nil {
				c.printer.Copied(done, total, msg.Filename, folder, name)
			}
			if c.logger != nil {
				c.logger.Debug("copied message", "file", msg.Filename, "folder", folder, "name", name)
			}
		}
	}

	return nil
}

// Snapshot reports the distinct destination paths and collisions seen so far.
func (c *Copier) Snapshot() state.Snapshot {
	return c.tracker.Snapshot()
}

// ComposeName builds the destination file name from a message's sanitized
// subject and its formatted date, to one-second resolution.
func ComposeName(msg model.Message) string {
	dateStr := UnknownDate
	if !msg.Date.IsZero() {
		dateStr = msg.Date.Format(dateLayout)
	}
	return sanitize.FileName(msg.Subject) + "_" + dateStr + scan.Extension
}

// nextFree returns the first suffixed variant of name that has not been
// produced during this run.
func (c *Copier) nextFree(senderDir, name string) (string, string) {
	stem := strings.TrimSuffix(name, scan.Extension)
	for seq := 2; ; seq++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, seq, scan.Extension)
		dest := filepath.Join(senderDir, candidate)
		if c.tracker.Record(dest) == 0 {
			return candidate, dest
		}
	}
}

// copyFile copies the source file's bytes verbatim, truncating any existing
// file at dest.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
