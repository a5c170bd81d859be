// Package scan discovers senders by parsing every .eml file in the source
// directory exactly once.
package scan

import (
	"bytes"
	"fmt"
	"log/slog"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/charset"

	"github.com/dhcgn/eml-sort/filter"
	"github.com/dhcgn/eml-sort/model"
)

// Extension identifies message files; everything else in the source
// directory is invisible to the sorter.
const Extension = ".eml"

// NoSubject substitutes for an absent Subject header.
const NoSubject = "No Subject"

type Options struct {
	SourceDir       string
	SkipUnparseable bool
	Filter          *filter.Filter
}

// Result holds everything a single pass over the source directory produced.
type Result struct {
	Messages []model.Message
	Skipped  []model.Skipped
}

// Senders returns the distinct raw From values in first-seen order.
func (r Result) Senders() []string {
	seen := make(map[string]struct{}, len(r.Messages))
	senders := make([]string, 0, len(r.Messages))
	for _, msg := range r.Messages {
		if _, ok := seen[msg.Sender]; ok {
			continue
		}
		seen[msg.Sender] = struct{}{}
		senders = append(senders, msg.Sender)
	}
	return senders
}

// BySender groups messages by their raw sender string, preserving directory
// listing order within each group.
func (r Result) BySender() map[string][]model.Message {
	groups := make(map[string][]model.Message)
	for _, msg := range r.Messages {
		groups[msg.Sender] = append(groups[msg.Sender], msg)
	}
	return groups
}

type Scanner struct {
	opts   Options
	logger *slog.Logger
}

func NewScanner(opts Options, logger *slog.Logger) (*Scanner, error) {
	if strings.TrimSpace(opts.SourceDir) == "" {
		return nil, fmt.Errorf("source directory is empty")
	}
	return &Scanner{opts: opts, logger: logger}, nil
}

// Run lists the source directory once, non-recursively, and parses every
// .eml file it contains. Files without a From header, files rejected by the
// filter and (when configured) unparseable files end up in the skipped list
// instead of aborting the run.
func (s *Scanner) Run() (Result, error) {
	entries, err := os.ReadDir(s.opts.SourceDir)
	if err != nil {
		return Result{}, fmt.Errorf("list source directory: %w", err)
	}

	var result Result
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}

		path := filepath.Join(s.opts.SourceDir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return Result{}, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		if s.opts.Filter != nil && s.opts.Filter.Active() {
			header, body := filter.SplitRawMessage(raw)
			if !s.opts.Filter.Allows(header, body) {
				result.Skipped = append(result.Skipped, model.Skipped{Filename: entry.Name(), Reason: "excluded by filter"})
				continue
			}
		}

		msg, err := parseMessage(raw)
		if err != nil {
			if !s.opts.SkipUnparseable {
				return Result{}, fmt.Errorf("parse %s: %w", entry.Name(), err)
			}
			if s.logger != nil {
				s.logger.Warn("skipping unparseable message", "file", entry.Name(), "err", err)
			}
			result.Skipped = append(result.Skipped, model.Skipped{Filename: entry.Name(), Reason: fmt.Sprintf("unparseable: %v", err)})
			continue
		}

		if msg.Sender == "" {
			result.Skipped = append(result.Skipped, model.Skipped{Filename: entry.Name(), Reason: "missing From header"})
			continue
		}

		msg.Filename = entry.Name()
		msg.Path = path
		msg.Size = int64(len(raw))
		result.Messages = append(result.Messages, msg)
	}

	return result, nil
}

// wordDecoder decodes RFC 2047 encoded words in Subject headers, with
// charset support beyond UTF-8.
var wordDecoder = mime.WordDecoder{CharsetReader: charset.Reader}

// parseMessage extracts the raw From value, the decoded Subject and the
// parsed Date from a message. The From value is kept exactly as stored so it
// can serve as the folder matching key; the Subject is only used for file
// naming and is decoded first.
func parseMessage(raw []byte) (model.Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return model.Message{}, err
	}

	sender := msg.Header.Get("From")

	subject := msg.Header.Get("Subject")
	if _, present := msg.Header["Subject"]; !present {
		subject = NoSubject
	} else if decoded, err := wordDecoder.DecodeHeader(subject); err == nil {
		subject = decoded
	}

	var date time.Time
	if value := msg.Header.Get("Date"); value != "" {
		if t, err := mail.ParseDate(value); err == nil {
			date = t
		}
	}

	return model.Message{Sender: sender, Subject: subject, Date: date}, nil
}
