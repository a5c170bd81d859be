package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhcgn/eml-sort/filter"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestScanner_Run(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.eml", "From: alice@x.com\r\nSubject: Hi\r\nDate: Mon, 1 Jan 2024 10:00:00 +0000\r\n\r\nhello\r\n")
	writeFile(t, dir, "b.eml", "From: bob@x.com\r\n\r\nno subject or date\r\n")
	writeFile(t, dir, "c.eml", "From: alice@x.com\r\nSubject: Hi again\r\nDate: not a date\r\n\r\nhello again\r\n")
	writeFile(t, dir, "notes.txt", "not a message at all")

	scanner, err := NewScanner(Options{SourceDir: dir}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	result, err := scanner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(result.Messages))
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("Expected no skipped files, got %v", result.Skipped)
	}

	senders := result.Senders()
	if len(senders) != 2 {
		t.Fatalf("Expected 2 distinct senders, got %v", senders)
	}
	if senders[0] != "alice@x.com" || senders[1] != "bob@x.com" {
		t.Errorf("Unexpected sender order: %v", senders)
	}

	groups := result.BySender()
	if len(groups["alice@x.com"]) != 2 {
		t.Errorf("Expected 2 messages for alice, got %d", len(groups["alice@x.com"]))
	}

	first := groups["alice@x.com"][0]
	if first.Subject != "Hi" {
		t.Errorf("Subject = %q, want %q", first.Subject, "Hi")
	}
	if first.Date.IsZero() {
		t.Error("Expected parsed date for a.eml")
	}
	info, err := os.Stat(first.Path)
	if err != nil {
		t.Fatal(err)
	}
	if first.Size != info.Size() {
		t.Errorf("Size = %d, want %d", first.Size, info.Size())
	}

	// Unparseable Date header falls back to the zero time.
	second := groups["alice@x.com"][1]
	if !second.Date.IsZero() {
		t.Errorf("Expected zero date for c.eml, got %v", second.Date)
	}

	bob := groups["bob@x.com"][0]
	if bob.Subject != NoSubject {
		t.Errorf("Subject = %q, want %q", bob.Subject, NoSubject)
	}
	if !bob.Date.IsZero() {
		t.Error("Expected zero date for b.eml")
	}
}

func TestScanner_MissingFromSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nofrom.eml", "Subject: orphan\r\n\r\nbody\r\n")
	writeFile(t, dir, "ok.eml", "From: alice@x.com\r\nSubject: Hi\r\n\r\nbody\r\n")

	scanner, err := NewScanner(Options{SourceDir: dir}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	result, err := scanner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result.Messages))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped file, got %d", len(result.Skipped))
	}
	if result.Skipped[0].Filename != "nofrom.eml" {
		t.Errorf("Skipped file = %q, want %q", result.Skipped[0].Filename, "nofrom.eml")
	}
	if !strings.Contains(result.Skipped[0].Reason, "From") {
		t.Errorf("Reason %q does not mention the From header", result.Skipped[0].Reason)
	}
}

func TestScanner_UnparseableAbortsByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.eml", "this is not a header line\r\n\r\nbody\r\n")

	scanner, err := NewScanner(Options{SourceDir: dir}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	if _, err := scanner.Run(); err == nil {
		t.Fatal("Expected error for unparseable message")
	}
}

func TestScanner_SkipUnparseable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.eml", "this is not a header line\r\n\r\nbody\r\n")
	writeFile(t, dir, "ok.eml", "From: alice@x.com\r\nSubject: Hi\r\n\r\nbody\r\n")

	scanner, err := NewScanner(Options{SourceDir: dir, SkipUnparseable: true}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	result, err := scanner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result.Messages))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("Expected 1 skipped file, got %d", len(result.Skipped))
	}
	if !strings.Contains(result.Skipped[0].Reason, "unparseable") {
		t.Errorf("Reason %q does not mention unparseable", result.Skipped[0].Reason)
	}
}

func TestScanner_SubdirectoriesIgnored(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested.eml")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "inner.eml", "From: hidden@x.com\r\n\r\nbody\r\n")
	writeFile(t, dir, "ok.eml", "From: alice@x.com\r\n\r\nbody\r\n")

	scanner, err := NewScanner(Options{SourceDir: dir}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	result, err := scanner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result.Messages))
	}
	if result.Messages[0].Sender != "alice@x.com" {
		t.Errorf("Sender = %q, want %q", result.Messages[0].Sender, "alice@x.com")
	}
}

func TestScanner_EmptySubjectHeaderKept(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.eml", "From: alice@x.com\r\nSubject:\r\n\r\nbody\r\n")

	scanner, err := NewScanner(Options{SourceDir: dir}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	result, err := scanner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result.Messages))
	}
	// A present-but-empty Subject is not the same as an absent one.
	if result.Messages[0].Subject != "" {
		t.Errorf("Subject = %q, want empty string", result.Messages[0].Subject)
	}
}

func TestScanner_EncodedSubjectDecoded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b64.eml", "From: alice@x.com\r\nSubject: =?utf-8?B?R3LDvMOfZSB2b20gQsO8cm8=?=\r\n\r\nbody\r\n")
	writeFile(t, dir, "q.eml", "From: bob@x.com\r\nSubject: =?iso-8859-1?Q?Caf=E9?=\r\n\r\nbody\r\n")
	writeFile(t, dir, "plain.eml", "From: carol@x.com\r\nSubject: plain text stays =untouched?\r\n\r\nbody\r\n")

	scanner, err := NewScanner(Options{SourceDir: dir}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	result, err := scanner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	subjects := make(map[string]string)
	for _, msg := range result.Messages {
		subjects[msg.Sender] = msg.Subject
	}

	if got, want := subjects["alice@x.com"], "Grüße vom Büro"; got != want {
		t.Errorf("Subject = %q, want decoded %q", got, want)
	}
	if got, want := subjects["bob@x.com"], "Café"; got != want {
		t.Errorf("Subject = %q, want decoded %q", got, want)
	}
	if got, want := subjects["carol@x.com"], "plain text stays =untouched?"; got != want {
		t.Errorf("Subject = %q, want unchanged %q", got, want)
	}
}

func TestScanner_WithFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.eml", "From: alice@x.com\r\nSubject: invoice\r\n\r\nbody\r\n")
	writeFile(t, dir, "drop.eml", "From: mailer@spam.com\r\nSubject: offer\r\n\r\nbody\r\n")

	f, err := filter.New(filter.Options{ExcludeHeader: []string{"@spam\\.com"}})
	if err != nil {
		t.Fatalf("filter.New() error = %v", err)
	}

	scanner, err := NewScanner(Options{SourceDir: dir, Filter: f}, nil)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	result, err := scanner.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(result.Messages))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Filename != "drop.eml" {
		t.Fatalf("Expected drop.eml to be skipped, got %v", result.Skipped)
	}
}
