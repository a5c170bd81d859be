package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	mboxlib "github.com/emersion/go-mbox"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-sort/sanitize"
)

var splitOutput string

var splitCmd = &cobra.Command{
	Use:   "split [mbox file]",
	Short: "Split an mbox archive into individual .eml files",
	Long:  "Split an mbox archive into individual .eml files so they can be sorted afterwards.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return splitMbox(args[0], splitOutput)
	},
}

func init() {
	splitCmd.Flags().StringVarP(&splitOutput, "output", "o", "email", "Directory to write the .eml files into")
	rootCmd.AddCommand(splitCmd)
}

func splitMbox(path, outDir string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mbox: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	reader := mboxlib.NewReader(file)
	written := 0
	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return fmt.Errorf("message %d read: %w", idx, err)
		}

		name := splitName(raw, idx)
		if err := os.WriteFile(filepath.Join(outDir, name), raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written++
	}

	fmt.Printf("Wrote %d .eml file(s) to %s\n", written, outDir)
	return nil
}

// splitName derives a file name from the Message-Id header, falling back to
// the message's position in the archive.
func splitName(raw []byte, idx int) string {
	entity, err := message.Read(bytes.NewReader(raw))
	if err == nil && entity != nil {
		header := gomail.Header{Header: entity.Header}
		if id, err := header.MessageID(); err == nil && id != "" {
			return sanitize.FileName(id) + ".eml"
		}
	}
	return fmt.Sprintf("message_%06d.eml", idx)
}
