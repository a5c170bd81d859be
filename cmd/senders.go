package cmd

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhcgn/eml-sort/scan"
	"github.com/dhcgn/eml-sort/stats"
)

var (
	sendersSource string
	sendersTopN   int
	sendersReport string
)

var sendersCmd = &cobra.Command{
	Use:   "senders",
	Short: "Analyse the source directory and show per-sender statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner, err := scan.NewScanner(scan.Options{
			SourceDir:       sendersSource,
			SkipUnparseable: true,
		}, slog.Default())
		if err != nil {
			return err
		}

		result, err := scanner.Run()
		if err != nil {
			return fmt.Errorf("scan %s: %w", sendersSource, err)
		}

		headersToTrack := []string{"From", "Subject"}
		counter := make(map[string]map[string]int)
		for _, h := range headersToTrack {
			counter[h] = make(map[string]int)
		}
		for _, msg := range result.Messages {
			counter["From"][msg.Sender]++
			counter["Subject"][msg.Subject]++
		}

		fmt.Printf("Scanned %d message(s) in %s (%d skipped)\n\n", len(result.Messages), sendersSource, len(result.Skipped))

		for _, header := range headersToTrack {
			fmt.Printf("Top %d %s:\n", sendersTopN, header)
			stats.PrettyPrintTop(counter[header], sendersTopN)
			fmt.Println()
		}

		if sendersReport != "" {
			if err := saveCSVReports(counter, headersToTrack, sendersReport, 1000); err != nil {
				return fmt.Errorf("error saving CSV reports: %w", err)
			}
			fmt.Printf("Reports saved to directory: %s\n", sendersReport)
		}

		return nil
	},
}

func init() {
	sendersCmd.Flags().StringVarP(&sendersSource, "source", "s", "email", "Directory containing the .eml files to analyse")
	sendersCmd.Flags().IntVarP(&sendersTopN, "top", "t", 10, "Number of top items to display in statistics")
	sendersCmd.Flags().StringVarP(&sendersReport, "output", "o", "", "Output directory for CSV reports (disabled when empty)")
	rootCmd.AddCommand(sendersCmd)
}

func saveCSVReports(counter map[string]map[string]int, headers []string, dir string, limit int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Write data for each header category to a separate file
	for _, header := range headers {
		counts := counter[header]

		filename := fmt.Sprintf("report_%s.csv", strings.ToLower(header))
		filePath := filepath.Join(dir, filename)

		file, err := os.Create(filePath)
		if err != nil {
			return err
		}

		writer := csv.NewWriter(file)

		if err := writer.Write([]string{"Value", "Count"}); err != nil {
			file.Close()
			return err
		}

		// Sort by count descending
		type pair struct {
			Key   string
			Value int
		}
		var pairs []pair
		for k, v := range counts {
			pairs = append(pairs, pair{k, v})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].Value > pairs[j].Value
		})

		for i := 0; i < limit && i < len(pairs); i++ {
			record := []string{
				pairs[i].Key,
				strconv.Itoa(pairs[i].Value),
			}
			if err := writer.Write(record); err != nil {
				file.Close()
				return err
			}
		}

		writer.Flush()
		file.Close()

		if err := writer.Error(); err != nil {
			return err
		}
	}

	return nil
}
