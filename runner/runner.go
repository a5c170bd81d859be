// Package runner orchestrates a complete sort: one scan pass over the source
// directory followed by one copy pass over the discovered senders. Everything
// happens on a single worker; there is no pipeline and no cancellation, the
// run either completes or fails outright.
package runner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dhcgn/eml-sort/config"
	"github.com/dhcgn/eml-sort/copier"
	"github.com/dhcgn/eml-sort/filter"
	"github.com/dhcgn/eml-sort/progress"
	"github.com/dhcgn/eml-sort/scan"
	"github.com/dhcgn/eml-sort/stats"
)

type Runner struct {
	cfg       config.Config
	logger    *slog.Logger
	collector *stats.Collector
	printer   *progress.Printer
}

func New(cfg config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		logger:    logger,
		collector: stats.NewCollector(),
		printer:   progress.New(cfg.LogLevel),
	}
}

func (r *Runner) Start() error {
	started := time.Now()

	err := r.run()

	summary := r.collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", time.Since(started))
	if err != nil {
		r.logger.Error("run failed", append(attrs, "err", err)...)
		return err
	}

	r.printer.Summary(summary)
	r.logger.Info("run completed", attrs...)
	return nil
}

func (r *Runner) run() error {
	f, err := filter.New(filter.Options{
		IncludeHeader: r.cfg.IncludeHeader,
		IncludeBody:   r.cfg.IncludeBody,
		ExcludeHeader: r.cfg.ExcludeHeader,
		ExcludeBody:   r.cfg.ExcludeBody,
	})
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	scanner, err := scan.NewScanner(scan.Options{
		SourceDir:       r.cfg.SourceDir,
		SkipUnparseable: r.cfg.SkipUnparseable,
		Filter:          f,
	}, r.logger)
	if err != nil {
		return fmt.Errorf("scanner: %w", err)
	}

	result, err := scanner.Run()
	if err != nil {
		r.collector.Apply(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeError, Err: err})
		return err
	}

	var totalBytes int64
	for _, msg := range result.Messages {
		totalBytes += msg.Size
		r.collector.Apply(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeScanned, File: msg.Filename})
	}
	for _, skipped := range result.Skipped {
		r.collector.Apply(stats.Event{Stage: stats.StageScan, Type: stats.EventTypeSkipped, File: skipped.Filename, Detail: skipped.Reason})
	}
	r.printer.Skipped(result.Skipped)
	if f.Active() {
		r.printer.FilterStats(f.GetStats())
	}

	r.logger.Info("scan completed",
		"messages", len(result.Messages),
		"senders", len(result.Senders()),
		"skipped", len(result.Skipped),
		"bytes", totalBytes)

	c, err := copier.New(copier.Options{
		DestDir:          r.cfg.DestDir,
		DryRun:           r.cfg.DryRun,
		SuffixCollisions: r.cfg.Collision == config.CollisionSuffix,
	}, r.collector, r.printer, r.logger)
	if err != nil {
		return fmt.Errorf("copier: %w", err)
	}

	if err := c.Run(result); err != nil {
		return err
	}

	snap := c.Snapshot()
	r.logger.Info("copy completed", "destinations", snap.Paths, "collisions", snap.Collisions)
	return nil
}
