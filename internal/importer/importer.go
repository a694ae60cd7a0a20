// Package importer drives extraction runs: it pulls inputs from a Pipeline,
// builds one record per input, and hands the surviving records to Sinks.
package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Pipeline produces inputs and turns each one into a record.
//
// Build must not retain in after returning.
type Pipeline[In, Out any] interface {
	// Inputs returns every input for the run, in output order.
	Inputs(ctx context.Context) ([]In, error)
	// Label identifies in within log lines.
	Label(in In) string
	// Skip reports whether in is deliberately left out of the run.
	Skip(in In) bool
	// Build converts in into a record.
	Build(ctx context.Context, in In) (Out, error)
}

// Sink receives the finished record list once per run.
type Sink[Out any] interface {
	Write(ctx context.Context, records []Out) error
}

// Result counts what happened to each input.
type Result struct {
	Built   int
	Failed  int
	Skipped int
}

// Importer orchestrates one run of a Pipeline into its Sinks.
type Importer[In, Out any] struct {
	pipeline Pipeline[In, Out]
	sinks    []Sink[Out]
	logger   *zap.Logger
}

// New constructs an Importer.
//
// Precondition: pipeline and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New[In, Out any](pipeline Pipeline[In, Out], logger *zap.Logger, sinks ...Sink[Out]) *Importer[In, Out] {
	if pipeline == nil || logger == nil {
		panic("importer.New: pipeline and logger must be non-nil")
	}
	return &Importer[In, Out]{pipeline: pipeline, sinks: sinks, logger: logger}
}

// Run builds every input in order and writes the records to each sink.
//
// A failed input is logged with its label and dropped; the run continues.
// Context cancellation stops the run before the sinks are written.
//
// Postcondition: on success every sink has received the same record list,
// in input order, and Result accounts for every input.
func (imp *Importer[In, Out]) Run(ctx context.Context) (Result, error) {
	overall := time.Now()
	var res Result

	inputs, err := imp.pipeline.Inputs(ctx)
	if err != nil {
		return res, fmt.Errorf("loading inputs: %w", err)
	}
	imp.logger.Info("loaded inputs", zap.Int("count", len(inputs)))

	records := make([]Out, 0, len(inputs))
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		label := imp.pipeline.Label(in)
		if imp.pipeline.Skip(in) {
			imp.logger.Debug("skipping input", zap.String("input", label))
			res.Skipped++
			continue
		}

		out, err := imp.pipeline.Build(ctx, in)
		if err != nil {
			imp.logger.Error("failed to build record", zap.String("input", label), zap.Error(err))
			res.Failed++
			continue
		}
		records = append(records, out)
		res.Built++
	}

	for _, sink := range imp.sinks {
		t0 := time.Now()
		if err := sink.Write(ctx, records); err != nil {
			return res, fmt.Errorf("writing records: %w", err)
		}
		imp.logger.Info("wrote records",
			zap.String("sink", fmt.Sprint(sink)),
			zap.Int("count", len(records)),
			zap.Duration("elapsed", time.Since(t0).Round(time.Millisecond)))
	}

	imp.logger.Info("run complete",
		zap.Int("built", res.Built),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Duration("elapsed", time.Since(overall).Round(time.Millisecond)))
	return res, nil
}
