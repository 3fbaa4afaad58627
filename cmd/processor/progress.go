package main

import (
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
	"golang.org/x/term"

	"nabii/internal/operations"
)

// progressBar draws one bar that advances as steps finish
type progressBar struct {
	p        *mpb.Progress
	bar      *mpb.Bar
	total    int
	finished atomic.Int64
}

func newProgressBar(out io.Writer, total int) *progressBar {
	width := 60
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 40 {
		width = w - 40
	}

	p := mpb.New(mpb.WithWidth(width), mpb.WithOutput(out))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(decor.Name("dashboard documents ")),
		mpb.PrependDecorators(decor.CountersNoUnit("%d/%d", decor.WCSyncSpace)),
		mpb.AppendDecorators(decor.AverageETA(decor.ET_STYLE_GO)),
		mpb.BarRemoveOnComplete(),
	)
	return &progressBar{p: p, bar: bar, total: total}
}

// StepStarted implements operations.ProgressReporter
func (b *progressBar) StepStarted(context.Context, string, string) {}

// StepFinished implements operations.ProgressReporter
func (b *progressBar) StepFinished(context.Context, operations.StepResult) {
	b.finished.Add(1)
	b.bar.Increment()
}

// Wait fills the bar for steps that never ran, then waits for the last render
func (b *progressBar) Wait() {
	if rest := b.total - int(b.finished.Load()); rest > 0 {
		b.bar.IncrBy(rest)
	}
	b.p.Wait()
}
