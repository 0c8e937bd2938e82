// SPDX-FileCopyrightText: Copyright The DiskImage Authors
// SPDX-License-Identifier: Apache-2.0

// Package progressbar renders imaging progress on the terminal.
package progressbar

import (
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Reporter tracks imaging progress against a known total and forwards
// an update to its sink only when the integer percentage changes, so a
// tight copy loop cannot flood the terminal.
type Reporter struct {
	total       int64
	lastPercent int
	bar         *pb.ProgressBar
	sink        func(percent int, current int64)
}

// New returns a Reporter rendering a bar on stderr.
// total may be 0 when the device size is unknown; Update is then a no-op.
func New(total int64) (*Reporter, error) {
	bar := pb.New64(total)
	bar.Set(pb.Bytes, true)

	if showProgress() {
		bar.SetTemplateString(`{{counters . }} {{bar . | green }} {{percent .}} {{speed . "%s/s"}}`)
		bar.SetRefreshRate(200 * time.Millisecond)
	} else {
		bar.Set(pb.Static, true)
	}

	bar.SetWidth(80)
	if err := bar.Err(); err != nil {
		return nil, err
	}

	bar.Start()
	return &Reporter{total: total, lastPercent: -1, bar: bar}, nil
}

// NewWithSink returns a Reporter forwarding deduplicated updates to
// sink instead of the terminal.
func NewWithSink(total int64, sink func(percent int, current int64)) *Reporter {
	return &Reporter{total: total, lastPercent: -1, sink: sink}
}

// Update records the cumulative number of bytes processed.
func (r *Reporter) Update(current int64) {
	if r.total == 0 {
		return
	}
	percent := int(current * 100 / r.total)
	if percent == r.lastPercent {
		return
	}
	r.lastPercent = percent
	if r.bar != nil {
		r.bar.SetCurrent(current)
	}
	if r.sink != nil {
		r.sink(percent, current)
	}
}

// Finish terminates the progress line.
func (r *Reporter) Finish() {
	if r.bar != nil {
		r.bar.Finish()
	}
}

func showProgress() bool {
	// Progress supports only the text log format for now.
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.TextFormatter); !ok {
		return false
	}

	// Both logrus and pb write to stderr by default.
	logFd := os.Stderr.Fd()
	return isatty.IsTerminal(logFd) || isatty.IsCygwinTerminal(logFd)
}
