package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Stats accumulates per-frame counters.
type Stats struct {
	FrameCount     uint64
	DrawCalls      uint64
	PassesExecuted uint64
	LastFrameTime  time.Duration
	TotalFrameTime time.Duration
}

// AverageFrameTime returns the mean frame time, or zero before the first
// frame.
func (s Stats) AverageFrameTime() time.Duration {
	if s.FrameCount == 0 {
		return 0
	}
	return s.TotalFrameTime / time.Duration(s.FrameCount)
}

// Reset zeroes all counters.
func (s *Stats) Reset() { *s = Stats{} }

func (s *Stats) record(draws, passes int, elapsed time.Duration) {
	s.FrameCount++
	s.DrawCalls += uint64(draws)
	s.PassesExecuted += uint64(passes)
	s.LastFrameTime = elapsed
	s.TotalFrameTime += elapsed
}

// Table writes the counters as a two-column table.
func (s Stats) Table(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Metric", "Value"})
	table.AppendBulk([][]string{
		{"Frames", fmt.Sprintf("%d", s.FrameCount)},
		{"Draw calls", fmt.Sprintf("%d", s.DrawCalls)},
		{"Passes executed", fmt.Sprintf("%d", s.PassesExecuted)},
		{"Last frame", s.LastFrameTime.String()},
		{"Average frame", s.AverageFrameTime().String()},
		{"Total", s.TotalFrameTime.String()},
	})
	table.Render()
}
