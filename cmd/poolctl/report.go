package main

import (
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/poolkit/pool"
	"github.com/joshuapare/poolkit/pool/bucket"
)

// numbers formats counts with thousands separators.
var numbers = message.NewPrinter(language.English)

// poolReport is the JSON form of a pool's state.
type poolReport struct {
	Layout     pool.Layout    `json:"layout"`
	Buckets    []bucket.Stats `json:"buckets"`
	Dispatcher pool.Stats     `json:"dispatcher"`
}

func newPoolReport(p *pool.Pool, d *pool.Dispatcher) poolReport {
	return poolReport{Layout: p.Layout(), Buckets: p.Stats(), Dispatcher: d.Stats()}
}

// writeBucketTable prints one row per bucket.
func writeBucketTable(w io.Writer, stats []bucket.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	numbers.Fprintf(tw, "bucket\tblock size\tblocks\tused\tfree\tlongest run\tutil\t\n")
	for i, s := range stats {
		numbers.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%.1f%%\t\n",
			i, s.BlockSize, s.BlockCount, s.UsedBlocks, s.FreeBlocks, s.LongestFreeRun, 100*s.Utilization())
	}
	tw.Flush()
}

// writeDispatcherStats prints the dispatcher counters.
func writeDispatcherStats(w io.Writer, s pool.Stats) {
	numbers.Fprintf(w, "allocations:     %d (%d failed, %d fallbacks)\n", s.AllocCalls, s.AllocFailures, s.Fallbacks)
	numbers.Fprintf(w, "frees:           %d (%d foreign)\n", s.FreeCalls, s.FreeMisses)
	numbers.Fprintf(w, "bytes requested: %d\n", s.BytesRequested)
	numbers.Fprintf(w, "bytes wasted:    %d\n", s.BytesWasted)
	numbers.Fprintf(w, "bytes freed:     %d\n", s.BytesFreed)
}

// printPoolReport writes the report as JSON or as text, honoring --quiet.
func printPoolReport(p *pool.Pool, d *pool.Dispatcher) error {
	if jsonOut {
		return printJSON(newPoolReport(p, d))
	}
	if quiet {
		return nil
	}
	numbers.Fprintf(os.Stdout, "Layout %s, %d bytes\n\n", p.Layout(), p.Layout().Capacity())
	writeBucketTable(os.Stdout, p.Stats())
	os.Stdout.WriteString("\n")
	writeDispatcherStats(os.Stdout, d.Stats())
	return nil
}
