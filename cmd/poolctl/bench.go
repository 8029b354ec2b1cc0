package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/internal/logger"
	"github.com/joshuapare/poolkit/pool"
	"github.com/joshuapare/poolkit/pool/vec"
)

var (
	benchMax int
	benchOut string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchMax, "max", 1_000_000, "Largest push count; counts go 1, 10, 100, ... up to max")
	cmd.Flags().StringVarP(&benchOut, "out", "o", "list_test.csv", "CSV output file, '-' for stdout")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Compare a pool-backed vector with a Go slice",
		Long: `The bench command pushes 1, 10, 100, ... int32 values onto a vector
whose storage comes from the pool and onto a plain Go slice, timing both.
Both containers keep growing across rounds. Without --layout or --config the
Vector layout is used, which holds the default --max. Each round writes one
CSV row:

  count,pool_us,slice_us

Example:
  poolctl --layout vector bench
  poolctl --layout vector bench --max 100000 -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
}

// benchRow is one timing round.
type benchRow struct {
	Count  int           `json:"count"`
	Pool   time.Duration `json:"pool_ns"`
	Slice  time.Duration `json:"slice_ns"`
	Length int           `json:"vector_len"`
}

func runBench() error {
	if benchMax < 1 {
		return fmt.Errorf("--max must be at least 1, got %d", benchMax)
	}
	layout, err := benchLayout()
	if err != nil {
		return err
	}
	printVerbose("Building pool: %s\n", layout)

	p, err := pool.New(layout)
	if err != nil {
		return err
	}
	defer p.Close()
	d := pool.NewDispatcher(p, pool.WithLogger(logger.L))

	rows, err := benchVectors(d, benchMax)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(rows)
	}

	var w io.Writer = os.Stdout
	if benchOut != "-" {
		f, err := os.Create(benchOut)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeBenchCSV(w, rows); err != nil {
		return err
	}
	if benchOut != "-" {
		printInfo("Wrote %d rows to %s\n", len(rows), benchOut)
	}
	return nil
}

// benchLayout returns the selected layout, or LayoutVector when none was
// selected.
func benchLayout() (pool.Layout, error) {
	if layoutChosen {
		return resolveLayout()
	}
	l := pool.LayoutVector.Clone()
	l.Mmap = useMmap
	return l, nil
}

// benchVectors runs the push rounds. The pool-backed vector is released
// before returning.
func benchVectors(d *pool.Dispatcher, maxCount int) ([]benchRow, error) {
	custom := vec.New[int32](d)
	defer custom.Release()
	var standard []int32

	var rows []benchRow
	for count := 1; count <= maxCount; count *= 10 {
		start := time.Now()
		for range count {
			if err := custom.Push(1); err != nil {
				logger.Warn("bench: pool vector push failed", "count", count, "len", custom.Len(), "error", err)
				return rows, fmt.Errorf("round %d: %w", count, err)
			}
		}
		customDur := time.Since(start)

		start = time.Now()
		for range count {
			standard = append(standard, 1)
		}
		standardDur := time.Since(start)

		logger.Info("bench round", "count", count, "pool", customDur, "slice", standardDur)
		rows = append(rows, benchRow{Count: count, Pool: customDur, Slice: standardDur, Length: custom.Len()})
		if count > maxCount/10 {
			break
		}
	}
	return rows, nil
}

func writeBenchCSV(w io.Writer, rows []benchRow) error {
	cw := csv.NewWriter(w)
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Count),
			strconv.FormatInt(r.Pool.Microseconds(), 10),
			strconv.FormatInt(r.Slice.Microseconds(), 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
