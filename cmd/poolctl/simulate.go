package main

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/internal/logger"
	"github.com/joshuapare/poolkit/pool"
)

var (
	simOps      int
	simSeed     int64
	simMinBytes int
	simMaxBytes int
	simFreeRate float64
	simDrain    bool
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().IntVarP(&simOps, "ops", "n", 10000, "Number of allocate/free operations")
	cmd.Flags().Int64Var(&simSeed, "seed", 42, "Random seed")
	cmd.Flags().IntVar(&simMinBytes, "min", 1, "Smallest request in bytes")
	cmd.Flags().IntVar(&simMaxBytes, "max", 256, "Largest request in bytes")
	cmd.Flags().Float64Var(&simFreeRate, "free-rate", 0.4, "Probability that an operation frees instead of allocating")
	cmd.Flags().BoolVar(&simDrain, "drain", false, "Free every live allocation before reporting")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Run a random allocate/free workload and report occupancy",
		Long: `The simulate command drives the pool with random requests between
--min and --max bytes. Each step either allocates or, with probability
--free-rate, frees a random live allocation using its original length.
Every free is checked against the bucket ledgers.

Example:
  poolctl simulate
  poolctl --layout general simulate -n 100000 --max 4096
  poolctl simulate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate()
		},
	}
}

// allocation is a live request in the simulation.
type allocation struct {
	addr pool.Addr
	size pool.ByteLen
}

func runSimulate() error {
	if simMinBytes < 1 || simMaxBytes < simMinBytes {
		return fmt.Errorf("invalid request range [%d, %d]", simMinBytes, simMaxBytes)
	}
	layout, err := resolveLayout()
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

	if err := simulate(d, rand.New(rand.NewSource(simSeed)), simOps); err != nil {
		return err
	}
	return printPoolReport(p, d)
}

// simulate runs ops random steps against d. Out-of-memory results are part of
// the workload; a contract violation reported by Free is a bug and aborts.
func simulate(d *pool.Dispatcher, rng *rand.Rand, ops int) error {
	var live []allocation
	for step := range ops {
		if len(live) > 0 && rng.Float64() < simFreeRate {
			i := rng.Intn(len(live))
			a := live[i]
			if err := d.Free(a.addr, a.size); err != nil {
				return fmt.Errorf("step %d: %w", step, err)
			}
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}

		size := pool.ByteLen(simMinBytes + rng.Intn(simMaxBytes-simMinBytes+1))
		addr, err := d.Allocate(size)
		if errors.Is(err, pool.ErrOutOfMemory) {
			logger.Debug("simulate: out of memory", "step", step, "bytes", int(size), "live", len(live))
			continue
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}
		live = append(live, allocation{addr: addr, size: size})
	}

	if simDrain {
		for _, a := range live {
			if err := d.Free(a.addr, a.size); err != nil {
				return fmt.Errorf("drain: %w", err)
			}
		}
		live = live[:0]
	}
	printVerbose("Live allocations: %d\n", len(live))
	return nil
}
