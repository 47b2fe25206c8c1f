package perf

import (
	"fmt"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tabulardb/tabular/cmd/util"
	"github.com/tabulardb/tabular/lib/core"
	"github.com/tabulardb/tabular/lib/replicate"
	"github.com/tabulardb/tabular/lib/transact"
	"github.com/tabulardb/tabular/lib/txn"
)

var (
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Measure encode, parse and apply throughput",
		Long:    `Build a synthetic changeset and measure how fast it encodes, parses and applies. Results are reported per operation with percentiles.`,
		PreRunE: processConfig,
		RunE:    run,
	}

	perfRows       = 1000
	perfIterations = 50
)

func init() {
	key := "rows"
	PerfCmd.Flags().Int(key, 1000, util.WrapString("Number of rows the synthetic workload mutates"))

	key = "iterations"
	PerfCmd.Flags().Int(key, 50, util.WrapString("Number of measured iterations per stage"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	perfRows = viper.GetInt("rows")
	perfIterations = viper.GetInt("iterations")
	return util.ConfigureLogging()
}

// buildWorkload produces one changeset touching every instruction family.
func buildWorkload(rows int) (*transact.Changeset, error) {
	store := txn.NewShared()
	wt := store.BeginWrite()
	g := wt.Group()

	target, err := g.AddTable("targets")
	if err != nil {
		return nil, err
	}
	if _, err := target.AddColumn(core.TypeInt, "value", false); err != nil {
		return nil, err
	}
	origin, err := g.AddTable("origins")
	if err != nil {
		return nil, err
	}
	if _, err := origin.AddColumn(core.TypeString, "name", true); err != nil {
		return nil, err
	}
	if _, err := origin.AddColumnLink(core.TypeLink, "ref", target, core.LinkWeak); err != nil {
		return nil, err
	}
	if _, err := origin.AddColumnLink(core.TypeLinkList, "refs", target, core.LinkWeak); err != nil {
		return nil, err
	}

	if _, err := target.AddEmptyRow(rows); err != nil {
		return nil, err
	}
	if _, err := origin.AddEmptyRow(rows); err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		if err := target.SetInt(0, i, int64(i)); err != nil {
			return nil, err
		}
		if err := origin.SetString(0, i, fmt.Sprintf("row-%d", i)); err != nil {
			return nil, err
		}
		if err := origin.SetLink(1, i, int64(i)); err != nil {
			return nil, err
		}
		list, err := origin.LinkList(2, i)
		if err != nil {
			return nil, err
		}
		if err := list.Add(int64(i)); err != nil {
			return nil, err
		}
	}
	return wt.Commit()
}

func runStage(name string, iterations int, fn func() error) error {
	timer := metrics.NewTimer()
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if err := fn(); err != nil {
			return fmt.Errorf("%s stage failed: %w", name, err)
		}
		timer.UpdateSince(start)
	}
	fmt.Printf("%-8s  mean %10.3fms  p99 %10.3fms  %8.1f op/s\n",
		name,
		timer.Mean()/float64(time.Millisecond),
		timer.Percentile(0.99)/float64(time.Millisecond),
		timer.RateMean())
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Printf("workload: %d rows, %d iterations per stage\n\n", perfRows, perfIterations)

	cs, err := buildWorkload(perfRows)
	if err != nil {
		return err
	}
	fmt.Printf("changeset: %d bytes\n\n", cs.Size())

	// encode: rebuild the workload, which drives the recorder hooks
	if err := runStage("encode", perfIterations, func() error {
		_, err := buildWorkload(perfRows)
		return err
	}); err != nil {
		return err
	}

	// parse: iterate the instruction stream
	if err := runStage("parse", perfIterations, func() error {
		p := transact.NewParser(cs.Data)
		for {
			in, err := p.Next()
			if err != nil {
				return err
			}
			if in == nil {
				return nil
			}
		}
	}); err != nil {
		return err
	}

	// apply: replay into a fresh store
	applier := replicate.NewApplier(replicate.Config{})
	if err := runStage("apply", perfIterations, func() error {
		return applier.Apply(core.NewGroup(), cs)
	}); err != nil {
		return err
	}

	return nil
}
