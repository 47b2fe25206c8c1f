package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabulardb/tabular/cmd/inspect"
	"github.com/tabulardb/tabular/cmd/perf"
	"github.com/tabulardb/tabular/cmd/replay"
	"github.com/tabulardb/tabular/cmd/util"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tabular",
		Short: "embeddable columnar object store with changeset replication",
		Long: fmt.Sprintf(`tabular (v%s)

An embeddable, transactional, columnar object store whose commits
produce a deterministic changeset log that replays into an identical
replica.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tabular",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tabular v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(inspect.InspectCmd)
	RootCmd.AddCommand(replay.ReplayCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	cobra.OnInitialize(util.InitConfig)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
