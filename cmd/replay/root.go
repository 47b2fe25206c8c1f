package replay

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tabulardb/tabular/cmd/util"
	"github.com/tabulardb/tabular/lib/history"
	"github.com/tabulardb/tabular/lib/replicate"
)

var (
	ReplayCmd = &cobra.Command{
		Use:     "replay <log-file>",
		Short:   "Replay a persisted changeset log into a fresh store",
		Long:    `Replay a SQLite changeset log into a fresh in-memory store, verify the result and print a summary. This is the offline equivalent of bootstrapping a replica.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	key := "skip-unknown"
	ReplayCmd.Flags().Bool(key, false, util.WrapString("Skip instructions without a mapping instead of failing"))

	key = "no-cascade"
	ReplayCmd.Flags().Bool(key, false, util.WrapString("Disable the cascade engine (only legal for schemas without strong link columns)"))

	key = "rebuild"
	ReplayCmd.Flags().Bool(key, false, util.WrapString("Apply in non-atomic rebuild mode (suppresses accessor notifications)"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	return util.ConfigureLogging()
}

func run(_ *cobra.Command, args []string) error {
	log, err := history.OpenSQLiteLog(args[0], "")
	if err != nil {
		return err
	}
	defer log.Close()

	cfg := replicate.Config{}
	if viper.GetBool("skip-unknown") {
		cfg.UnknownOpcode = replicate.SkipUnknown
	}
	if viper.GetBool("no-cascade") {
		cfg.Cascade = replicate.CascadeDisabled
	}
	if viper.GetBool("rebuild") {
		cfg.Mode = replicate.ModeNonatomicRebuild
	}

	versions, err := log.Versions()
	if err != nil {
		return err
	}

	store, err := history.ReplayInto(log, cfg)
	if err != nil {
		return err
	}

	g := store.ReadGroup()
	if err := g.Verify(); err != nil {
		return fmt.Errorf("replayed store failed verification: %w", err)
	}

	fmt.Printf("replayed %d changesets\n", len(versions))
	fmt.Print(g.Dump())
	fmt.Println("store verified")
	return nil
}
