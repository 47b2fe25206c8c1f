package inspect

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tabulardb/tabular/cmd/util"
	"github.com/tabulardb/tabular/lib/transact"
)

var (
	InspectCmd = &cobra.Command{
		Use:     "inspect <changeset-file>",
		Short:   "Decode a changeset file into a readable instruction listing",
		Args:    cobra.ExactArgs(1),
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	key := "format"
	InspectCmd.Flags().String(key, "text", util.WrapString("Output format (text, yaml)"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	return util.ConfigureLogging()
}

// entry is one decoded instruction for structured output
type entry struct {
	Offset      int    `yaml:"offset"`
	Opcode      string `yaml:"opcode"`
	Instruction string `yaml:"instruction"`
}

func run(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var entries []entry
	p := transact.NewParser(data)
	for {
		offset := p.Offset()
		in, err := p.Next()
		if err != nil {
			return err
		}
		if in == nil {
			break
		}
		entries = append(entries, entry{
			Offset:      offset,
			Opcode:      in.Op.String(),
			Instruction: in.String(),
		})
	}

	switch viper.GetString("format") {
	case "text":
		for _, e := range entries {
			fmt.Printf("%6d  %s\n", e.Offset, e.Instruction)
		}
		fmt.Printf("%d instructions, %d bytes\n", len(entries), len(data))
	case "yaml":
		out, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
	default:
		return fmt.Errorf("invalid format %s (expected text or yaml)", viper.GetString("format"))
	}
	return nil
}
