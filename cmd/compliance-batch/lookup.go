package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raaihank/compliance-sentinel/internal/jurisdiction"
	"github.com/raaihank/compliance-sentinel/internal/regulation"
)

var (
	detectOperating  []string
	detectUsers      []string
	detectProcessing []string
	regulationsJSON  bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the regulations that apply to a set of locations",
	Example: `  compliance-batch detect --operating "United States" --users "European Union"
  compliance-batch detect --processing Brazil,India`,
	RunE: func(cmd *cobra.Command, args []string) error {
		detection := jurisdiction.NewDetector().Detect(detectOperating, detectUsers, detectProcessing)
		return printJSON(cmd.OutOrStdout(), detection)
	},
}

var regulationsCmd = &cobra.Command{
	Use:   "regulations [id]",
	Short: "List supported regulations or show one with its rules",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegulations,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(regulationsCmd)

	detectCmd.Flags().StringSliceVar(&detectOperating, "operating", nil, "Countries the organisation operates in")
	detectCmd.Flags().StringSliceVar(&detectUsers, "users", nil, "Locations of the data subjects")
	detectCmd.Flags().StringSliceVar(&detectProcessing, "processing", nil, "Locations where data is processed")

	regulationsCmd.Flags().BoolVar(&regulationsJSON, "json", false, "Print as JSON")
}

func runRegulations(cmd *cobra.Command, args []string) error {
	registry := regulation.Default()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		reg, ok := registry.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown regulation %q (supported: %s)", args[0], strings.Join(registry.IDs(), ", "))
		}
		return printJSON(out, struct {
			regulation.Regulation
			Rules []regulation.Rule `json:"rules"`
		}{reg, registry.Rules(reg.ID)})
	}

	regs := registry.All()
	if regulationsJSON {
		return printJSON(out, regs)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tJURISDICTION\tBREACH NOTICE")
	for _, reg := range regs {
		notice := "without undue delay"
		if reg.BreachNotificationHours > 0 {
			notice = fmt.Sprintf("%dh", reg.BreachNotificationHours)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", reg.ID, reg.Name, reg.Jurisdiction, notice)
	}
	return tw.Flush()
}
