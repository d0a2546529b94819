package cmd

import (
	"fmt"

	"github.com/mj1618/luckydog/internal/model"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/spf13/cobra"
)

// FindResult is the output of the find command.
type FindResult struct {
	Match    string        `yaml:"match"    json:"match"`
	Count    int           `yaml:"count"    json:"count"`
	Elements []ElementInfo `yaml:"elements" json:"elements"`
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find nodes on the current screen",
	Long: `Search the current screen for nodes matching every given criterion.

Examples:
  luckydog find --id com.tencent.mm:id/tv
  luckydog find --text "Open" --roles btn
  luckydog find --class android.widget.Button --limit 1`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addFilterFlags(findCmd, "text")
	findCmd.Flags().Int("limit", 0, "Maximum number of results (0 = unlimited)")
}

func runFind(cmd *cobra.Command, args []string) error {
	f := filterFromFlags(cmd, "text")
	if f.IsEmpty() {
		return fmt.Errorf("specify at least one of --text, --id, --class, --roles or --clickable")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	provider, err := newProvider()
	if err != nil {
		return err
	}
	d, err := dumper(provider)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	hier, err := d.Dump(ctx)
	if err != nil {
		return fmt.Errorf("failed to read screen: %w", err)
	}

	matches := model.FindAll(hier.Root(), f)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	result := FindResult{Match: describeFilter(f), Count: len(matches), Elements: []ElementInfo{}}
	for _, n := range matches {
		result.Elements = append(result.Elements, *elementInfo(n))
	}
	return output.Print(result)
}
