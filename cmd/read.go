package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/luckydog/internal/model"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the UI tree of the current screen",
	Long: `Dump the device's current screen with uiautomator and print the widget tree.

With --flat the tree is flattened into a list with breadcrumb paths, which
can be narrowed with --text, --id, --roles and --clickable.`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().Bool("flat", false, "Flatten the tree into a list with breadcrumb paths")
	readCmd.Flags().String("text", "", "Only nodes whose text or description contains this (with --flat)")
	readCmd.Flags().String("id", "", "Only nodes with this resource id (with --flat)")
	readCmd.Flags().String("roles", "", "Comma-separated roles to include, e.g. \"btn,txt\" (with --flat)")
	readCmd.Flags().Bool("clickable", false, "Only clickable nodes (with --flat)")
}

func runRead(cmd *cobra.Command, args []string) error {
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
	root := hier.Root()

	app := ""
	if root != nil {
		app = root.Package
	}
	ts := time.Now().Unix()

	flat, _ := cmd.Flags().GetBool("flat")
	if !flat {
		return output.Print(output.ReadResult{
			Serial: appConfig.ADB.Serial,
			App:    app,
			TS:     ts,
			Root:   root,
		})
	}

	text, _ := cmd.Flags().GetString("text")
	id, _ := cmd.Flags().GetString("id")
	roles, _ := cmd.Flags().GetString("roles")
	clickable, _ := cmd.Flags().GetBool("clickable")
	f := model.Filter{
		ViewID:        id,
		Roles:         model.ParseRoles(roles),
		Text:          text,
		ClickableOnly: clickable,
	}
	return output.Print(output.ReadFlatResult{
		Serial:   appConfig.ADB.Serial,
		App:      app,
		TS:       ts,
		Elements: model.FlattenFiltered(root, f),
	})
}
