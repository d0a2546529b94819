package cmd

import (
	"fmt"

	"github.com/mj1618/luckydog/internal/classifier"
	"github.com/mj1618/luckydog/internal/coordinator"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/spf13/cobra"
)

// ClassifyResult is the output of the classify command.
type ClassifyResult struct {
	Package  string `yaml:"package"          json:"package"`
	Class    string `yaml:"class"            json:"class"`
	Type     string `yaml:"type"             json:"type"`
	Category string `yaml:"category"         json:"category"`
	Opens    bool   `yaml:"opens,omitempty"  json:"opens,omitempty"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Show how an event would be classified",
	Long: `Classify a screen event against the configured target without a device.

With --ticker the result also says whether the notification would be opened.

Examples:
  luckydog classify --package com.tencent.mm --type state \
    --class com.tencent.mm.plugin.luckymoney.ui.LuckyMoneyNotHookReceiveUI
  luckydog classify --package com.tencent.mm --type notification --ticker "Alice: [微信红包]"`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	addClassifyFlags(classifyCmd)
}

func addClassifyFlags(cmd *cobra.Command) {
	cmd.Flags().String("package", "", "Source package of the event")
	cmd.Flags().String("class", "", "Screen class name")
	cmd.Flags().String("type", "content", "Event type: state, content, notification")
	cmd.Flags().String("ticker", "", "Notification ticker text")
}

func runClassify(cmd *cobra.Command, args []string) error {
	pkg, _ := cmd.Flags().GetString("package")
	class, _ := cmd.Flags().GetString("class")
	typeStr, _ := cmd.Flags().GetString("type")
	ticker, _ := cmd.Flags().GetString("ticker")

	typ, err := platform.ParseEventType(typeStr)
	if err != nil {
		return err
	}
	ev := platform.ScreenEvent{Package: pkg, Type: typ, ClassName: class}

	cat := classifier.New(appConfig.Target).Classify(ev)
	result := ClassifyResult{
		Package:  pkg,
		Class:    class,
		Type:     typ.String(),
		Category: cat.String(),
	}
	if ticker != "" {
		if cat == classifier.Ignored {
			return output.Print(result)
		}
		result.Opens = coordinator.TickerMatches(ticker, appConfig.Target.TickerSep, appConfig.Target.Keyword)
	}
	if err := output.Print(result); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}
