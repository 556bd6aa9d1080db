package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spicetools/spiceraw/internal/converter"
)

var (
	exportOutput string
	exportTraces []string
	exportStep   int
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export waveforms of one step to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conv := converter.NewConverter(converter.Options{Debug: debugMode})
		var names []string
		if len(exportTraces) > 0 {
			names = exportTraces
		}
		return conv.ExportCSV(args[0], exportOutput, names, exportStep)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output CSV path (required)")
	exportCmd.Flags().StringArrayVar(&exportTraces, "trace", nil, "trace to export (repeatable, default all)")
	exportCmd.Flags().IntVar(&exportStep, "step", 0, "step index to export")
	exportCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(exportCmd)
}
