package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spicetools/spiceraw/internal/converter"
	"github.com/spicetools/spiceraw/internal/rawfile"
)

var (
	mergeOutput     string
	mergeForceAlign bool
	mergeFastAccess bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge PRIMARY DONOR...",
	Short: "Merge traces from donor files into a primary result file",
	Long: `Merge copies every trace of the donor files into the primary document and
writes the combined file. Donors sampled on a different axis are rejected
unless --force-align re-samples them onto the primary axis by linear
interpolation.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout := rawfile.LayoutNormal
		if mergeFastAccess {
			layout = rawfile.LayoutFastAccess
		}
		conv := converter.NewConverter(converter.Options{
			Debug:      debugMode,
			Layout:     layout,
			ForceAlign: mergeForceAlign,
		})
		return conv.MergeFiles(args[0], args[1:], mergeOutput)
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "output path (required)")
	mergeCmd.Flags().BoolVar(&mergeForceAlign, "force-align", false, "re-sample diverging donor axes onto the primary axis")
	mergeCmd.Flags().BoolVar(&mergeFastAccess, "fastaccess", false, "write the fast-access layout")
	mergeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(mergeCmd)
}
