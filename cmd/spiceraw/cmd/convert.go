package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spicetools/spiceraw/internal/converter"
	"github.com/spicetools/spiceraw/internal/rawfile"
)

var (
	convertOutput     string
	convertFastAccess bool
)

var convertCmd = &cobra.Command{
	Use:   "convert INPUT",
	Short: "Re-encode a result file (or a directory of them) with a chosen layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout := rawfile.LayoutNormal
		if convertFastAccess {
			layout = rawfile.LayoutFastAccess
		}
		conv := converter.NewConverter(converter.Options{
			Debug:  debugMode,
			Layout: layout,
		})

		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if info.IsDir() {
			return conv.ProcessDirectory(args[0], convertOutput)
		}
		if err := conv.ConvertFile(args[0], convertOutput); err != nil {
			return err
		}
		fmt.Printf("Converted %s (%s layout)\n", convertOutput, layout)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output path (required)")
	convertCmd.Flags().BoolVar(&convertFastAccess, "fastaccess", false, "write the fast-access (column-major) layout")
	convertCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(convertCmd)
}
