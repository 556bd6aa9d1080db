package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spicetools/spiceraw/internal/rawfile"
)

var infoHeaderOnly bool

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Show header fields, variables and steps of a result file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := rawfile.Read(args[0], &rawfile.ReadOptions{
			HeaderOnly: infoHeaderOnly,
			Debug:      debugMode,
		})
		if err != nil {
			return err
		}

		for _, f := range doc.Header().Fields() {
			fmt.Printf("%s: %s\n", f.Key, f.Value)
		}
		fmt.Printf("Analysis: %s\n", doc.Analysis())

		fmt.Println("Variables:")
		for i, name := range doc.VariableNames() {
			fmt.Printf("\t%d\t%s\n", i, name)
		}

		if infoHeaderOnly {
			return nil
		}
		records := doc.StepRecords()
		if len(records) == 0 {
			fmt.Println("Steps: 1 (unstepped)")
			return nil
		}
		fmt.Printf("Steps: %d\n", len(records))
		for i, rec := range records {
			parts := make([]string, len(rec.Params))
			for j, p := range rec.Params {
				parts[j] = fmt.Sprintf("%s=%s", p.Name, p.Text)
			}
			fmt.Printf("\t%d\t%s\n", i, strings.Join(parts, " "))
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoHeaderOnly, "header-only", false, "skip the sample body")
	rootCmd.AddCommand(infoCmd)
}
