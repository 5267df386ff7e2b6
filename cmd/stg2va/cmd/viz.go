package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stg-lang/stg/graphviz"
)

var (
	inputFile string
	outputDir string
	format    string
)

// vizCmd draws the net instead of compiling it.
var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Create a graphviz figure from a signal transition graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger()
		if err != nil {
			return err
		}
		n, err := loadNet(inputFile, log)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return err
		}
		outPath := filepath.Join(outputDir, n.Name+"."+format)
		df, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() {
			_ = df.Close()
		}()
		w := graphviz.New(&graphviz.Config{
			Name:    n.Name,
			Format:  format,
			Font:    graphviz.Helvetica,
			RankDir: graphviz.LeftToRight,
		})
		if err := w.Flush(df, n); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input file")
	vizCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	vizCmd.Flags().StringVarP(&format, "format", "f", "svg", "output format")
	_ = vizCmd.MarkFlagRequired("input")
}
