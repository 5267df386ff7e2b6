package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileOptions mirrors the compile flags so a project can check its pin
// naming and remap choices into a YAML file instead of a wrapper script.
type fileOptions struct {
	Out          string `yaml:"out"`
	Vdd          string `yaml:"vdd"`
	Vss          string `yaml:"vss"`
	Rst          string `yaml:"rst"`
	SeeInternals bool   `yaml:"seeInternals"`
	SeeError     bool   `yaml:"seeError"`
	AllInputs    bool   `yaml:"allInputs"`
}

// applyOptions folds the options file into the flag variables. A flag set
// on the command line wins over the file.
func applyOptions(cmd *cobra.Command, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	var o fileOptions
	if err := yaml.NewDecoder(f).Decode(&o); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	flags := cmd.Flags()
	if !flags.Changed("out") && o.Out != "" {
		outFile = o.Out
	}
	if !flags.Changed("vdd") && o.Vdd != "" {
		vddName = o.Vdd
	}
	if !flags.Changed("vss") && o.Vss != "" {
		vssName = o.Vss
	}
	if !flags.Changed("rst") && o.Rst != "" {
		rstName = o.Rst
	}
	if !flags.Changed("see-internals") && o.SeeInternals {
		seeInternals = true
	}
	if !flags.Changed("see-error") && o.SeeError {
		seeError = true
	}
	if !flags.Changed("all-inputs") && o.AllInputs {
		allInputs = true
	}
	return nil
}
