package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/stg-lang/stg"
	"github.com/stg-lang/stg/builder"
	"github.com/stg-lang/stg/codegen"
	"github.com/stg-lang/stg/gfile"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "stg2va [flags] file.g",
	Short: "Compile a signal transition graph to a Verilog-A model",
	Long: `Compile a signal transition graph in .g format to a behavioral
Verilog-A model. Input transitions fire when the testbench moves the pin;
output and internal transitions drive their own signal and commit once the
driven edge comes back.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyOptions(cmd, optionsFile); err != nil {
			return err
		}
		log, err := logger()
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()
		n, err := loadNet(args[0], log)
		if err != nil {
			return err
		}
		mod, err := codegen.Synthesize(n, &codegen.Options{
			Vdd:      vddName,
			Vss:      vssName,
			Rst:      rstName,
			SeeError: seeError,
			Logger:   log,
		})
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := mod.Render(&buf); err != nil {
			return err
		}
		if err := os.WriteFile(outFile, buf.Bytes(), 0o644); err != nil {
			return err
		}
		log.Info("wrote model", zap.String("module", n.Name), zap.String("out", outFile))
		return nil
	},
}

var (
	outFile      string
	optionsFile  string
	vddName      string
	vssName      string
	rstName      string
	seeInternals bool
	seeError     bool
	allInputs    bool
	verbose      bool
)

func Execute() error {
	return rootCmd.Execute()
}

func loadNet(path string, log *zap.Logger) (*stg.Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	parsed, err := gfile.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out, internal := kinds()
	return builder.Build(parsed, &builder.Config{
		OutputKind:   out,
		InternalKind: internal,
		Logger:       log,
	})
}

// kinds maps the remap flags onto signal kinds. --all-inputs hands every
// driven signal to the testbench and wins over --see-internals.
func kinds() (out, internal stg.Kind) {
	out = stg.Output
	internal = stg.Internal
	if seeInternals {
		internal = stg.Output
	}
	if allInputs {
		out = stg.Input
		internal = stg.Input
	}
	return out, internal
}

func logger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// envOr reads a default from the environment, letting a .env file preload
// site conventions.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func init() {
	_ = godotenv.Load()
	rootCmd.Flags().StringVarP(&outFile, "out", "o", envOr("STG2VA_OUT", "verilogA.va"), "output file")
	rootCmd.Flags().StringVar(&optionsFile, "options", "", "YAML file with flag defaults")
	rootCmd.Flags().StringVar(&vddName, "vdd", envOr("STG2VA_VDD", "VDD"), "supply pin name")
	rootCmd.Flags().StringVar(&vssName, "vss", envOr("STG2VA_VSS", "VSS"), "ground pin name")
	rootCmd.Flags().StringVar(&rstName, "rst", envOr("STG2VA_RST", "RST"), "reset pin name")
	rootCmd.Flags().BoolVar(&seeInternals, "see-internals", false, "expose internal signals as output pins")
	rootCmd.Flags().BoolVar(&seeError, "see-error", false, "expose the error flag on a __STG_ERROR__ pin")
	rootCmd.Flags().BoolVar(&allInputs, "all-inputs", false, "treat every signal as testbench driven")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log build details")
}
