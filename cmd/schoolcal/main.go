package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/custodycalc/schoolcal/calendar"
	"github.com/custodycalc/schoolcal/internal/profile"
	"github.com/custodycalc/schoolcal/plugin/icalendar"
)

const version = "0.4.0"

var rootCmd = &cobra.Command{
	Use:   "schoolcal",
	Short: "Normalize extracted school-calendar day-off annotations",
	Long: `schoolcal consumes the raw date annotations produced by the document
extraction service and emits a canonical multi-year holiday calendar.`,
	SilenceUsage: true,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Run the pipeline and write the canonical holiday list as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := run(cmd)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode result")
		}
		return writeOutput(viper.GetString("output"), append(data, '\n'))
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the pipeline and write the holiday list as iCalendar",
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := run(cmd)
		if err != nil {
			return err
		}
		exporter := icalendar.NewExporter(nil)
		exporter.SetLogger(slog.Default())
		ics, err := exporter.Export(result)
		if err != nil {
			return err
		}
		return writeOutput(viper.GetString("output"), []byte(ics))
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("input", "i", "-", "extraction result JSON file, or - for stdin")
	rootCmd.PersistentFlags().StringP("output", "o", "-", "output file, or - for stdout")
	rootCmd.PersistentFlags().String("school-year", "", "school year label (YYYY-YYYY), defaults to the extractor's")
	rootCmd.PersistentFlags().String("effective-date", "", "override the effective current date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().Int("window-days", 0, "inference forward window in days")
	rootCmd.PersistentFlags().String("mode", "dev", "run mode: dev or prod")

	for _, flag := range []string{"input", "output", "school-year", "effective-date", "window-days", "mode"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("schoolcal")
	viper.AutomaticEnv()

	rootCmd.AddCommand(normalizeCmd, exportCmd)
}

// loadProfile folds env configuration and flags into one profile.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{Version: version}
	p.FromEnv()
	if v := viper.GetString("mode"); v != "" {
		p.Mode = v
	}
	if v := viper.GetString("effective-date"); v != "" {
		p.EffectiveDate = v
	}
	if v := viper.GetInt("window-days"); v != 0 {
		p.WindowDays = v
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func run(cmd *cobra.Command) (*calendar.Result, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}
	setupLogger(p)

	in, err := readInput(viper.GetString("input"))
	if err != nil {
		return nil, err
	}

	ctx := calendar.NewSchoolYearContext(viper.GetString("school-year"))
	if ctx.SchoolYear == "" {
		ctx.SchoolYear = in.SchoolYear
	}
	if effective, ok := p.EffectiveTime(); ok {
		ctx = ctx.WithEffectiveDate(effective)
	}

	pipeline := calendar.NewPipeline(calendar.PipelineOptions{
		Merger:    p.MergerOptions(),
		Inference: calendar.InferenceOptions{WindowDays: p.WindowDays},
		Logger:    slog.Default(),
	})
	return pipeline.Run(in, ctx)
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func readInput(path string) (*calendar.Input, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read input %s", path)
	}
	var in calendar.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(err, "decode extraction result")
	}
	return &in, nil
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write output %s", path)
	}
	return nil
}

func main() {
	start := time.Now()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "schoolcal: %v\n", err)
		os.Exit(1)
	}
	slog.Debug("done", "elapsed", time.Since(start))
}
