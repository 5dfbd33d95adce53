package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gotci/tcisim/pkg/tci"
)

type opts struct {
	configPath string
	csvPath    string
	jsonPath   string
}

type row struct {
	Time float64 `json:"time_s"`
	Cp   float64 `json:"cp"`
	Ce   float64 `json:"ce"`
}

// slogSink adapts tci.WarningSink to the standard structured logger,
// keeping the core synchronous and free of any logging dependency itself.
type slogSink struct{}

func (slogSink) Warn(w tci.Warning) {
	slog.Warn("tci warning", "kind", w.Kind, "target", w.Target, "detail", w.Detail)
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "tcisim [config.yaml]",
		Short: "Target-controlled infusion simulator",
		Long: `tcisim simulates a target-controlled infusion schedule for a
compartmental pharmacokinetic/pharmacodynamic drug model: given an ordered
list of plasma or effect-site concentration targets and a pump profile, it
derives the infusion schedule that reaches each target and simulates the
resulting plasma and effect-site concentration trajectories.

Examples:
  tcisim config.yaml
  tcisim --csv out.csv --json out.json config.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.configPath = args[0]
			return run(o)
		},
	}

	root.Flags().StringVar(&o.csvPath, "csv", "", "write the per-second trajectory to a CSV file")
	root.Flags().StringVar(&o.jsonPath, "json", "", "write the per-second trajectory to a JSON file")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(o opts) error {
	_, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}

	coeffs, err := tci.NewCoefficients(cfg.Model.toDrugModel())
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}

	sched := tci.NewScheduler(coeffs, cfg.Pump.toPumpConfig(), slogSink{})

	for i, tc := range cfg.Targets {
		target, err := tc.toTarget()
		if err != nil {
			return fmt.Errorf("target %d: %w", i, err)
		}
		sched.AddTarget(target)
	}

	infusions, err := sched.GenerateInfusions()
	if err != nil {
		slog.Warn("schedule generation reported an error; continuing with partial schedule", "err", err)
	}

	traj, err := sched.Run()
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	printInfusions(infusions)
	printTrajectory(traj)

	if o.csvPath != "" {
		if err := writeCSV(o.csvPath, traj); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if o.jsonPath != "" {
		if err := writeJSON(o.jsonPath, traj); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}

	return nil
}

func printInfusions(infusions []tci.Infusion) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START (s)\tDURATION (s)\tDOSE")
	fmt.Fprintln(tw, "---------\t------------\t----")
	for _, inf := range infusions {
		fmt.Fprintf(tw, "%.1f\t%.1f\t%.6f\n", inf.Start, inf.Duration, inf.Dose)
	}
	tw.Flush()
	fmt.Println()
}

func printTrajectory(traj tci.Trajectory) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME (s)\tCp\tCe")
	fmt.Fprintln(tw, "--------\t--\t--")
	for i := range traj.Times {
		if i%60 != 0 {
			continue
		}
		fmt.Fprintf(tw, "%.0f\t%.4f\t%.4f\n", traj.Times[i], traj.Cp[i], traj.Ce[i])
	}
	tw.Flush()
	fmt.Println()
}

func writeCSV(path string, traj tci.Trajectory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time_s", "cp", "ce"}); err != nil {
		return err
	}
	for i := range traj.Times {
		if err := w.Write([]string{
			strconv.FormatFloat(traj.Times[i], 'f', 1, 64),
			strconv.FormatFloat(traj.Cp[i], 'f', 6, 64),
			strconv.FormatFloat(traj.Ce[i], 'f', 6, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, traj tci.Trajectory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	rows := make([]row, len(traj.Times))
	for i := range traj.Times {
		rows[i] = row{Time: traj.Times[i], Cp: traj.Cp[i], Ce: traj.Ce[i]}
	}

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
