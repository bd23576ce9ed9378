// Command vlecalc computes phase equilibrium points from a YAML sweep
// description using a van der Waals mixture.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"vle"
	"vle/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		workers int
		dbPath  string
	)

	root := &cobra.Command{
		Use:           "vlecalc",
		Short:         "Vapor-liquid equilibrium calculations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "parallel sweep workers")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite file to record results in")

	root.AddCommand(
		newSweepCmd("bubble", "Bubble-point pressures for liquid compositions", &workers, &dbPath),
		newSweepCmd("dew", "Dew-point pressures for vapor compositions", &workers, &dbPath),
		newPsatCmd(),
		newFlashCmd(),
	)
	return root
}

func newSweepCmd(kind, short string, workers *int, dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <sweep.yaml>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := LoadSweepSpec(args[0])
			if err != nil {
				return err
			}
			eos, cfg, err := spec.Build()
			if err != nil {
				return err
			}

			points, err := vle.NewSweep(spec.Temperatures, spec.Compositions)
			if err != nil {
				return err
			}

			batch := vle.BatchConfig{Workers: *workers, Equilibrium: cfg}
			var results []vle.SweepResult
			if kind == "bubble" {
				results, err = vle.BubblePointSweep(context.Background(), eos, points, batch)
			} else {
				results, err = vle.DewPointSweep(context.Background(), eos, points, batch)
			}
			if err != nil {
				return err
			}

			printResults(results)

			if *dbPath != "" {
				db, err := store.Open(*dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				runID, err := db.SaveSweep(kind, "van-der-waals", spec.componentNames(), results)
				if err != nil {
					return err
				}
				slog.Info("results saved", "db", *dbPath, "run", runID)
			}
			return nil
		},
	}
}

func newPsatCmd() *cobra.Command {
	var (
		name   string
		tc, pc float64
		temp   float64
	)
	cmd := &cobra.Command{
		Use:   "psat",
		Short: "Saturation pressure of a pure component",
		RunE: func(cmd *cobra.Command, args []string) error {
			eos := vle.NewVanDerWaals(vle.Component{Name: name, Tc: tc, Pc: pc})
			sat, err := vle.SaturationPressure(eos, temp, []float64{1}, vle.DefaultDensityConfig())
			if err != nil {
				return err
			}
			fmt.Printf("T = %g K\nPsat = %.6e Pa\nrho_liquid = %.6e mol/m3\nrho_vapor = %.6e mol/m3\n",
				temp, sat.Pressure, sat.LiquidDensity, sat.VaporDensity)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "fluid", "component name")
	cmd.Flags().Float64Var(&tc, "tc", 0, "critical temperature [K]")
	cmd.Flags().Float64Var(&pc, "pc", 0, "critical pressure [Pa]")
	cmd.Flags().Float64Var(&temp, "T", 0, "temperature [K]")
	cmd.MarkFlagRequired("tc")
	cmd.MarkFlagRequired("pc")
	cmd.MarkFlagRequired("T")
	return cmd
}

func newFlashCmd() *cobra.Command {
	var (
		spec    string
		temp, p float64
	)
	cmd := &cobra.Command{
		Use:   "flash",
		Short: "Two-phase split of a binary system at fixed T and P",
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, err := LoadSweepSpec(spec)
			if err != nil {
				return err
			}
			eos, cfg, err := sw.Build()
			if err != nil {
				return err
			}
			res, err := vle.Flash(eos, temp, p, vle.DefaultFlashConfig(), cfg)
			if err != nil {
				return err
			}
			fmt.Printf("liquid = %v (%s)\nvapor = %v (%s)\nresidual = %.3e in %d iterations\n",
				res.Liquid, res.LiquidFlag, res.Vapor, res.VaporFlag, res.Residual, res.Iterations)
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "components", "", "YAML file naming the components")
	cmd.Flags().Float64Var(&temp, "T", 0, "temperature [K]")
	cmd.Flags().Float64Var(&p, "P", 0, "pressure [Pa]")
	cmd.MarkFlagRequired("components")
	cmd.MarkFlagRequired("T")
	cmd.MarkFlagRequired("P")
	return cmd
}

func printResults(results []vle.SweepResult) {
	fmt.Printf("%-10s %-14s %-24s %-24s %-8s %-8s\n",
		"T [K]", "P [Pa]", "fixed", "solved", "vapor", "liquid")
	for _, r := range results {
		fmt.Printf("%-10.2f %-14.6e %-24v %-24v %-8s %-8s\n",
			r.T, r.Pressure, r.Fixed, r.Composition, r.VaporFlag, r.LiquidFlag)
	}
}
