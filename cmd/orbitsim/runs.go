package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/dynamo"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/spf13/cobra"
)

// loadRun reads a stored run's metadata and frames.
func loadRun(runID string) (*storage.RunMetadata, []storage.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func checkBody(frames []storage.Frame, i int) error {
	if i < 0 || i >= len(frames[0].Pos) {
		return fmt.Errorf("body %d out of range, run has %d bodies", i, len(frames[0].Pos))
	}
	return nil
}

func bodyName(meta *storage.RunMetadata, i int) string {
	if i < len(meta.Bodies) && meta.Bodies[i].Name != "" {
		return meta.Bodies[i].Name
	}
	return fmt.Sprintf("#%d", i)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBODIES\tSTEPS\tDT\tMODE\tTHETA\tINTEG")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%gs\t%s\t%.2f\t%s\n",
					run.ID,
					run.Scenario,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					len(run.Bodies),
					run.Steps,
					run.Dt,
					run.Mode,
					run.Theta,
					run.Integrator,
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd() *cobra.Command {
	var body, center int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body's coordinates and distance over time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if err := checkBody(frames, body); err != nil {
				return err
			}
			if err := checkBody(frames, center); err != nil {
				return err
			}

			track := storage.Track(frames, body)
			origin := storage.Track(frames, center)
			xs := make([]float64, len(track))
			ys := make([]float64, len(track))
			dist := make([]float64, len(track))
			for i, p := range track {
				xs[i] = p.X() / dynamo.AU
				ys[i] = p.Y() / dynamo.AU
				dist[i] = p.Sub(origin[i]).Len() / dynamo.AU
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("scenario: %s\n", meta.Scenario)
			fmt.Printf("body: %s, samples: %d\n\n", bodyName(meta, body), len(frames))

			for _, series := range []struct {
				data    []float64
				caption string
			}{
				{xs, "x (AU)"},
				{ys, "y (AU)"},
				{dist, fmt.Sprintf("distance to %s (AU)", bodyName(meta, center))},
			} {
				fmt.Println(asciigraph.Plot(series.data,
					asciigraph.Height(10),
					asciigraph.Width(80),
					asciigraph.Caption(series.caption),
				))
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&body, "body", 1, "body index")
	cmd.Flags().IntVar(&center, "center", 0, "body index distances are measured from")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var body, center int
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate a body's orbital period from its track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if err := checkBody(frames, body); err != nil {
				return err
			}
			if err := checkBody(frames, center); err != nil {
				return err
			}
			if len(frames) < 2 {
				return fmt.Errorf("run %s has too few frames", args[0])
			}

			// frames are evenly spaced by the sampling interval
			frameDt := frames[1].Time - frames[0].Time
			track := storage.Track(frames, body)
			origin := storage.Track(frames, center)

			fmt.Printf("orbit analysis: %s\n", meta.ID)
			fmt.Printf("body: %s around %s, %d samples every %.2f days\n\n", bodyName(meta, body), bodyName(meta, center), len(frames), frameDt/86400)

			rel := make([]float64, len(track))
			for i := range track {
				rel[i] = track[i].X() - origin[i].X()
			}
			ps := analysis.PowerSpectrum(rel)
			if len(ps) > 1 {
				plot := ps[1:]
				if len(plot) > 80 {
					plot = plot[:80]
				}
				fmt.Println(asciigraph.Plot(plot,
					asciigraph.Height(12),
					asciigraph.Width(80),
					asciigraph.Caption("power spectrum of relative x"),
				))
				fmt.Println()
			}

			if period, ok := analysis.OrbitalPeriod(track, origin, frameDt); ok {
				fmt.Printf("measured period: %.2f days\n", period/86400)
				if span := frames[len(frames)-1].Time - frames[0].Time; period > span {
					fmt.Println("  (longer than the run; treat as a lower bound)")
				}
			} else {
				fmt.Println("measured period: none found")
			}

			if body < len(meta.Bodies) && center < len(meta.Bodies) {
				el := analysis.OrbitalElements(
					dynamo.Body{Pos: frames[0].Pos[body], Vel: frames[0].Vel[body], Mass: meta.Bodies[body].Mass},
					dynamo.Body{Pos: frames[0].Pos[center], Vel: frames[0].Vel[center], Mass: meta.Bodies[center].Mass},
					dynamo.G,
				)
				if el.Bound {
					fmt.Printf("kepler period: %.2f days\n", el.Period/86400)
					fmt.Printf("semi-major axis: %.4f AU\n", el.SemiMajorAxis/dynamo.AU)
				} else {
					fmt.Println("kepler period: unbound")
				}
				fmt.Printf("eccentricity: %.4f\n", el.Eccentricity)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&body, "body", 1, "body index")
	cmd.Flags().IntVar(&center, "center", 0, "index of the body it orbits")
	return cmd
}

// openOutput returns stdout for "" or "-".
func openOutput(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			f, closeFn, err := openOutput(out)
			if err != nil {
				return err
			}
			if err := storage.WriteCSV(f, frames); err != nil {
				_ = closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and states to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return storage.ExportJSONStdout(*meta, frames)
			}
			if err := storage.ExportJSON(out, *meta, frames); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func newExportSVGCmd() *cobra.Command {
	var (
		out     string
		svgOpts = export.DefaultOptions()
	)
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render run trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, frames, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = meta.ID + ".svg"
			}
			f, closeFn, err := openOutput(out)
			if err != nil {
				return err
			}
			if err := export.Trajectories(f, *meta, frames, svgOpts); err != nil {
				_ = closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}
			if out != "-" {
				fmt.Printf("exported to %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, <run_id>.svg when empty, - for stdout")
	cmd.Flags().IntVar(&svgOpts.Width, "width", svgOpts.Width, "image width")
	cmd.Flags().IntVar(&svgOpts.Height, "height", svgOpts.Height, "image height")
	cmd.Flags().IntVar(&svgOpts.MaxPaths, "max-paths", svgOpts.MaxPaths, "trajectories to draw, heaviest first, 0 for all")
	cmd.Flags().IntVar(&svgOpts.Stride, "stride", svgOpts.Stride, "use every n-th frame")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := experiment.NewRegistry()
			scenarios := args
			if len(scenarios) == 0 {
				scenarios = r.ListScenarios()
			}

			for _, s := range scenarios {
				presets := config.ListPresets(s)
				if len(presets) == 0 {
					fmt.Printf("no presets for scenario: %s\n", s)
					continue
				}
				fmt.Printf("presets for %s:\n", s)
				for _, p := range presets {
					c := config.GetPreset(s, p)
					fmt.Printf("  %-12s mode=%s theta=%.2f dt=%gs steps=%d\n", p, c.Mode, c.Theta, c.Dt, c.Steps)
				}
			}
			if len(args) == 0 {
				fmt.Printf("integrators: %s\n", strings.Join(r.ListIntegrators(), ", "))
			}
			return nil
		},
	}
}
