package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/entryui"
	"github.com/verte-zerg/swimlog/internal/form"
	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/stats"
	"github.com/verte-zerg/swimlog/internal/swimtime"
)

const defaultProgressHeight = 12

func newAddCmd() *cobra.Command {
	var (
		in          form.ResultInput
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a result",
		Long:  "Record a result. Without --event and --time an interactive form opens.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interactive || in.Event == "" || in.Time == "" {
				return runAddForm(cmd, in)
			}
			return runAdd(cmd, in)
		},
	}
	cmd.Flags().StringVar(&in.Event, "event", "", "event, e.g. \"100 free\"")
	cmd.Flags().StringVar(&in.Course, "course", "", "course (SCY, SCM, LCM); defaults to the meet's or config course")
	cmd.Flags().StringVar(&in.Time, "time", "", "swim time (M:SS.hh or SS.hh)")
	cmd.Flags().StringVar(&in.Date, "date", "", "swim date (YYYY-MM-DD); defaults to today or the meet start")
	cmd.Flags().StringVar(&in.MeetID, "meet", "", "meet id")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "open the entry form")
	return cmd
}

func runAdd(cmd *cobra.Command, in form.ResultInput) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if in.Course == "" && in.MeetID == "" {
		in.Course = string(cfg.DefaultCourse)
	}
	now := time.Now()
	r, errs := in.Validate(now)
	if err := errs.Err(); err != nil {
		return fmt.Errorf("invalid result:\n%w", err)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := context.Background()

	course := r.Course
	if course == "" && r.MeetID > 0 {
		meet, err := a.svc.Meet(ctx, r.MeetID)
		if err != nil {
			return fmt.Errorf("failed to load meet %d: %w", r.MeetID, err)
		}
		course = meet.Course
	}
	prev, hadPB, err := a.svc.PersonalBest(ctx, r.Event, course)
	if err != nil {
		return fmt.Errorf("failed to load personal best: %w", err)
	}

	id, err := a.svc.RecordResult(ctx, r)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Recorded #%d: %s %s %s\n", id, r.Event, course, swimtime.Format(r.TimeMs)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	switch {
	case !hadPB:
		_, err = fmt.Fprintln(out, "First swim of this event.")
	case r.TimeMs < prev.TimeMs:
		_, err = fmt.Fprintf(out, "New personal best (%s)\n", swimtime.FormatDiff(r.TimeMs-prev.TimeMs))
	default:
		_, err = fmt.Fprintf(out, "Personal best %s (%s)\n", swimtime.Format(prev.TimeMs), swimtime.FormatDiff(r.TimeMs-prev.TimeMs))
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	standards, err := a.svc.Standards(ctx, model.StandardFilter{
		Set:    cfg.StandardSet,
		Event:  &r.Event,
		Course: course,
		Gender: cfg.Swimmer.Gender,
		Age:    stats.AgeOn(cfg.Swimmer.BirthDate, now),
	})
	if err != nil {
		return fmt.Errorf("failed to load standards: %w", err)
	}
	if len(standards) == 0 {
		return nil
	}
	best := model.PersonalBest{Event: r.Event, Course: course, TimeMs: r.TimeMs, SwamOn: r.SwamOn}
	comps := []stats.EventComparison{{
		Event:   r.Event,
		Course:  course,
		Best:    &best,
		Entries: compare.Against(&r.TimeMs, standards, cfg.ThresholdPercent),
	}}
	return stats.RenderComparisons(out, comps)
}

func runAddForm(cmd *cobra.Command, in form.ResultInput) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ui := entryui.NewModel(a.svc, cfg, in, time.Now)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run entry TUI: %w", err)
	}
	if n := ui.Saved(); n > 0 {
		logErrf("Recorded %d result(s)\n", n)
	}
	return nil
}

func newResultsCmd() *cobra.Command {
	var (
		f      reportFlags
		meetID int64
		last   int
	)
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List recorded results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := statsConfig(model.Config{}, &f)
			if err != nil {
				return err
			}
			if last < 0 {
				return fmt.Errorf("--last must be >= 0")
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			results, err := a.svc.Results(context.Background(), model.ResultFilter{
				Event:  sc.Event,
				Course: sc.Course,
				Stroke: sc.Stroke,
				MeetID: meetID,
				Since:  sc.Since,
				Last:   last,
			})
			if err != nil {
				return err
			}
			return stats.RenderResults(cmd.OutOrStdout(), results, time.Now())
		},
	}
	cmd.Flags().StringVar(&f.event, "event", "", "event filter, e.g. \"100 free\"")
	cmd.Flags().StringVar(&f.course, "course", "", "course filter (SCY, SCM, LCM)")
	cmd.Flags().StringVar(&f.stroke, "stroke", "", "stroke filter")
	cmd.Flags().StringVar(&f.since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&meetID, "meet", 0, "meet id filter")
	cmd.Flags().IntVar(&last, "last", 0, "only the last N results")
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.svc.DeleteResult(context.Background(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted result #%d\n", id)
			return err
		},
	})
	return cmd
}

func newPBsCmd() *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "pbs",
		Short: "Show personal bests grouped by stroke",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := statsConfig(model.Config{}, &f)
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			bests, err := a.svc.PersonalBests(context.Background(), model.ResultFilter{
				Course: sc.Course,
				Stroke: sc.Stroke,
				Since:  sc.Since,
			})
			if err != nil {
				return err
			}
			return stats.RenderBests(cmd.OutOrStdout(), stats.GroupByStroke(bests))
		},
	}
	cmd.Flags().StringVar(&f.course, "course", "", "course filter (SCY, SCM, LCM)")
	cmd.Flags().StringVar(&f.stroke, "stroke", "", "stroke filter")
	cmd.Flags().StringVar(&f.since, "since", "", "start date (YYYY-MM-DD)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare personal bests against qualifying standards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			sc, err := statsConfig(cfg, &f)
			if err != nil {
				return err
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			report, err := stats.BuildReport(context.Background(), a.svc, sc, time.Now())
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}
			out := cmd.OutOrStdout()
			if report.Age > 0 {
				if _, err := fmt.Fprintf(out, "Age %d (%s)\n\n", report.Age, report.AgeGroup); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}
			if err := stats.RenderComparisons(out, report.Comparisons); err != nil {
				return err
			}
			return renderTargets(cmd, report.Comparisons)
		},
	}
	bindReportFlags(cmd, &f, true)
	cmd.Flags().StringVar(&f.event, "event", "", "event filter, e.g. \"100 free\"")
	return cmd
}

func renderTargets(cmd *cobra.Command, comps []stats.EventComparison) error {
	var lines []string
	for _, c := range comps {
		if c.Best == nil {
			continue
		}
		held := ""
		if best, ok := compare.Best(c.Entries); ok {
			held = "holds " + best.Standard.Name + ", "
		}
		target, ok := compare.NextTarget(c.Entries)
		if !ok {
			if held != "" {
				lines = append(lines, fmt.Sprintf("  %s %s: %sall standards achieved", c.Event, c.Course, held))
			}
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s %s: %snext %s %s (%s to go)",
			c.Event, c.Course, held, target.Standard.Name, swimtime.Format(target.Standard.TimeMs), target.Result.DifferenceDisplay()))
	}
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Next targets:\n%s\n", strings.Join(lines, "\n"))
	return err
}

func newProgressCmd() *cobra.Command {
	var (
		f      reportFlags
		width  int
		height int
		smooth int
	)
	cmd := &cobra.Command{
		Use:   "progress <event>",
		Short: "Chart an event's times over time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := model.ParseEvent(strings.Join(args, " "))
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			sc, err := statsConfig(cfg, &f)
			if err != nil {
				return err
			}
			if sc.Course == "" {
				sc.Course = cfg.DefaultCourse
			}
			if smooth < 0 {
				return fmt.Errorf("--smooth must be >= 0")
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			p, err := stats.BuildProgress(context.Background(), a.svc, sc, event, time.Now())
			if err != nil {
				return fmt.Errorf("failed to build progress: %w", err)
			}
			if smooth > 1 {
				p.Points = stats.Smooth(p.Points, smooth)
			}
			return stats.RenderProgress(cmd.OutOrStdout(), p, width, height, false)
		},
	}
	cmd.Flags().StringVar(&f.course, "course", "", "course (default: config course)")
	cmd.Flags().StringVar(&f.since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.set, "set", "", "standard set drawn as reference lines")
	cmd.Flags().IntVar(&width, "width", 0, "total chart width (default: terminal width)")
	cmd.Flags().IntVar(&height, "height", defaultProgressHeight, "chart height in rows")
	cmd.Flags().IntVar(&smooth, "smooth", 0, "moving average window")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
