// Package main provides the CLI entrypoint for swimlog.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/swimlog/internal/compare"
	"github.com/verte-zerg/swimlog/internal/config"
	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/logging"
	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/records"
	"github.com/verte-zerg/swimlog/internal/state"
	"github.com/verte-zerg/swimlog/internal/statsui"
	"github.com/verte-zerg/swimlog/internal/store"
)

const defaultCourse = string(model.CourseSCY)

var (
	dbPath  string
	verbose bool
	logger  = zap.NewNop()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// reportFlags are the filters shared by the reporting commands.
type reportFlags struct {
	course    string
	stroke    string
	event     string
	since     string
	threshold float64
	set       string
}

func bindReportFlags(cmd *cobra.Command, f *reportFlags, withCourse bool) {
	if withCourse {
		cmd.Flags().StringVar(&f.course, "course", "", "course filter (SCY, SCM, LCM)")
	}
	cmd.Flags().StringVar(&f.stroke, "stroke", "", "stroke filter (free, back, breast, fly, im)")
	cmd.Flags().StringVar(&f.since, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", compare.DefaultThresholdPercent, "percent within a standard that counts as almost")
	cmd.Flags().StringVar(&f.set, "set", "", "standard set to compare against")
}

func newRootCmd() *cobra.Command {
	var flags reportFlags
	rootCmd := &cobra.Command{
		Use:               "swimlog",
		Short:             "Terminal swim time tracker",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initLogger,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatsUICmd(cmd, &flags)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $XDG_DATA_HOME/swimlog/swimlog.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug logs")
	bindReportFlags(rootCmd, &flags, false)

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newMeetCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newPBsCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newStandardsCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func initLogger(_ *cobra.Command, _ []string) error {
	l, err := logging.New(config.DefaultLogPath(), verbose)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		logger = zap.NewNop()
		return nil
	}
	logger = l
	return nil
}

// app bundles the resources a command needs.
type app struct {
	store *store.Store
	svc   *records.Service
}

func openApp() (*app, error) {
	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	svc, err := records.New(st, logger)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	logger.Debug("database opened", zap.String("path", path))
	return &app{store: st, svc: svc}, nil
}

func (a *app) close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func openState() (*state.Store, state.State, error) {
	ss := state.NewStore(config.DefaultStatePath())
	st, err := ss.Load()
	if err != nil {
		return nil, state.State{}, fmt.Errorf("failed to load state: %w", err)
	}
	return ss, st, nil
}

// loadConfig merges the config file, the signed-in session and any flags
// set explicitly on cmd.
func loadConfig(cmd *cobra.Command, f *reportFlags) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	course := defaultCourse
	threshold := compare.DefaultThresholdPercent
	set := ""
	if f != nil {
		if cmd.Flags().Lookup("threshold") != nil {
			threshold = f.threshold
		}
		set = f.set
	}
	applyFloatConfig(cmd, "threshold", &threshold, fileCfg.Compare.ThresholdPct)
	applyStringConfig(cmd, "set", &set, fileCfg.Compare.StandardSet)

	var name, birth, gender string
	setFromFile(&course, fileCfg.Swimmer.Course)
	setFromFile(&name, fileCfg.Swimmer.Name)
	setFromFile(&birth, fileCfg.Swimmer.BirthDate)
	setFromFile(&gender, fileCfg.Swimmer.Gender)

	if _, st, err := openState(); err == nil && st.Session.Active(time.Now()) {
		name = st.Session.Name
	} else if err != nil {
		logger.Warn("state unavailable", zap.Error(err))
	}

	if err := validateSettings(threshold, course, gender); err != nil {
		return model.Config{}, err
	}
	cfg := model.Config{
		Swimmer:          model.Swimmer{Name: name},
		ThresholdPercent: threshold,
		StandardSet:      strings.TrimSpace(set),
	}
	cfg.DefaultCourse, _ = model.ParseCourse(course)
	if gender != "" {
		cfg.Swimmer.Gender, _ = model.ParseGender(gender)
	}
	if birth != "" {
		bd, err := daterange.ParseDate(birth)
		if err != nil {
			return model.Config{}, fmt.Errorf("invalid swimmer birth-date: %w", err)
		}
		cfg.Swimmer.BirthDate = bd
	}
	return cfg, nil
}

// statsConfig turns report flags into stats filters.
func statsConfig(cfg model.Config, f *reportFlags) (model.StatsConfig, error) {
	out := model.StatsConfig{
		ThresholdPercent: cfg.ThresholdPercent,
		StandardSet:      cfg.StandardSet,
		Swimmer:          cfg.Swimmer,
	}
	if f == nil {
		return out, nil
	}
	if f.course != "" {
		course, err := model.ParseCourse(f.course)
		if err != nil {
			return out, fmt.Errorf("invalid --course value: %w", err)
		}
		out.Course = course
	}
	if f.stroke != "" {
		stroke, err := model.ParseStroke(f.stroke)
		if err != nil {
			return out, fmt.Errorf("invalid --stroke value: %w", err)
		}
		out.Stroke = stroke
	}
	if f.event != "" {
		ev, err := model.ParseEvent(f.event)
		if err != nil {
			return out, fmt.Errorf("invalid --event value: %w", err)
		}
		out.Event = &ev
	}
	if f.since != "" {
		since, err := daterange.ParseDate(f.since)
		if err != nil {
			return out, fmt.Errorf("invalid --since value: %w", err)
		}
		out.Since = &since
	}
	return out, nil
}

func runStatsUICmd(cmd *cobra.Command, f *reportFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	statsCfg, err := statsConfig(cfg, f)
	if err != nil {
		return err
	}
	ss, st, err := openState()
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ui := statsui.NewModel(statsui.Options{
		Source: a.svc,
		Config: statsCfg,
		State:  st,
		Save:   ss.Save,
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeDefaultConfig(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func setFromFile(target, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# swimlog configuration
# Uncomment a value to enable it. CLI flags override config values.

[swimmer]
# name = "Alex"            # Shown in the entry form; login overrides it
# birth-date = "2012-04-03" # Used for age-group standards
# gender = "F"             # F, M or X
# course = %q             # Default course for new results (SCY, SCM, LCM)

[compare]
# threshold = %.1f         # Percent within a standard that counts as almost
# standard-set = ""        # Only compare against this standard set

[standards]
# url = ""                 # Default source for: swimlog standards fetch
`,
		defaultCourse,
		compare.DefaultThresholdPercent,
	)
}

func validateSettings(threshold float64, course, gender string) error {
	if err := compare.ValidateThreshold(threshold); err != nil {
		return fmt.Errorf("--threshold must be between 0 and 100")
	}
	if _, err := model.ParseCourse(course); err != nil {
		return fmt.Errorf("invalid course: %w", err)
	}
	if gender != "" {
		if _, err := model.ParseGender(gender); err != nil {
			return fmt.Errorf("invalid swimmer gender: %w", err)
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
