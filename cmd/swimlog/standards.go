package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/swimlog/internal/config"
	"github.com/verte-zerg/swimlog/internal/model"
	"github.com/verte-zerg/swimlog/internal/standards"
	"github.com/verte-zerg/swimlog/internal/stats"
)

func newStandardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standards",
		Short: "Manage qualifying time standards",
	}
	cmd.AddCommand(newStandardsImportCmd())
	cmd.AddCommand(newStandardsFetchCmd())
	cmd.AddCommand(newStandardsListCmd())
	cmd.AddCommand(newStandardsRmCmd())
	return cmd
}

func newStandardsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import standards from a CSV file",
		Long:  "Import standards from a CSV file with columns: " + strings.Join(standards.Columns, ","),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importStandardsFile(cmd, args[0])
		},
	}
}

func importStandardsFile(cmd *cobra.Command, path string) error {
	list, err := standards.LoadCSV(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	n, err := a.svc.ImportStandards(context.Background(), list)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d standards from %s\n", n, path)
	return err
}

func newStandardsFetchCmd() *cobra.Command {
	var (
		force    bool
		download bool
	)
	cmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Download a standards CSV and import it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := ""
			if len(args) == 1 {
				url = args[0]
			} else {
				fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				if fileCfg.Standards.URL != nil {
					url = strings.TrimSpace(*fileCfg.Standards.URL)
				}
			}
			if url == "" {
				return fmt.Errorf("no url given and [standards] url is not configured")
			}
			logErrf("Fetching %s...\n", url)
			dl, err := standards.Fetch(cmd.Context(), url, config.DefaultStandardsCacheDir(), force)
			if err != nil {
				return fmt.Errorf("failed to fetch standards: %w", err)
			}
			if dl.Cached {
				logErrf("Using cached copy %s\n", dl.Path)
			} else {
				logErrf("Downloaded %s\n", dl.Path)
			}
			if download {
				logErrln("Skipping import (--download-only)")
				return nil
			}
			return importStandardsFile(cmd, dl.Path)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "download again even if cached")
	cmd.Flags().BoolVar(&download, "download-only", false, "download without importing")
	return cmd
}

func newStandardsListCmd() *cobra.Command {
	var (
		set, event, course, gender string
		age                        int
		sets                       bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List standards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := model.StandardFilter{Set: strings.TrimSpace(set), Age: age}
			if event != "" {
				ev, err := model.ParseEvent(event)
				if err != nil {
					return fmt.Errorf("invalid --event value: %w", err)
				}
				filter.Event = &ev
			}
			if course != "" {
				c, err := model.ParseCourse(course)
				if err != nil {
					return fmt.Errorf("invalid --course value: %w", err)
				}
				filter.Course = c
			}
			if gender != "" {
				g, err := model.ParseGender(gender)
				if err != nil {
					return fmt.Errorf("invalid --gender value: %w", err)
				}
				filter.Gender = g
			}
			if age < 0 {
				return fmt.Errorf("--age must be >= 0")
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			ctx := context.Background()
			out := cmd.OutOrStdout()
			if sets {
				names, err := a.svc.StandardSets(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					_, err = fmt.Fprintln(out, "No standards found.")
					return err
				}
				for _, name := range names {
					if _, err := fmt.Fprintln(out, name); err != nil {
						return fmt.Errorf("failed to write output: %w", err)
					}
				}
				return nil
			}
			list, err := a.svc.Standards(ctx, filter)
			if err != nil {
				return err
			}
			return stats.RenderStandards(out, list)
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "standard set")
	cmd.Flags().StringVar(&event, "event", "", "event, e.g. \"100 free\"")
	cmd.Flags().StringVar(&course, "course", "", "course (SCY, SCM, LCM)")
	cmd.Flags().StringVar(&gender, "gender", "", "gender (F, M, X)")
	cmd.Flags().IntVar(&age, "age", 0, "swimmer age")
	cmd.Flags().BoolVar(&sets, "sets", false, "list set names only")
	return cmd
}

func newStandardsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <set>",
		Short: "Delete a standard set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			n, err := a.svc.DeleteStandardSet(context.Background(), args[0])
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("standard set %q not found", args[0])
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d standards from %q\n", n, args[0])
			return err
		},
	}
}
