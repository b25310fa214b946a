package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/swimlog/internal/daterange"
	"github.com/verte-zerg/swimlog/internal/form"
	"github.com/verte-zerg/swimlog/internal/stats"
	"github.com/verte-zerg/swimlog/internal/store"
)

func newMeetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meet",
		Short: "Manage meets",
	}
	cmd.AddCommand(newMeetAddCmd())
	cmd.AddCommand(newMeetListCmd())
	cmd.AddCommand(newMeetRmCmd())
	return cmd
}

func newMeetAddCmd() *cobra.Command {
	var in form.MeetInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a meet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Course == "" {
				cfg, err := loadConfig(cmd, nil)
				if err != nil {
					return err
				}
				in.Course = string(cfg.DefaultCourse)
			}
			m, errs := in.Validate()
			if err := errs.Err(); err != nil {
				return fmt.Errorf("invalid meet:\n%w", err)
			}
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			id, err := a.svc.AddMeet(context.Background(), m)
			if err != nil {
				return err
			}
			span := daterange.Span{Start: m.StartDate, End: m.EndDate}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added meet #%d: %s (%s, %s)\n", id, m.Name, m.Course, span)
			return err
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "meet name")
	cmd.Flags().StringVar(&in.Location, "location", "", "pool or city")
	cmd.Flags().StringVar(&in.Course, "course", "", "course (SCY, SCM, LCM)")
	cmd.Flags().StringVar(&in.Start, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.End, "end", "", "last day (YYYY-MM-DD); defaults to start")
	return cmd
}

func newMeetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List meets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()
			meets, err := a.svc.Meets(context.Background())
			if err != nil {
				return err
			}
			return stats.RenderMeets(cmd.OutOrStdout(), meets)
		},
	}
}

func newMeetRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a meet and its results",
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
			if err := a.svc.DeleteMeet(context.Background(), id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("meet #%d not found", id)
				}
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted meet #%d\n", id)
			return err
		},
	}
}
