package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/swimlog/internal/state"
)

func newLoginCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Sign in as a swimmer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, st, err := openState()
			if err != nil {
				return err
			}
			now := time.Now()
			if err := st.Session.SignIn(strings.Join(args, " "), now, ttl); err != nil {
				return err
			}
			if err := ss.Save(st); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (expires %s)\n",
				st.Session.Name, humanize.RelTime(st.Session.ExpiresAt, now, "ago", "from now"))
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", state.DefaultSessionTTL, "session lifetime")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ss, st, err := openState()
			if err != nil {
				return err
			}
			name := st.Session.Name
			st.Session.SignOut()
			if err := ss.Save(st); err != nil {
				return err
			}
			if name == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", name)
			return err
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in swimmer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, st, err := openState()
			if err != nil {
				return err
			}
			now := time.Now()
			if !st.Session.Active(now) {
				return fmt.Errorf("not signed in (run: swimlog login <name>)")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (signed in %s, expires %s)\n",
				st.Session.Name,
				humanize.RelTime(st.Session.SignedInAt, now, "ago", "from now"),
				humanize.RelTime(st.Session.ExpiresAt, now, "ago", "from now"))
			return err
		},
	}
}
