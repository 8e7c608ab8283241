package main

import (
	"fmt"
	"strings"
	"time"

	"cake-tracker/internal/config"
	"cake-tracker/internal/suggest"

	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "suggest <name fragment>",
		Short: "Show the names the add form would suggest for a fragment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			repo, closeRepo := openRepository(cmd.Context(), cfg, log)
			defer closeRepo()

			session := suggest.NewSession(suggest.NewLookup(repo, cfg.Suggest.Limit, log), cfg.Suggest.Debounce, log)
			defer session.Close()

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return nil
			}
			session.Focus()
			session.Input(query)

			select {
			case <-session.Settled():
			case <-time.After(cfg.Suggest.Debounce + timeout):
				return fmt.Errorf("no suggestions within %s", cfg.Suggest.Debounce+timeout)
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}

			out := cmd.OutOrStdout()
			for _, s := range session.Suggestions() {
				fmt.Fprintf(out, "%s\t%d\n", s.Name, s.Total)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for the lookup after the debounce")
	return cmd
}
