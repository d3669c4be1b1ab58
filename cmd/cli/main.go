package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/bootstrap"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/config"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/internal/repository"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/db"
	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/logger"
	"github.com/spf13/cobra"
)

var envPath string

func main() {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "contactctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "contactctl",
		Short:        "Operator tooling for the contact API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envPath != "" {
				if _, err := os.Stat(envPath); err != nil {
					return err
				}
			}
			return config.Load(envPath)
		},
	}
	cmd.PersistentFlags().StringVar(&envPath, "env", "", "Env file to load before reading the environment")
	cmd.AddCommand(
		newMigrateCmd(),
		newTokenCmd(),
		newContactsCmd(),
	)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the schema migrations",
	}
	for _, d := range []db.Direction{db.Up, db.Down, db.Status} {
		direction := d
		cmd.AddCommand(&cobra.Command{
			Use:   string(direction),
			Short: fmt.Sprintf("goose %s against the configured store", direction),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, write := bootstrap.DBConfigs(config.Get())
				return db.MigrateConfig(write, direction)
			},
		})
	}
	return cmd
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print an admin bearer token for the contact listing endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, exp, err := bootstrap.NewAuthenticator(config.Get()).Issue()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
}

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Read stored contact submissions",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := bootstrap.OpenDB(cmd.Context(), config.Get())
			if err != nil {
				return err
			}
			defer store.Close()

			repo := repository.NewContactRepository(store)
			contacts, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			total, err := repo.Count(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(contacts) > limit {
				contacts = contacts[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tRECEIVED\tNAME\tEMAIL")
			for _, c := range contacts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Status, c.Timestamp.Format(time.RFC3339), c.Name, c.Email)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d contacts\n", len(contacts), total)
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n contacts (0 shows all)")

	cmd.AddCommand(list)
	return cmd
}
