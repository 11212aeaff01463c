package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/server"
	"github.com/shelfdesk/shelfdesk/internal/util"
	"github.com/shelfdesk/shelfdesk/internal/validator"
	"github.com/shelfdesk/shelfdesk/internal/version"
	"github.com/shelfdesk/shelfdesk/internal/worker"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if c.opts.JWTSecret == "" {
				c.opts.JWTSecret = util.GenUUID()
				log.Warn("jwt_secret is not set, using a random secret for this run")
			}

			notifications := circulation.NewNotifications(a.store, circulation.LogNotifier{})
			pool := worker.NewNotificationPool(c.opts.WorkerPoolSize, notifications.Deliver)
			defer pool.Close()
			if n, err := notifications.ResumePending(ctx, pool); err != nil {
				log.Error("Failed to resume pending notifications", zap.Error(err))
			} else if n > 0 {
				log.Info("Resumed pending notifications", zap.Int("count", n))
			}

			srv, errc := server.StartServer(a.service(circulation.WithQueue(pool)), c.opts)
			select {
			case <-ctx.Done():
				log.Info("Shutting down")
			case err, ok := <-errc:
				if ok {
					return err
				}
			}
			return server.Shutdown(srv)
		},
	}
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at schema %s\n", c.opts.DSN, version.GetSchemaVersion(version.GetCurrentVersion()))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetCurrentVersion())
		},
	}
}

func newBorrowerTypeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borrower-type",
		Short: "Manage borrower types and their loan periods",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <type> <days>",
		Short: "Add a borrower type",
		Args:  cobra.ExactArgs(2),
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			days, err := strconv.Atoi(args[1])
			if err != nil {
				return &validator.InvalidInputError{Field: "days", Reason: "must be a whole number", Err: err}
			}
			bt, err := s.AddBorrowerType(cmd.Context(), &model.BorrowerType{Type: args[0], BookTimeLimit: days})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Borrower type %s lends for %d days\n", bt.Type, bt.BookTimeLimit)
			return nil
		}),
	}, &cobra.Command{
		Use:   "list",
		Short: "List borrower types",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			types, err := s.ListBorrowerTypes(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tDAYS")
			for _, bt := range types {
				fmt.Fprintf(tw, "%s\t%d\n", bt.Type, bt.BookTimeLimit)
			}
			return tw.Flush()
		}),
	})
	return cmd
}
