package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/config"
	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/store/db"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

const (
	exitFailure     = 1
	exitUnavailable = 2
)

// cli is the state shared by all subcommands of one invocation.
type cli struct {
	configFile string
	opts       *config.Options
}

// app is an open database with the circulation service on top.
type app struct {
	opts  *config.Options
	db    *db.DB
	store *store.Store
}

func (c *cli) open(ctx context.Context) (*app, error) {
	d, err := db.NewDB(c.opts.DSN)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return &app{opts: c.opts, db: d, store: store.NewStore(d.DB)}, nil
}

func (a *app) service(extra ...circulation.Option) *circulation.Service {
	opts := []circulation.Option{
		circulation.WithFeePerDay(a.opts.FeePerDayCents),
		circulation.WithDayCounter(util.DayCounterFor(a.opts.DayCount)),
		circulation.WithMaxCheckoutItems(a.opts.MaxCheckoutItems),
	}
	return circulation.NewService(a.store, append(opts, extra...)...)
}

func (a *app) Close() error {
	return a.db.Close()
}

// withService opens the database for one command and closes it afterwards.
func (c *cli) withService(fn func(cmd *cobra.Command, args []string, s *circulation.Service) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := c.open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a.service())
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:           "shelfdesk",
		Short:         "Shelfdesk runs the checkout desk of a university library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(c.configFile)
			if err != nil {
				return err
			}
			c.opts = opts
			log.Logger = log.NewLogger()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "config file (yaml or toml)")

	rootCmd.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newVersionCmd(),
		newBorrowerTypeCmd(c),
		// clerk
		newCheckoutCmd(c),
		newReturnCmd(c),
		newNewBorrowerCmd(c),
		newOverdueCmd(c),
		// borrower
		newSearchCmd(c),
		newAccountCmd(c),
		newHoldCmd(c),
		newPayFineCmd(c),
		// librarian
		newNewBookCmd(c),
		newCheckedOutCmd(c),
		newPopularCmd(c),
	)
	return rootCmd
}

// exitCode is 2 when the database cannot be reached and 1 for any other failure.
func exitCode(err error) int {
	if errors.Is(err, store.ErrStorageUnavailable) {
		return exitUnavailable
	}
	return exitFailure
}

func report(err error) {
	if exitCode(err) == exitUnavailable {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		report(err)
		os.Exit(exitCode(err))
	}
}
