package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

// readPassword prompts on stderr. A terminal gets a masked prompt, anything
// else is read as one line.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// signedIn holds the borrower flags of the borrower tab commands.
type signedIn struct {
	bid      string
	password string
}

func (si *signedIn) flags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&si.bid, "bid", "", "borrower id")
	cmd.Flags().StringVar(&si.password, "password", "", "password, prompted for when empty")
}

// authenticate signs the borrower in and returns their bid.
func (si *signedIn) authenticate(cmd *cobra.Command, s *circulation.Service) (int64, error) {
	bid, err := validator.ParseID("bid", si.bid)
	if err != nil {
		return 0, err
	}
	password := si.password
	if password == "" {
		if password, err = readPassword(cmd, "Password: "); err != nil {
			return 0, err
		}
	}
	if _, err := s.Authenticate(cmd.Context(), bid, password); err != nil {
		return 0, err
	}
	return bid, nil
}

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search books by title, author or subject",
		Args:  cobra.ExactArgs(1),
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			hits, err := s.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books found")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CALL NUMBER\tTITLE\tAUTHORS\tSUBJECTS\tIN\tOUT\tON HOLD")
			for _, hit := range hits {
				authors := hit.Authors
				if authors == "" {
					authors = hit.MainAuthor
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n",
					hit.CallNumber, hit.Title, authors, hit.Subjects, hit.CopiesIn, hit.CopiesOut, hit.CopiesOnHold)
			}
			return tw.Flush()
		}),
	}
}

func newAccountCmd(c *cli) *cobra.Command {
	var si signedIn
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show a borrower's loans, fines and holds",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			bid, err := si.authenticate(cmd, s)
			if err != nil {
				return err
			}
			account, err := s.Account(cmd.Context(), bid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), account.Message())
			return nil
		}),
	}
	si.flags(cmd)
	return cmd
}

func newHoldCmd(c *cli) *cobra.Command {
	var si signedIn
	var callNumber string
	cmd := &cobra.Command{
		Use:   "hold",
		Short: "Request a hold on a book",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			cn, err := validator.ParseID("call_number", callNumber)
			if err != nil {
				return err
			}
			bid, err := si.authenticate(cmd, s)
			if err != nil {
				return err
			}
			hold, err := s.PlaceHold(cmd.Context(), bid, cn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hold %d placed on book %d\n", hold.HID, hold.CallNumber)
			return nil
		}),
	}
	si.flags(cmd)
	cmd.Flags().StringVar(&callNumber, "call-number", "", "call number of the book")
	return cmd
}

func newPayFineCmd(c *cli) *cobra.Command {
	var si signedIn
	var fid string
	cmd := &cobra.Command{
		Use:   "pay-fine",
		Short: "Pay one of a borrower's fines",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			id, err := validator.ParseID("fine", fid)
			if err != nil {
				return err
			}
			bid, err := si.authenticate(cmd, s)
			if err != nil {
				return err
			}
			fine, err := s.PayFine(cmd.Context(), bid, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fine %d paid on %s\n", fine.FID, fine.PaidDate)
			return nil
		}),
	}
	si.flags(cmd)
	cmd.Flags().StringVar(&fid, "fine", "", "fine id")
	return cmd
}
