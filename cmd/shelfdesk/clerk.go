package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

func newCheckoutCmd(c *cli) *cobra.Command {
	var bid string
	var callNumbers []string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Check out one or more books for a borrower",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			id, err := validator.ParseID("bid", bid)
			if err != nil {
				return err
			}
			list, err := validator.ParseCallNumbers(callNumbers, s.MaxCheckoutItems())
			if err != nil {
				return err
			}
			receipt, err := s.CheckoutBooks(cmd.Context(), id, list...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), receipt.Message())
			return nil
		}),
	}
	cmd.Flags().StringVar(&bid, "bid", "", "borrower id")
	cmd.Flags().StringSliceVar(&callNumbers, "call-number", nil, "call number of a book, repeatable")
	return cmd
}

func newReturnCmd(c *cli) *cobra.Command {
	var callNumber, copyNo string
	cmd := &cobra.Command{
		Use:   "return",
		Short: "Check a copy back in",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			cn, err := validator.ParseID("call_number", callNumber)
			if err != nil {
				return err
			}
			no, err := validator.ParseID("copy_no", copyNo)
			if err != nil {
				return err
			}
			result, err := s.Return(cmd.Context(), cn, no)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message())
			return nil
		}),
	}
	cmd.Flags().StringVar(&callNumber, "call-number", "", "call number of the book")
	cmd.Flags().StringVar(&copyNo, "copy-no", "", "copy number")
	return cmd
}

func newNewBorrowerCmd(c *cli) *cobra.Command {
	var (
		create                model.CreateBorrower
		address, phone, email string
		expiry                string
	)
	cmd := &cobra.Command{
		Use:   "new-borrower",
		Short: "Register a borrower",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			if expiry != "" {
				d, err := validator.ParseDate("expiry", expiry)
				if err != nil {
					return err
				}
				create.ExpiryDate = model.DatePtr(d)
			}
			create.Address = validator.OptionalText(address)
			create.Phone = validator.OptionalText(phone)
			create.EmailAddress = validator.OptionalText(email)
			if create.Password == "" {
				password, err := readPassword(cmd, "Password for the new borrower: ")
				if err != nil {
					return err
				}
				create.Password = password
			}

			borrower, err := s.RegisterBorrower(cmd.Context(), &create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Borrower #%d %s registered, card valid until %s\n",
				borrower.BID, borrower.Name, model.DateString(borrower.ExpiryDate))
			return nil
		}),
	}
	cmd.Flags().StringVar(&create.Name, "name", "", "full name")
	cmd.Flags().StringVar(&create.Password, "password", "", "password, prompted for when empty")
	cmd.Flags().StringVar(&create.SinOrStNo, "sin", "", "SIN or student number")
	cmd.Flags().StringVar(&create.Type, "type", "", "borrower type")
	cmd.Flags().StringVar(&address, "address", "", "postal address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&expiry, "expiry", "", "card expiry date, YYYY-MM-DD")
	return cmd
}

func newOverdueCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List copies past their due date",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			items, err := s.Overdue(cmd.Context())
			if err != nil {
				return err
			}
			return printLoans(cmd, items)
		}),
	}
}

func printLoans(cmd *cobra.Command, items []*circulation.OverdueItem) error {
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No copies")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CALL NUMBER\tCOPY\tTITLE\tBORROWER\tDUE\tDAYS OVERDUE")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%d\t%s\t#%d %s\t%s\t%d\n",
			item.CallNumber, item.CopyNo, item.Title, item.BID, item.BorrowerName, item.InDate, item.DaysOverdue)
	}
	return tw.Flush()
}
