package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

func newNewBookCmd(c *cli) *cobra.Command {
	var (
		create          model.CreateBook
		publisher, year string
	)
	cmd := &cobra.Command{
		Use:   "new-book",
		Short: "Catalogue a book, or add a copy when the ISBN is known",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			if year != "" {
				y, err := validator.ParseYear("year", year)
				if err != nil {
					return err
				}
				create.Year = y
			}
			create.Publisher = validator.OptionalText(publisher)

			result, err := s.AddBook(cmd.Context(), &create)
			if err != nil {
				return err
			}
			if result.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "Book %d %q added with copy %d\n", result.Book.CallNumber, result.Book.Title, result.Copy.CopyNo)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "ISBN %s is book %d, copy %d added\n", result.Book.ISBN, result.Book.CallNumber, result.Copy.CopyNo)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&create.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&create.Title, "title", "", "title")
	cmd.Flags().StringVar(&create.MainAuthor, "main-author", "", "main author")
	cmd.Flags().StringVar(&publisher, "publisher", "", "publisher")
	cmd.Flags().StringVar(&year, "year", "", "year of publication")
	cmd.Flags().StringSliceVar(&create.Authors, "author", nil, "additional author, repeatable")
	cmd.Flags().StringSliceVar(&create.Subjects, "subject", nil, "subject, repeatable")
	return cmd
}

func newCheckedOutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "checked-out",
		Short: "List every copy that is checked out",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			items, err := s.CheckedOut(cmd.Context())
			if err != nil {
				return err
			}
			return printLoans(cmd, items)
		}),
	}
}

func newPopularCmd(c *cli) *cobra.Command {
	var year, limit int
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Rank the most borrowed books of a year",
		RunE: c.withService(func(cmd *cobra.Command, args []string, s *circulation.Service) error {
			if year == 0 {
				year = s.Today().Year()
			}
			books, err := s.Popular(cmd.Context(), year, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tCALL NUMBER\tTITLE\tMAIN AUTHOR\tBORROWINGS")
			for i, b := range books {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\n", strconv.Itoa(i+1), b.CallNumber, b.Title, b.MainAuthor, b.Borrowings)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().IntVar(&year, "year", 0, "year, the current one by default")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of books")
	return cmd
}
