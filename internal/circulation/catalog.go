package circulation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

type NewBookResult struct {
	Book *model.Book     `json:"book"`
	Copy *model.BookCopy `json:"copy"`
	// Created is false when the ISBN was already catalogued and only a copy was added.
	Created bool `json:"created"`
}

// AddBook catalogues a book with its authors and subjects and a first copy.
// When the ISBN is known it adds another copy of that book instead.
func (s *Service) AddBook(ctx context.Context, create *model.CreateBook) (*NewBookResult, error) {
	if err := validator.ValidateCreateBook(create); err != nil {
		return nil, err
	}
	result := &NewBookResult{}
	err := s.store.Transact(ctx, func(tx *store.Store) error {
		book, err := tx.FindBookByISBN(ctx, strings.TrimSpace(create.ISBN))
		if err != nil {
			return err
		}
		if book == nil {
			if book, err = s.addBook(ctx, tx, create); err != nil {
				return err
			}
			result.Created = true
		}
		result.Book = book
		result.Copy, err = tx.AddBookCopy(ctx, result.Book.CallNumber, model.CopyIn)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("Book catalogued",
		zap.Int64("call_number", result.Book.CallNumber),
		zap.Int64("copy_no", result.Copy.CopyNo),
		zap.Bool("created", result.Created))
	return result, nil
}

func (s *Service) addBook(ctx context.Context, tx *store.Store, create *model.CreateBook) (*model.Book, error) {
	book, err := tx.AddBook(ctx, &model.Book{
		ISBN:       strings.TrimSpace(create.ISBN),
		Title:      strings.TrimSpace(create.Title),
		MainAuthor: strings.TrimSpace(create.MainAuthor),
		Publisher:  create.Publisher,
		Year:       create.Year,
	})
	if err != nil {
		return nil, err
	}
	for _, name := range distinct(create.Authors) {
		if _, err := tx.AddHasAuthor(ctx, &model.HasAuthor{CallNumber: book.CallNumber, Name: name}); err != nil {
			return nil, err
		}
	}
	for _, subject := range distinct(create.Subjects) {
		if _, err := tx.AddHasSubject(ctx, &model.HasSubject{CallNumber: book.CallNumber, Subject: subject}); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// distinct trims values and drops blanks and repeats, keeping the first order.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	list := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		list = append(list, v)
	}
	return list
}

// AddCopy shelves one more copy of a catalogued book.
func (s *Service) AddCopy(ctx context.Context, callNumber int64) (*model.BookCopy, error) {
	return s.store.AddBookCopy(ctx, callNumber, model.CopyIn)
}

func (s *Service) Search(ctx context.Context, keyword string) ([]*model.SearchHit, error) {
	keyword, err := validator.RequireText("keyword", keyword)
	if err != nil {
		return nil, err
	}
	return s.store.SearchBooks(ctx, keyword)
}

// Popular ranks the books borrowed most in year.
func (s *Service) Popular(ctx context.Context, year, limit int) ([]*model.PopularBook, error) {
	if limit <= 0 {
		return nil, &validator.InvalidInputError{Field: "limit", Reason: "must be positive"}
	}
	return s.store.ListPopularBooks(ctx, year, limit)
}
