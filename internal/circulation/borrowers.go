package circulation

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/validator"
)

// RegisterBorrower adds a borrower from the clerk's form. The password is
// stored as a bcrypt hash.
func (s *Service) RegisterBorrower(ctx context.Context, create *model.CreateBorrower) (*model.Borrower, error) {
	if err := validator.ValidateCreateBorrower(create); err != nil {
		return nil, err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(create.Password), s.passwordCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	var borrower *model.Borrower
	err = s.store.Transact(ctx, func(tx *store.Store) error {
		typ := strings.TrimSpace(create.Type)
		if _, err := tx.GetBorrowerType(ctx, typ); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return violation(ErrUnknownBorrowerType, "%q", typ)
			}
			return err
		}
		borrower, err = tx.AddBorrower(ctx, &model.Borrower{
			Password:     string(passwordHash),
			Name:         strings.TrimSpace(create.Name),
			Address:      create.Address,
			Phone:        create.Phone,
			EmailAddress: create.EmailAddress,
			SinOrStNo:    strings.TrimSpace(create.SinOrStNo),
			ExpiryDate:   create.ExpiryDate,
			Type:         typ,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("Borrower registered", zap.Int64("bid", borrower.BID), zap.String("type", borrower.Type))
	return borrower, nil
}

// Authenticate checks a borrower's id and password.
func (s *Service) Authenticate(ctx context.Context, bid int64, password string) (*model.Borrower, error) {
	borrower, err := s.store.GetBorrower(ctx, bid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(borrower.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return borrower, nil
}

func (s *Service) AddBorrowerType(ctx context.Context, bt *model.BorrowerType) (*model.BorrowerType, error) {
	if err := validator.ValidateBorrowerType(bt); err != nil {
		return nil, err
	}
	return s.store.AddBorrowerType(ctx, &model.BorrowerType{Type: strings.TrimSpace(bt.Type), BookTimeLimit: bt.BookTimeLimit})
}

func (s *Service) ListBorrowerTypes(ctx context.Context) ([]*model.BorrowerType, error) {
	return s.store.ListBorrowerTypes(ctx)
}
