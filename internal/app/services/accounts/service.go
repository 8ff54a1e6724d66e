package accounts

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/R3E-Network/social_layer/internal/app/domain/account"
	"github.com/R3E-Network/social_layer/internal/app/metrics"
	"github.com/R3E-Network/social_layer/internal/app/storage"
	svcerrors "github.com/R3E-Network/social_layer/internal/errors"
	"github.com/R3E-Network/social_layer/pkg/logger"
)

var validate = validator.New()

// Service applies the account rules in front of the account store.
type Service struct {
	store storage.AccountStore
	log   *logger.Logger
}

// New constructs an account service.
func New(store storage.AccountStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accounts")
	}
	return &Service{store: store, log: log}
}

// Register creates an account when the username is non-empty and the password
// has at least four characters. The returned account carries its new id.
func (s *Service) Register(ctx context.Context, candidate account.Account) (created account.Account, err error) {
	defer func() { metrics.RecordAccountOperation("register", err) }()

	candidate.ID = 0
	if err := validate.Struct(candidate); err != nil {
		s.log.WithField("username", candidate.Username).WithError(err).Debug("registration rejected")
		return account.Account{}, svcerrors.Validation("invalid account", err)
	}

	created, err = s.store.InsertAccount(ctx, candidate)
	if err != nil {
		if errors.Is(err, storage.ErrConstraint) {
			s.log.WithField("username", candidate.Username).Info("registration refused: username taken")
			return account.Account{}, svcerrors.Conflict("username unavailable", err)
		}
		s.log.WithError(err).Error("insert account")
		return account.Account{}, svcerrors.StoreFailure("register account", err)
	}

	s.log.WithField("account_id", created.ID).
		WithField("username", created.Username).
		Info("account registered")
	return created, nil
}

// Login returns the stored account whose username and password both match.
func (s *Service) Login(ctx context.Context, candidate account.Account) (found account.Account, err error) {
	defer func() { metrics.RecordAccountOperation("login", err) }()

	found, err = s.store.FindAccountByCredentials(ctx, candidate.Username, candidate.Password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WithField("username", candidate.Username).Info("login rejected")
			return account.Account{}, svcerrors.Unauthorized("invalid credentials")
		}
		s.log.WithError(err).Error("find account by credentials")
		return account.Account{}, svcerrors.StoreFailure("login", err)
	}

	s.log.WithField("account_id", found.ID).Debug("login succeeded")
	return found, nil
}
