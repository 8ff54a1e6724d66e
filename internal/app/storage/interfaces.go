package storage

import (
	"context"
	"errors"

	"github.com/R3E-Network/social_layer/internal/app/domain/account"
	"github.com/R3E-Network/social_layer/internal/app/domain/message"
)

var (
	// ErrNotFound is returned when a statement executed successfully but
	// matched zero rows.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is returned when the store refused a write because of an
	// integrity constraint (unique username, message author reference).
	ErrConstraint = errors.New("constraint violation")
)

// Any other error returned by a store is a store failure.

// AccountStore persists account records. Implementations perform no business
// validation.
type AccountStore interface {
	FindAccountByCredentials(ctx context.Context, username, password string) (account.Account, error)
	InsertAccount(ctx context.Context, acct account.Account) (account.Account, error)
	DeleteAccount(ctx context.Context, id int) (account.Account, error)
}

// MessageStore persists message records. Implementations perform no business
// validation.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg message.Message) (message.Message, error)
	FindMessageByID(ctx context.Context, id int) (message.Message, error)
	FindAllMessages(ctx context.Context) ([]message.Message, error)
	FindMessagesByAccount(ctx context.Context, accountID int) ([]message.Message, error)
	UpdateMessageText(ctx context.Context, id int, text string) (message.Message, error)
	DeleteMessage(ctx context.Context, id int) (message.Message, error)
}

// Pinger is implemented by stores that can report their own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
