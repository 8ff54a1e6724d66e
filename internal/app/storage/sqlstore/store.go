// Package sqlstore implements the storage interfaces on a relational database
// (PostgreSQL or SQLite) through sqlx. Queries are written with '?' and rebound
// to the driver's placeholder style.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/R3E-Network/social_layer/internal/app/domain/account"
	"github.com/R3E-Network/social_layer/internal/app/domain/message"
	"github.com/R3E-Network/social_layer/internal/app/storage"
	"github.com/R3E-Network/social_layer/internal/platform/database"
)

// Store implements the storage interfaces backed by a SQL database.
type Store struct {
	db *sqlx.DB
}

var _ storage.AccountStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const messageColumns = `message_id, posted_by, message_text, time_posted_epoch`

// --- AccountStore -----------------------------------------------------------

func (s *Store) FindAccountByCredentials(ctx context.Context, username, password string) (account.Account, error) {
	var acct account.Account
	err := s.db.GetContext(ctx, &acct, s.db.Rebind(`
		SELECT account_id, username, password
		FROM account
		WHERE username = ? AND password = ?
		ORDER BY account_id
		LIMIT 1
	`), username, password)
	if err != nil {
		return account.Account{}, translate("select account", err)
	}
	return acct, nil
}

func (s *Store) InsertAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO account (username, password)
		VALUES (?, ?)
		RETURNING account_id
	`), acct.Username, acct.Password).Scan(&acct.ID)
	if err != nil {
		return account.Account{}, translate("insert account", err)
	}
	return acct, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id int) (account.Account, error) {
	var acct account.Account
	err := s.db.GetContext(ctx, &acct, s.db.Rebind(`
		DELETE FROM account
		WHERE account_id = ?
		RETURNING account_id, username, password
	`), id)
	if err != nil {
		return account.Account{}, translate("delete account", err)
	}
	return acct, nil
}

// --- MessageStore -----------------------------------------------------------

func (s *Store) InsertMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO message (posted_by, message_text, time_posted_epoch)
		VALUES (?, ?, ?)
		RETURNING message_id
	`), msg.PostedBy, msg.Text, msg.TimePostedEpoch).Scan(&msg.ID)
	if err != nil {
		return message.Message{}, translate("insert message", err)
	}
	return msg, nil
}

func (s *Store) FindMessageByID(ctx context.Context, id int) (message.Message, error) {
	var msg message.Message
	err := s.db.GetContext(ctx, &msg, s.db.Rebind(`
		SELECT `+messageColumns+`
		FROM message
		WHERE message_id = ?
	`), id)
	if err != nil {
		return message.Message{}, translate("select message", err)
	}
	return msg, nil
}

func (s *Store) FindAllMessages(ctx context.Context) ([]message.Message, error) {
	msgs := []message.Message{}
	err := s.db.SelectContext(ctx, &msgs, `
		SELECT `+messageColumns+`
		FROM message
		ORDER BY message_id
	`)
	if err != nil {
		return nil, translate("select messages", err)
	}
	return msgs, nil
}

func (s *Store) FindMessagesByAccount(ctx context.Context, accountID int) ([]message.Message, error) {
	msgs := []message.Message{}
	err := s.db.SelectContext(ctx, &msgs, s.db.Rebind(`
		SELECT `+messageColumns+`
		FROM message
		WHERE posted_by = ?
		ORDER BY message_id
	`), accountID)
	if err != nil {
		return nil, translate("select account messages", err)
	}
	return msgs, nil
}

// UpdateMessageText rewrites the text in a single statement and returns the
// row as persisted.
func (s *Store) UpdateMessageText(ctx context.Context, id int, text string) (message.Message, error) {
	var msg message.Message
	err := s.db.GetContext(ctx, &msg, s.db.Rebind(`
		UPDATE message
		SET message_text = ?
		WHERE message_id = ?
		RETURNING `+messageColumns), text, id)
	if err != nil {
		return message.Message{}, translate("update message", err)
	}
	return msg, nil
}

// DeleteMessage removes the row in a single statement and returns it as it was
// immediately before deletion.
func (s *Store) DeleteMessage(ctx context.Context, id int) (message.Message, error) {
	var msg message.Message
	err := s.db.GetContext(ctx, &msg, s.db.Rebind(`
		DELETE FROM message
		WHERE message_id = ?
		RETURNING `+messageColumns), id)
	if err != nil {
		return message.Message{}, translate("delete message", err)
	}
	return msg, nil
}

// translate maps driver errors onto the storage error contract.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotFound
	case database.IsConstraintViolation(err):
		return fmt.Errorf("%s: %w: %w", op, storage.ErrConstraint, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
