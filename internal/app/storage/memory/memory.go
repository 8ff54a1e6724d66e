package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/R3E-Network/social_layer/internal/app/domain/account"
	"github.com/R3E-Network/social_layer/internal/app/domain/message"
	"github.com/R3E-Network/social_layer/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It mirrors
// the relational schema's constraints (unique username, message author must
// exist) and is safe for concurrent use. It is primarily intended for tests and
// local development.
type Store struct {
	mu            sync.RWMutex
	nextAccountID int
	nextMessageID int
	accounts      map[int]account.Account
	messages      map[int]message.Message
}

var _ storage.AccountStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextAccountID: 1,
		nextMessageID: 1,
		accounts:      make(map[int]account.Account),
		messages:      make(map[int]message.Message),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// AccountStore implementation -------------------------------------------------

func (s *Store) FindAccountByCredentials(_ context.Context, username, password string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acct := range s.sortedAccountsLocked() {
		if acct.Username == username && acct.Password == password {
			return acct, nil
		}
	}
	return account.Account{}, storage.ErrNotFound
}

func (s *Store) InsertAccount(_ context.Context, acct account.Account) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := lo.ContainsBy(lo.Values(s.accounts), func(existing account.Account) bool {
		return existing.Username == acct.Username
	})
	if taken {
		return account.Account{}, fmt.Errorf("username %q: %w", acct.Username, storage.ErrConstraint)
	}

	acct.ID = s.nextAccountID
	s.nextAccountID++
	s.accounts[acct.ID] = acct
	return acct, nil
}

func (s *Store) DeleteAccount(_ context.Context, id int) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return account.Account{}, storage.ErrNotFound
	}
	referenced := lo.ContainsBy(lo.Values(s.messages), func(msg message.Message) bool {
		return msg.PostedBy == id
	})
	if referenced {
		return account.Account{}, fmt.Errorf("account %d has messages: %w", id, storage.ErrConstraint)
	}
	delete(s.accounts, id)
	return acct, nil
}

// MessageStore implementation -------------------------------------------------

func (s *Store) InsertMessage(_ context.Context, msg message.Message) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[msg.PostedBy]; !ok {
		return message.Message{}, fmt.Errorf("posted_by %d: %w", msg.PostedBy, storage.ErrConstraint)
	}

	msg.ID = s.nextMessageID
	s.nextMessageID++
	s.messages[msg.ID] = msg
	return msg, nil
}

func (s *Store) FindMessageByID(_ context.Context, id int) (message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return message.Message{}, storage.ErrNotFound
	}
	return msg, nil
}

func (s *Store) FindAllMessages(_ context.Context) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedMessagesLocked(), nil
}

func (s *Store) FindMessagesByAccount(_ context.Context, accountID int) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Filter(s.sortedMessagesLocked(), func(msg message.Message, _ int) bool {
		return msg.PostedBy == accountID
	}), nil
}

func (s *Store) UpdateMessageText(_ context.Context, id int, text string) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return message.Message{}, storage.ErrNotFound
	}
	msg.Text = text
	s.messages[id] = msg
	return msg, nil
}

func (s *Store) DeleteMessage(_ context.Context, id int) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[id]
	if !ok {
		return message.Message{}, storage.ErrNotFound
	}
	delete(s.messages, id)
	return msg, nil
}

// sortedMessagesLocked returns messages in insertion (id) order, never nil.
func (s *Store) sortedMessagesLocked() []message.Message {
	out := lo.Values(s.messages)
	slices.SortFunc(out, func(a, b message.Message) int { return a.ID - b.ID })
	if out == nil {
		out = []message.Message{}
	}
	return out
}

func (s *Store) sortedAccountsLocked() []account.Account {
	out := lo.Values(s.accounts)
	slices.SortFunc(out, func(a, b account.Account) int { return a.ID - b.ID })
	return out
}
