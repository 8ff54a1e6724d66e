// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"sync"

	"github.com/R3E-Network/social_layer/internal/app/domain/account"
	"github.com/R3E-Network/social_layer/internal/app/domain/message"
	"github.com/R3E-Network/social_layer/internal/app/storage"
)

var (
	_ storage.AccountStore = (*FailingStore)(nil)
	_ storage.MessageStore = (*FailingStore)(nil)
	_ storage.Pinger       = (*FailingStore)(nil)
)

// FailingStore is a test implementation of every storage interface that
// returns Err from each call and records which methods were invoked.
type FailingStore struct {
	Err error

	mu    sync.Mutex
	calls []string
}

// NewFailingStore creates a store whose every operation fails with err.
func NewFailingStore(err error) *FailingStore {
	return &FailingStore{Err: err}
}

// Calls returns the invoked method names in call order.
func (f *FailingStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FailingStore) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.Err
}

func (f *FailingStore) Ping(context.Context) error {
	return f.record("Ping")
}

func (f *FailingStore) FindAccountByCredentials(context.Context, string, string) (account.Account, error) {
	return account.Account{}, f.record("FindAccountByCredentials")
}

func (f *FailingStore) InsertAccount(context.Context, account.Account) (account.Account, error) {
	return account.Account{}, f.record("InsertAccount")
}

func (f *FailingStore) DeleteAccount(context.Context, int) (account.Account, error) {
	return account.Account{}, f.record("DeleteAccount")
}

func (f *FailingStore) InsertMessage(context.Context, message.Message) (message.Message, error) {
	return message.Message{}, f.record("InsertMessage")
}

func (f *FailingStore) FindMessageByID(context.Context, int) (message.Message, error) {
	return message.Message{}, f.record("FindMessageByID")
}

func (f *FailingStore) FindAllMessages(context.Context) ([]message.Message, error) {
	return nil, f.record("FindAllMessages")
}

func (f *FailingStore) FindMessagesByAccount(context.Context, int) ([]message.Message, error) {
	return nil, f.record("FindMessagesByAccount")
}

func (f *FailingStore) UpdateMessageText(context.Context, int, string) (message.Message, error) {
	return message.Message{}, f.record("UpdateMessageText")
}

func (f *FailingStore) DeleteMessage(context.Context, int) (message.Message, error) {
	return message.Message{}, f.record("DeleteMessage")
}
