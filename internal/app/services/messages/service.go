package messages

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/R3E-Network/social_layer/internal/app/domain/message"
	"github.com/R3E-Network/social_layer/internal/app/metrics"
	"github.com/R3E-Network/social_layer/internal/app/storage"
	svcerrors "github.com/R3E-Network/social_layer/internal/errors"
	"github.com/R3E-Network/social_layer/pkg/logger"
)

var validate = validator.New()

// Service applies the message rules in front of the message store.
type Service struct {
	store storage.MessageStore
	log   *logger.Logger
}

// New constructs a message service.
func New(store storage.MessageStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("messages")
	}
	return &Service{store: store, log: log}
}

// Create stores a message whose text has between 1 and 254 characters. The
// author is not checked here; the store refuses unknown authors.
func (s *Service) Create(ctx context.Context, candidate message.Message) (created message.Message, err error) {
	defer func() { metrics.RecordMessageOperation("create", err) }()

	candidate.ID = 0
	if err := validate.Struct(candidate); err != nil {
		s.log.WithField("posted_by", candidate.PostedBy).WithError(err).Debug("message rejected")
		return message.Message{}, svcerrors.Validation("invalid message", err)
	}

	created, err = s.store.InsertMessage(ctx, candidate)
	if err != nil {
		return message.Message{}, s.writeError("create message", err)
	}

	s.log.WithField("message_id", created.ID).
		WithField("posted_by", created.PostedBy).
		Info("message created")
	return created, nil
}

// Get returns a single message.
func (s *Service) Get(ctx context.Context, id int) (msg message.Message, err error) {
	defer func() { metrics.RecordMessageOperation("get", err) }()

	msg, err = s.store.FindMessageByID(ctx, id)
	if err != nil {
		return message.Message{}, s.readError("get message", id, err)
	}
	return msg, nil
}

// List returns every message in id order.
func (s *Service) List(ctx context.Context) (msgs []message.Message, err error) {
	defer func() { metrics.RecordMessageOperation("list", err) }()

	msgs, err = s.store.FindAllMessages(ctx)
	if err != nil {
		s.log.WithError(err).Error("list messages")
		return nil, svcerrors.StoreFailure("list messages", err)
	}
	return msgs, nil
}

// ListByAccount returns the messages posted by accountID in id order.
func (s *Service) ListByAccount(ctx context.Context, accountID int) (msgs []message.Message, err error) {
	defer func() { metrics.RecordMessageOperation("list_by_account", err) }()

	msgs, err = s.store.FindMessagesByAccount(ctx, accountID)
	if err != nil {
		s.log.WithField("account_id", accountID).WithError(err).Error("list account messages")
		return nil, svcerrors.StoreFailure("list account messages", err)
	}
	return msgs, nil
}

// UpdateText replaces the text of an existing message. Only the text changes;
// the returned message is the row as persisted.
func (s *Service) UpdateText(ctx context.Context, id int, text string) (updated message.Message, err error) {
	defer func() { metrics.RecordMessageOperation("update", err) }()

	if err := validate.Struct(message.Message{Text: text}); err != nil {
		s.log.WithField("message_id", id).WithError(err).Debug("message update rejected")
		return message.Message{}, svcerrors.Validation("invalid message text", err)
	}

	updated, err = s.store.UpdateMessageText(ctx, id, text)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.WithField("message_id", id).Info("message update rejected: not found")
			return message.Message{}, svcerrors.NotFound("message", id)
		}
		return message.Message{}, s.writeError("update message", err)
	}

	s.log.WithField("message_id", updated.ID).Info("message updated")
	return updated, nil
}

// Delete removes a message and returns it as it was before removal.
func (s *Service) Delete(ctx context.Context, id int) (deleted message.Message, err error) {
	defer func() { metrics.RecordMessageOperation("delete", err) }()

	deleted, err = s.store.DeleteMessage(ctx, id)
	if err != nil {
		return message.Message{}, s.readError("delete message", id, err)
	}

	s.log.WithField("message_id", deleted.ID).Info("message deleted")
	return deleted, nil
}

func (s *Service) readError(op string, id int, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return svcerrors.NotFound("message", id)
	}
	s.log.WithField("message_id", id).WithError(err).Error(op)
	return svcerrors.StoreFailure(op, err)
}

func (s *Service) writeError(op string, err error) error {
	if errors.Is(err, storage.ErrConstraint) {
		s.log.WithError(err).Info(op + " refused by store constraint")
		return svcerrors.Conflict(op+" refused", err)
	}
	s.log.WithError(err).Error(op)
	return svcerrors.StoreFailure(op, err)
}
