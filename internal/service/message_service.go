package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/model"
	"github.com/iliyamo/social-media-api/internal/repository"
)

type MessageService struct {
	store MessageStore
	log   logging.Logger
}

func NewMessageService(store MessageStore, log logging.Logger) *MessageService {
	if log == nil {
		log = logging.Nop()
	}
	return &MessageService{store: store, log: log.With("component", "message_service")}
}

// Create stores msg on behalf of account, the caller's already-resolved
// poster (nil when msg.PostedBy matched no account). Only the account
// itself may post as itself.
func (s *MessageService) Create(ctx context.Context, msg model.Message, account *model.Account) (*model.Message, error) {
	s.log.Info(ctx, "create message", "posted_by", msg.PostedBy)

	if account == nil {
		return nil, ruleError(ErrValidation, "account must exist when posting a message")
	}
	if err := validateText(msg.MessageText); err != nil {
		return nil, err
	}
	if account.ID != msg.PostedBy {
		return nil, ruleError(ErrForbidden, "account not authorized to modify this message")
	}

	out, err := s.store.Insert(ctx, msg)
	if err != nil {
		return nil, wrap("creating message", err)
	}
	return out, nil
}

// Update replaces the text of message id and returns the stored message.
// PostedBy and TimePostedEpoch of the existing row are kept.
//
// Load and write are separate statements; a concurrent edit between them
// is overwritten.
func (s *MessageService) Update(ctx context.Context, id int64, text string) (*model.Message, error) {
	s.log.Info(ctx, "update message", "message_id", id)

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.MessageText = text
	if err := validateText(existing.MessageText); err != nil {
		return nil, err
	}
	ok, err := s.store.Update(ctx, *existing)
	if err != nil {
		return nil, wrap("updating message", err)
	}
	if !ok {
		// deleted between load and write
		return nil, ruleError(ErrNotFound, "message not found")
	}
	return existing, nil
}

// Delete removes msg and returns ErrNotFound when no row was removed.
func (s *MessageService) Delete(ctx context.Context, msg model.Message) error {
	s.log.Info(ctx, "delete message", "message_id", msg.ID)

	ok, err := s.store.Delete(ctx, msg.ID)
	if err != nil {
		return wrap("deleting message", err)
	}
	if !ok {
		return ruleError(ErrNotFound, "message to delete not found")
	}
	return nil
}

// GetByID returns message id or ErrNotFound.
func (s *MessageService) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	s.log.Info(ctx, "fetch message", "message_id", id)
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ruleError(ErrNotFound, "message not found")
		}
		return nil, wrap("fetching message", err)
	}
	return m, nil
}

func (s *MessageService) GetAll(ctx context.Context) ([]model.Message, error) {
	s.log.Info(ctx, "fetch all messages")
	out, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, wrap("fetching messages", err)
	}
	return out, nil
}

// GetByAccountID lists messages posted by accountID. Any caller may read
// any account's messages.
func (s *MessageService) GetByAccountID(ctx context.Context, accountID int64) ([]model.Message, error) {
	s.log.Info(ctx, "fetch messages by account", "account_id", accountID)
	out, err := s.store.GetByPoster(ctx, accountID)
	if err != nil {
		return nil, wrap("fetching messages by account id", err)
	}
	return out, nil
}

// validateText enforces 1..MaxMessageLength characters with at least one
// non-space.
func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ruleError(ErrValidation, "message text cannot be empty")
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return ruleError(ErrValidation, "message text cannot exceed 254 characters")
	}
	return nil
}
