package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/model"
	"github.com/iliyamo/social-media-api/internal/queue"
	"github.com/iliyamo/social-media-api/internal/service"
)

// MessageHandler serves the message routes. Accounts resolves posted_by
// before a message is created.
type MessageHandler struct {
	Messages *service.MessageService
	Accounts *service.AccountService
	Events   EventPublisher
	log      logging.Logger
}

// NewMessageHandler panics if either service is nil. events may be nil.
func NewMessageHandler(messages *service.MessageService, accounts *service.AccountService, events EventPublisher, log logging.Logger) *MessageHandler {
	if messages == nil || accounts == nil {
		panic("nil service passed to NewMessageHandler")
	}
	if log == nil {
		log = logging.Nop()
	}
	return &MessageHandler{Messages: messages, Accounts: accounts, Events: events, log: log}
}

// updateMessageReq only carries the text; other fields in the payload are
// ignored.
type updateMessageReq struct {
	MessageText string `json:"message_text"`
}

func (h *MessageHandler) CreateMessage(c echo.Context) error {
	var req model.Message
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx := c.Request().Context()

	acc, err := h.Accounts.GetByID(ctx, req.PostedBy)
	if errors.Is(err, service.ErrNotFound) {
		acc, err = nil, nil
	}
	if err != nil {
		return fail(c, h.log, "create_message", err)
	}

	msg, err := h.Messages.Create(ctx, req, acc)
	if err != nil {
		return fail(c, h.log, "create_message", err)
	}
	ok("create_message")

	ev := queue.NewEvent(queue.MessagePosted, msg.PostedBy)
	ev.MessageID = msg.ID
	ev.Text = msg.MessageText
	publish(c, h.Events, h.log, ev)
	return c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) ListMessages(c echo.Context) error {
	list, err := h.Messages.GetAll(c.Request().Context())
	if err != nil {
		return fail(c, h.log, "list_messages", err)
	}
	if list == nil {
		list = []model.Message{}
	}
	return c.JSON(http.StatusOK, list)
}

// GetMessage answers 200 with an empty body when the id is unknown.
func (h *MessageHandler) GetMessage(c echo.Context) error {
	id, err := parseID(c, "message_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message_id"})
	}
	msg, err := h.Messages.GetByID(c.Request().Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		return c.NoContent(http.StatusOK)
	}
	if err != nil {
		return fail(c, h.log, "get_message", err)
	}
	return c.JSON(http.StatusOK, msg)
}

// UpdateMessage replaces the text only; posted_by and the timestamp are kept.
func (h *MessageHandler) UpdateMessage(c echo.Context) error {
	id, err := parseID(c, "message_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message_id"})
	}
	var req updateMessageReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	msg, err := h.Messages.Update(c.Request().Context(), id, req.MessageText)
	if err != nil {
		return fail(c, h.log, "update_message", err)
	}
	ok("update_message")

	ev := queue.NewEvent(queue.MessageUpdated, msg.PostedBy)
	ev.MessageID = msg.ID
	ev.Text = msg.MessageText
	publish(c, h.Events, h.log, ev)
	return c.JSON(http.StatusOK, msg)
}

// DeleteMessage is idempotent: it answers 200 with the deleted message, or
// 200 with an empty body when there was nothing to delete.
func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	id, err := parseID(c, "message_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message_id"})
	}
	ctx := c.Request().Context()

	msg, err := h.Messages.GetByID(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		return c.NoContent(http.StatusOK)
	}
	if err != nil {
		return fail(c, h.log, "delete_message", err)
	}

	// a concurrent delete between the lookup and here is not an error
	if err := h.Messages.Delete(ctx, *msg); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.NoContent(http.StatusOK)
		}
		return fail(c, h.log, "delete_message", err)
	}
	ok("delete_message")

	ev := queue.NewEvent(queue.MessageDeleted, msg.PostedBy)
	ev.MessageID = msg.ID
	publish(c, h.Events, h.log, ev)
	return c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) ListMessagesByAccount(c echo.Context) error {
	id, err := parseID(c, "account_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account_id"})
	}
	list, err := h.Messages.GetByAccountID(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, "list_account_messages", err)
	}
	if list == nil {
		list = []model.Message{}
	}
	return c.JSON(http.StatusOK, list)
}
