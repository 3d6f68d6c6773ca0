package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-media-api/internal/logging"
	"github.com/iliyamo/social-media-api/internal/model"
	"github.com/iliyamo/social-media-api/internal/queue"
	"github.com/iliyamo/social-media-api/internal/service"
)

// AccountHandler serves registration, login and the account admin routes.
type AccountHandler struct {
	Accounts *service.AccountService
	Events   EventPublisher
	log      logging.Logger
}

// NewAccountHandler panics if accounts is nil. events may be nil.
func NewAccountHandler(accounts *service.AccountService, events EventPublisher, log logging.Logger) *AccountHandler {
	if accounts == nil {
		panic("nil service passed to NewAccountHandler")
	}
	if log == nil {
		log = logging.Nop()
	}
	return &AccountHandler{Accounts: accounts, Events: events, log: log}
}

// Register creates an account and returns it with its new id.
func (h *AccountHandler) Register(c echo.Context) error {
	var req model.Account
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	acc, err := h.Accounts.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, "register", err)
	}
	ok("register")

	ev := queue.NewEvent(queue.AccountRegistered, acc.ID)
	ev.Username = acc.Username
	publish(c, h.Events, h.log, ev)
	return c.JSON(http.StatusOK, acc)
}

// Login returns the stored account when the credentials match exactly.
func (h *AccountHandler) Login(c echo.Context) error {
	var req model.Account
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	acc, err := h.Accounts.Login(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, "login", err)
	}
	ok("login")
	return c.JSON(http.StatusOK, acc)
}

func (h *AccountHandler) ListAccounts(c echo.Context) error {
	list, err := h.Accounts.GetAll(c.Request().Context())
	if err != nil {
		return fail(c, h.log, "list_accounts", err)
	}
	if list == nil {
		list = []model.Account{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	id, err := parseID(c, "account_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account_id"})
	}
	acc, err := h.Accounts.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, "get_account", err)
	}
	return c.JSON(http.StatusOK, acc)
}

// UpdateAccount replaces username and password of the account in the path.
// The id in the body, if any, is ignored.
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	id, err := parseID(c, "account_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account_id"})
	}
	var req model.Account
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.ID = id
	updated, err := h.Accounts.Update(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, "update_account", err)
	}
	if !updated {
		return fail(c, h.log, "update_account", service.ErrNotFound)
	}
	ok("update_account")
	return c.JSON(http.StatusOK, req)
}

// DeleteAccount removes the account and, through the foreign key, its
// messages. A non-numeric id reaches the service as an absent id.
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	var id sql.NullInt64
	if n, err := parseID(c, "account_id"); err == nil {
		id = sql.NullInt64{Int64: n, Valid: true}
	}
	deleted, err := h.Accounts.Delete(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.log, "delete_account", err)
	}
	if !deleted {
		return fail(c, h.log, "delete_account", service.ErrNotFound)
	}
	ok("delete_account")
	return c.NoContent(http.StatusNoContent)
}
