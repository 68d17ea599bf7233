package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/KikeGitHub/lealtix-main/internal/catalog"
	"github.com/KikeGitHub/lealtix-main/internal/models"
	"github.com/KikeGitHub/lealtix-main/internal/usecase"
)

type Controller interface {
	OpenSession(c echo.Context) error
	GetSession(c echo.Context) error
	PostMessage(c echo.Context) error
	PostQuickReply(c echo.Context) error
	CloseSession(c echo.Context) error
	Health(c echo.Context) error
}

type controller struct {
	dialog usecase.DialogUsecase
}

func NewHandler(dialog usecase.DialogUsecase) Controller {
	return &controller{
		dialog: dialog,
	}
}

type OpenSessionRequest struct {
	TenantID int64 `json:"tenantId" validate:"required,gt=0"`
}

type PostMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type PostQuickReplyRequest struct {
	Value string `json:"value" validate:"required"`
}

func (h *controller) OpenSession(c echo.Context) error {
	var req OpenSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	session, err := h.dialog.Open(ctx, req.TenantID)
	if err != nil {
		return sessionError(err)
	}

	return c.JSON(http.StatusCreated, session)
}

func (h *controller) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	session, err := h.dialog.Get(ctx, c.Param("id"))
	if err != nil {
		return sessionError(err)
	}

	return c.JSON(http.StatusOK, session)
}

func (h *controller) PostMessage(c echo.Context) error {
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	session, err := h.dialog.HandleText(ctx, c.Param("id"), req.Text)
	if err != nil {
		return sessionError(err)
	}

	return c.JSON(http.StatusOK, session)
}

func (h *controller) PostQuickReply(c echo.Context) error {
	var req PostQuickReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	session, err := h.dialog.HandleQuickReply(ctx, c.Param("id"), req.Value)
	if err != nil {
		return sessionError(err)
	}

	return c.JSON(http.StatusOK, session)
}

func (h *controller) CloseSession(c echo.Context) error {
	ctx := c.Request().Context()
	session, err := h.dialog.Close(ctx, c.Param("id"))
	if err != nil {
		return sessionError(err)
	}

	return c.JSON(http.StatusOK, session)
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "lealbot",
	})
}

// sessionError maps domain errors to HTTP statuses. A busy session is
// a conflict the widget should retry; a closed one is gone for good.
func sessionError(err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	case errors.Is(err, models.ErrSessionBusy):
		return echo.NewHTTPError(http.StatusConflict, catalog.SessionBusy.Text)
	case errors.Is(err, models.ErrSessionClosed):
		return echo.NewHTTPError(http.StatusGone, "session is closed")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
