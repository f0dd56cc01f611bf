package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ActivityHandler struct {
	activities *usecase.ActivityUsecase
	comments   *usecase.CommentUsecase
}

func NewActivityHandler(activities *usecase.ActivityUsecase, comments *usecase.CommentUsecase) *ActivityHandler {
	return &ActivityHandler{activities: activities, comments: comments}
}

// ListはGET /api/activities
func (h *ActivityHandler) List(c echo.Context) error {
	out, err := h.activities.List(c.Request().Context())
	if err != nil {
		return writeUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetはGET /api/activities/:id
func (h *ActivityHandler) Get(c echo.Context) error {
	out, err := h.activities.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// CreateはPOST /api/activities
func (h *ActivityHandler) Create(c echo.Context) error {
	var req usecase.ActivityInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	id, err := h.activities.Create(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// UpdateはPUT /api/activities/:id（hostのみ）
func (h *ActivityHandler) Update(c echo.Context) error {
	var req usecase.ActivityInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if err := h.activities.Update(c.Request().Context(), middleware.UserID(c), c.Param("id"), req); err != nil {
		return writeUsecaseError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// DeleteはDELETE /api/activities/:id（hostのみ）
func (h *ActivityHandler) Delete(c echo.Context) error {
	if err := h.activities.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return writeUsecaseError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// AttendはPOST /api/activities/:id/attend（参加トグル / hostはキャンセルトグル）
func (h *ActivityHandler) Attend(c echo.Context) error {
	if err := h.activities.UpdateAttendance(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return writeUsecaseError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// ListCommentsはGET /api/activities/:id/comments（realtimeと同じ昇順）
func (h *ActivityHandler) ListComments(c echo.Context) error {
	out, err := h.comments.List(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// handler間で共有するエラーマッピング
func writeUsecaseError(c echo.Context, err error) error {
	var fields usecase.FieldErrors
	if errors.As(err, &fields) {
		return c.JSON(http.StatusBadRequest, fieldErrorResponse{Errors: fields})
	}

	switch {
	case errors.Is(err, usecase.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	case errors.Is(err, usecase.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "BAD_REQUEST"})
	case errors.Is(err, usecase.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{Error: "FORBIDDEN"})
	case errors.Is(err, usecase.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "NOT_FOUND"})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "INTERNAL"})
	}
}
