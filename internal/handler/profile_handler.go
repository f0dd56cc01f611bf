package handler

import (
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	profiles *usecase.ProfileUsecase
}

func NewProfileHandler(profiles *usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetはGET /api/profiles/:username
func (h *ProfileHandler) Get(c echo.Context) error {
	out, err := h.profiles.Get(c.Request().Context(), middleware.UserID(c), c.Param("username"))
	if err != nil {
		return writeUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
}

// UpdateはPUT /api/profiles（本人のみ）
func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if err := h.profiles.UpdateProfile(c.Request().Context(), middleware.UserID(c), req.DisplayName, req.Bio); err != nil {
		return writeUsecaseError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// FollowToggleはPOST /api/profiles/:username/follow
func (h *ProfileHandler) FollowToggle(c echo.Context) error {
	if err := h.profiles.FollowToggle(c.Request().Context(), middleware.UserID(c), c.Param("username")); err != nil {
		return writeUsecaseError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// ListFollowingsはGET /api/profiles/:username/follow?predicate=followers|following
func (h *ProfileHandler) ListFollowings(c echo.Context) error {
	out, err := h.profiles.ListFollowings(
		c.Request().Context(),
		middleware.UserID(c),
		c.Param("username"),
		c.QueryParam("predicate"),
	)
	if err != nil {
		return writeUsecaseError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
