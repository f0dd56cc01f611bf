package handler

import (
	"net/http"
	"time"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	auth         *usecase.AuthUsecase
	refreshTTL   time.Duration // refresh cookieの有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(auth *usecase.AuthUsecase, refreshTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type fieldErrorResponse struct {
	Errors usecase.FieldErrors `json:"errors"`
}

// LoginはPOST /api/account/login のハンドラ
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	out, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	// refresh tokenはscriptから読めないcookieで渡す
	h.setRefreshCookie(c, out.RefreshTokenPlain)

	return c.JSON(http.StatusOK, out.User)
}

// RegisterはPOST /api/account/register のハンドラ。
// 成功してもcredentialは返さない（メール確認が先）
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.RegisterInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	if err := h.auth.Register(c.Request().Context(), req); err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Registration success - please verify email",
	})
}

// VerifyEmailはPOST /api/account/verifyEmail のハンドラ
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	email := c.QueryParam("email")

	if err := h.auth.VerifyEmail(c.Request().Context(), email, token); err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Email confirmed - now you can login",
	})
}

// ResendEmailConfirmationLinkはGET /api/account/resendEmailConfirmationLink のハンドラ
func (h *AuthHandler) ResendEmailConfirmationLink(c echo.Context) error {
	email := c.QueryParam("email")

	if err := h.auth.ResendConfirmEmail(c.Request().Context(), email); err != nil {
		return writeUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Email verification link resent",
	})
}

type fbLoginRequest struct {
	AccessToken string `json:"accessToken"`
}

// FacebookLoginはPOST /api/account/fbLogin のハンドラ
func (h *AuthHandler) FacebookLogin(c echo.Context) error {
	var req fbLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "VALIDATION_ERROR"})
	}

	out, err := h.auth.FacebookLogin(c.Request().Context(), req.AccessToken)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	h.setRefreshCookie(c, out.RefreshTokenPlain)

	return c.JSON(http.StatusOK, out.User)
}

// RefreshはPOST /api/account/refreshToken のハンドラ。
// 有効なaccess tokenが前提（middleware通過済み）
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	}

	out, err := h.auth.Refresh(c.Request().Context(), middleware.UserID(c), cookie.Value)
	if err != nil {
		return writeUsecaseError(c, err)
	}

	// rotateされた新しいtokenでcookieを置き換える
	h.setRefreshCookie(c, out.RefreshTokenPlain)

	return c.JSON(http.StatusOK, out.User)
}

// LogoutはPOST /api/account/logout のハンドラ
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "UNAUTHORIZED"})
	}

	if err := h.auth.Logout(c.Request().Context(), middleware.UserID(c), cookie.Value); err != nil {
		return writeUsecaseError(c, err)
	}

	h.clearRefreshCookie(c)

	return c.JSON(http.StatusOK, map[string]string{"message": "logout success"})
}

// CurrentUserはGET /api/account のハンドラ
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	out, err := h.auth.CurrentUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return writeUsecaseError(c, err)
	}

	h.setRefreshCookie(c, out.RefreshTokenPlain)

	return c.JSON(http.StatusOK, out.User)
}

// refreshtokenをCookieにセット。期限はtoken側と揃える
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.refreshTTL),
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
