package middleware

import (
	"net/http"
	"strings"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey   = "user_id"  // string (uuid)
	CtxUsernameKey = "username" // string
	CtxClaimsKey   = "claims"   // *usecase.AccessClaims
)

// bearerAuth用のJWT検証ミドルウェア。
// 検証そのものはTokenServiceに寄せる（署名と期限のみ、サーバー側照合なし）
func AuthJWT(tokens *usecase.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			// Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := tokens.ParseAccessToken(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			// contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUsernameKey, claims.Username)
			c.Set(CtxClaimsKey, claims)

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// UserIDはmiddlewareが積んだ本人IDを取り出す
func UserID(c echo.Context) string {
	v, _ := c.Get(CtxUserIDKey).(string)
	return v
}
