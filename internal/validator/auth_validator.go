package validator

import (
	"context"
	"regexp"
	"strings"

	"app/internal/usecase"
)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, displayName, email, password, username string) error {
	fields := usecase.FieldErrors{}

	if strings.TrimSpace(displayName) == "" {
		fields["displayName"] = "Display name is required"
	}

	email = strings.TrimSpace(email)
	if email == "" || !isEmailLike(email) {
		fields["email"] = "A valid email is required"
	}

	// パスワード最低文字数（8）
	if len(password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}

	username = strings.TrimSpace(username)
	if username == "" || !isUsernameLike(username) {
		fields["username"] = "Username must be alphanumeric"
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return usecase.ErrValidation
	}

	// email形式
	if !isEmailLike(email) {
		return usecase.ErrValidation
	}

	return nil
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}

func isUsernameLike(s string) bool {
	return usernameRe.MatchString(s)
}
