package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaimsはaccess tokenから取り出す本人情報
type AccessClaims struct {
	UserID      string
	Username    string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
}

// TokenServiceはaccess token（JWT）の発行/検証とrefresh tokenの生成を担当する。
// 状態は署名キーとTTLだけなので並行利用はそのまま安全
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// 署名キーが空のまま起動させない（リクエスト毎に落ちても直らないため）
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token service: signing secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = 10 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// CreateAccessTokenはHS256で署名したJWTを発行する。
// issuer/audienceは検証しない方針なので付けない
func (s *TokenService) CreateAccessToken(user *model.User) (string, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)

	claims := jwt.MapClaims{
		"sub":         user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"iat":         now.Unix(),
		"exp":         exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// ParseAccessTokenは署名と期限だけで検証する（サーバー側の照合なし）
func (s *TokenService) ParseAccessToken(raw string) (*AccessClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	if sub == "" || username == "" {
		return nil, ErrUnauthorized
	}

	out := &AccessClaims{
		UserID:   sub,
		Username: username,
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	if v, ok := claims["displayName"].(string); ok {
		out.DisplayName = v
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	return out, nil
}

// GenerateRefreshTokenは32バイトの乱数からトークンを作る。
// 平文はcookieでクライアントへ、DBにはhashだけを置く
func (s *TokenService) GenerateRefreshToken(userID string) (plain string, token *model.RefreshToken, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", nil, err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)
	now := time.Now()

	token = &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: HashToken(plain),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}

	return plain, token, nil
}

// HashTokenは平文トークンの保存用hash（決定的なのでWHERE句でそのまま照合できる）
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
