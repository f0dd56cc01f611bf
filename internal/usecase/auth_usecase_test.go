package usecase

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// =====================
// Mock: RefreshTokenRepository
// =====================

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Append(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByUserAndHash(ctx context.Context, userID string, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, userID, tokenHash)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenID string, revokedAt time.Time, replacedByID string) error {
	args := m.Called(ctx, tokenID, revokedAt, replacedByID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) ListByUser(ctx context.Context, userID string) ([]model.RefreshToken, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.RefreshToken)
	return list, args.Error(1)
}

// =====================
// Mock: AuthValidator / FacebookVerifier / EmailSender
// =====================

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateRegister(ctx context.Context, displayName, email, password, username string) error {
	args := m.Called(ctx, displayName, email, password, username)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

type MockFacebookVerifier struct {
	mock.Mock
}

func (m *MockFacebookVerifier) Verify(ctx context.Context, accessToken string) (*FacebookProfile, error) {
	args := m.Called(ctx, accessToken)
	p, _ := args.Get(0).(*FacebookProfile)
	return p, args.Error(1)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to string, subject string, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// =====================
// helpers
// =====================

type authFixture struct {
	uc       *AuthUsecase
	users    *MockUserRepository
	rtRepo   *MockRefreshTokenRepository
	valid    *MockAuthValidator
	facebook *MockFacebookVerifier
	mailer   *MockEmailSender
	tokens   *TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	valid := new(MockAuthValidator)
	fb := new(MockFacebookVerifier)
	mailer := new(MockEmailSender)
	tokens := newTestTokenService(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := NewAuthUsecase(users, rtRepo, tokens, valid, fb, mailer, log, "http://localhost:3000")

	return &authFixture{
		uc:       uc,
		users:    users,
		rtRepo:   rtRepo,
		valid:    valid,
		facebook: fb,
		mailer:   mailer,
		tokens:   tokens,
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func confirmedUser(t *testing.T) *model.User {
	return &model.User{
		ID:             "11111111-1111-1111-1111-111111111111",
		Username:       "alice",
		DisplayName:    "Alice",
		Email:          "alice@example.com",
		PasswordHash:   hashPassword(t, "password123"),
		EmailConfirmed: true,
	}
}

// =====================
// Login
// =====================

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)

	f.valid.On("ValidateLogin", ctx, user.Email, "password123").Return(nil)
	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)

	var appended *model.RefreshToken
	f.rtRepo.On("Append", ctx, mock.Anything).Run(func(args mock.Arguments) {
		appended = args.Get(1).(*model.RefreshToken)
	}).Return(nil)

	out, err := f.uc.Login(ctx, user.Email, "password123")
	require.NoError(t, err)

	// 返ったaccess tokenのclaimsが本人と一致する
	claims, err := f.tokens.ParseAccessToken(out.User.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Email, claims.Email)

	// 台帳にactiveなrefresh tokenが1件追記される
	f.rtRepo.AssertNumberOfCalls(t, "Append", 1)
	require.NotNil(t, appended)
	assert.Equal(t, user.ID, appended.UserID)
	assert.True(t, appended.Active(time.Now()))
	assert.Equal(t, HashToken(out.RefreshTokenPlain), appended.TokenHash)
}

func TestLogin_UnknownEmail_Unauthorized(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.valid.On("ValidateLogin", ctx, "nobody@example.com", "password123").Return(nil)
	f.users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, nil)

	_, err := f.uc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_UnconfirmedEmail_Unauthorized(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)
	user.EmailConfirmed = false

	f.valid.On("ValidateLogin", ctx, user.Email, "password123").Return(nil)
	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)

	_, err := f.uc.Login(ctx, user.Email, "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)
	f.rtRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// 固定テストアカウントだけは未確認でもログインできる（既存挙動を維持）
func TestLogin_TestAccountBypassesConfirmation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := confirmedUser(t)
	user.Username = "bob"
	user.Email = "bob@example.com"
	user.EmailConfirmed = false

	f.valid.On("ValidateLogin", ctx, user.Email, "password123").Return(nil)
	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
	f.rtRepo.On("Append", ctx, mock.Anything).Return(nil)

	out, err := f.uc.Login(ctx, user.Email, "password123")
	require.NoError(t, err)
	assert.Equal(t, "bob", out.User.Username)
}

func TestLogin_WrongPassword_Unauthorized(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)

	f.valid.On("ValidateLogin", ctx, user.Email, "wrongpassword").Return(nil)
	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)

	_, err := f.uc.Login(ctx, user.Email, "wrongpassword")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// =====================
// Register
// =====================

func TestRegister_DuplicateEmailAndUsername_BothReported(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	existing := confirmedUser(t)

	in := RegisterInput{
		DisplayName: "Alice Two",
		Email:       existing.Email,
		Password:    "password123",
		Username:    existing.Username,
	}

	f.valid.On("ValidateRegister", ctx, in.DisplayName, in.Email, in.Password, in.Username).Return(nil)
	f.users.On("FindByEmail", ctx, in.Email).Return(existing, nil)
	f.users.On("FindByUsername", ctx, in.Username).Return(existing, nil)

	err := f.uc.Register(ctx, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	// 片方だけでなく両方のフィールドが報告される
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "username")
}

func TestRegister_DuplicateEmailOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	existing := confirmedUser(t)

	in := RegisterInput{
		DisplayName: "New User",
		Email:       existing.Email,
		Password:    "password123",
		Username:    "newuser",
	}

	f.valid.On("ValidateRegister", ctx, in.DisplayName, in.Email, in.Password, in.Username).Return(nil)
	f.users.On("FindByEmail", ctx, in.Email).Return(existing, nil)
	f.users.On("FindByUsername", ctx, in.Username).Return(nil, nil)

	err := f.uc.Register(ctx, in)
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "email")
	assert.NotContains(t, fields, "username")
}

func TestRegister_Success_SendsConfirmationAndNoCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	in := RegisterInput{
		DisplayName: "Carol",
		Email:       "carol@example.com",
		Password:    "password123",
		Username:    "carol",
	}

	f.valid.On("ValidateRegister", ctx, in.DisplayName, in.Email, in.Password, in.Username).Return(nil)
	f.users.On("FindByEmail", ctx, in.Email).Return(nil, nil)
	f.users.On("FindByUsername", ctx, in.Username).Return(nil, nil)

	var created *model.User
	f.users.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
	}).Return(nil)
	f.users.On("Update", ctx, mock.Anything).Return(nil)

	var sentBody string
	f.mailer.On("SendEmail", ctx, in.Email, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sentBody = args.Get(3).(string)
	}).Return(nil)

	err := f.uc.Register(ctx, in)
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.False(t, created.EmailConfirmed)
	assert.NotEqual(t, in.Password, created.PasswordHash)
	assert.Contains(t, sentBody, "verifyEmail")

	// credentialは一切発行されない
	f.rtRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// =====================
// VerifyEmail
// =====================

func TestVerifyEmail_Success_ConsumesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	raw := "some-confirmation-token"
	hash := HashToken(raw)
	user := confirmedUser(t)
	user.EmailConfirmed = false
	user.ConfirmTokenHash = &hash

	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)
	f.users.On("Update", ctx, mock.Anything).Return(nil)

	encoded := base64.RawURLEncoding.EncodeToString([]byte(raw))
	err := f.uc.VerifyEmail(ctx, user.Email, encoded)
	require.NoError(t, err)

	assert.True(t, user.EmailConfirmed)
	// 一回きり：成功したらhashは消える
	assert.Nil(t, user.ConfirmTokenHash)
}

func TestVerifyEmail_WrongToken_BadRequest(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	hash := HashToken("the-real-token")
	user := confirmedUser(t)
	user.EmailConfirmed = false
	user.ConfirmTokenHash = &hash

	f.users.On("FindByEmail", ctx, user.Email).Return(user, nil)

	encoded := base64.RawURLEncoding.EncodeToString([]byte("a-different-token"))
	err := f.uc.VerifyEmail(ctx, user.Email, encoded)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.False(t, user.EmailConfirmed)
}

// アカウントの存在を漏らさない：not foundでもUnauthorized
func TestVerifyEmail_UnknownUser_Unauthorized(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

	encoded := base64.RawURLEncoding.EncodeToString([]byte("whatever"))
	err := f.uc.VerifyEmail(ctx, "ghost@example.com", encoded)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// =====================
// FacebookLogin
// =====================

func TestFacebookLogin_NewUser_CreatedConfirmedWithPhoto(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	profile := &FacebookProfile{
		ID:         "fb123456",
		Name:       "Dave FB",
		Email:      "dave@example.com",
		PictureURL: "https://graph.example.com/avatar.jpg",
	}

	f.facebook.On("Verify", ctx, "provider-token").Return(profile, nil)
	f.users.On("FindByUsername", ctx, profile.ID).Return(nil, nil)

	var created *model.User
	f.users.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
	}).Return(nil)
	f.rtRepo.On("Append", ctx, mock.Anything).Return(nil)

	out, err := f.uc.FacebookLogin(ctx, "provider-token")
	require.NoError(t, err)

	require.NotNil(t, created)
	// providerがメール確認済みなので確認フローを踏まない
	assert.True(t, created.EmailConfirmed)
	assert.Equal(t, profile.ID, created.Username)
	require.Len(t, created.Photos, 1)
	assert.Equal(t, "fb_"+profile.ID, created.Photos[0].ID)
	assert.True(t, created.Photos[0].IsMain)

	assert.NotEmpty(t, out.User.Token)
	assert.NotEmpty(t, out.RefreshTokenPlain)
}

// 既存ユーザーでもLoginと同様にrefresh tokenを発行する
func TestFacebookLogin_ExistingUser_StillIssuesRefresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user := confirmedUser(t)
	user.Username = "fb123456"

	f.facebook.On("Verify", ctx, "provider-token").Return(&FacebookProfile{
		ID:    "fb123456",
		Name:  user.DisplayName,
		Email: user.Email,
	}, nil)
	f.users.On("FindByUsername", ctx, "fb123456").Return(user, nil)
	f.rtRepo.On("Append", ctx, mock.Anything).Return(nil)

	out, err := f.uc.FacebookLogin(ctx, "provider-token")
	require.NoError(t, err)
	assert.NotEmpty(t, out.RefreshTokenPlain)
	f.rtRepo.AssertNumberOfCalls(t, "Append", 1)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFacebookLogin_VerificationFails_NoUserCreated(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.facebook.On("Verify", ctx, "bad-token").Return(nil, ErrUnauthorized)

	_, err := f.uc.FacebookLogin(ctx, "bad-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.rtRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// =====================
// Refresh（rotate-on-use）
// =====================

func TestRefresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)

	plain, current, err := f.tokens.GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.rtRepo.On("FindByUserAndHash", ctx, user.ID, HashToken(plain)).Return(current, nil)

	var appended *model.RefreshToken
	f.rtRepo.On("Append", ctx, mock.Anything).Run(func(args mock.Arguments) {
		appended = args.Get(1).(*model.RefreshToken)
	}).Return(nil)
	f.rtRepo.On("Revoke", ctx, current.ID, mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.Refresh(ctx, user.ID, plain)
	require.NoError(t, err)

	// 新しいaccess tokenは同じsubject
	claims, err := f.tokens.ParseAccessToken(out.User.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// 古いtokenはrevokeされ、後継IDが記録される
	require.NotNil(t, appended)
	f.rtRepo.AssertCalled(t, "Revoke", ctx, current.ID, mock.Anything, appended.ID)

	// cookieは新しい平文に置き換わる
	assert.NotEqual(t, plain, out.RefreshTokenPlain)
	assert.Equal(t, HashToken(out.RefreshTokenPlain), appended.TokenHash)
}

func TestRefresh_UnknownToken_Unauthorized(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.rtRepo.On("FindByUserAndHash", ctx, user.ID, mock.Anything).
		Return(nil, repository.ErrRefreshTokenNotFound)

	_, err := f.uc.Refresh(ctx, user.ID, "unknown-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
	f.rtRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// rotate済みの旧トークンを再提示しても通らない
func TestRefresh_OldTokenRejectedAfterRotation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)

	plain, current, err := f.tokens.GenerateRefreshToken(user.ID)
	require.NoError(t, err)
	revokedAt := time.Now().Add(-time.Hour)
	successor := "successor-token-id"
	current.RevokedAt = &revokedAt
	current.ReplacedByID = &successor

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.rtRepo.On("FindByUserAndHash", ctx, user.ID, HashToken(plain)).Return(current, nil)

	_, err = f.uc.Refresh(ctx, user.ID, plain)
	assert.ErrorIs(t, err, ErrUnauthorized)
	f.rtRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRefresh_ExpiredToken_Unauthorized(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)

	plain, current, err := f.tokens.GenerateRefreshToken(user.ID)
	require.NoError(t, err)
	current.ExpiresAt = time.Now().Add(-time.Minute)

	f.users.On("FindByID", ctx, user.ID).Return(user, nil)
	f.rtRepo.On("FindByUserAndHash", ctx, user.ID, HashToken(plain)).Return(current, nil)

	_, err = f.uc.Refresh(ctx, user.ID, plain)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// =====================
// Logout
// =====================

func TestLogout_RevokesPresentedToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := confirmedUser(t)

	plain, current, err := f.tokens.GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	f.rtRepo.On("FindByUserAndHash", ctx, user.ID, HashToken(plain)).Return(current, nil)
	f.rtRepo.On("Revoke", ctx, current.ID, mock.Anything, "").Return(nil)

	err = f.uc.Logout(ctx, user.ID, plain)
	require.NoError(t, err)
	f.rtRepo.AssertCalled(t, "Revoke", ctx, current.ID, mock.Anything, "")
}

func TestFieldErrors_MessageIsStable(t *testing.T) {
	err := FieldErrors{"username": "taken", "email": "taken"}
	// map順に依存せずソートされた表記になる
	assert.Equal(t, "email: taken; username: taken", err.Error())
	assert.True(t, strings.Contains(err.Error(), "email"))
}
