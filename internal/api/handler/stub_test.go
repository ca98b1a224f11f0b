package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/identikit/identity-api/internal/core/domain"
	"github.com/identikit/identity-api/internal/core/ports"
)

// stubUserService lets each test wire only the methods it exercises;
// anything else blowing up with a nil call is a test bug worth seeing.
type stubUserService struct {
	createFn       func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	registerFn     func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	getFn          func(ctx context.Context, id string) (*domain.User, error)
	listFn         func(ctx context.Context, page, limit int) ([]*domain.User, error)
	deleteFn       func(ctx context.Context, id string) error
	updateFn       func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error)
	updateSelfFn   func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error)
	authFn         func(ctx context.Context, email, password string) (*domain.User, error)
	tempPassFn     func(ctx context.Context, email string) (string, error)
	recoverFn      func(ctx context.Context, email string) error
	resetFn        func(ctx context.Context, token, newPassword string) error
	reqEmailFn     func(ctx context.Context, user *domain.User, newEmail string) error
	applyEmailFn   func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Register(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) List(ctx context.Context, page, limit int) ([]*domain.User, error) {
	return s.listFn(ctx, page, limit)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) UpdateSelf(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateSelfFn(ctx, id, in)
}

func (s *stubUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authFn(ctx, email, password)
}

func (s *stubUserService) GenerateTemporaryPassword(ctx context.Context, email string) (string, error) {
	return s.tempPassFn(ctx, email)
}

func (s *stubUserService) RecoverPassword(ctx context.Context, email string) error {
	return s.recoverFn(ctx, email)
}

func (s *stubUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetFn(ctx, token, newPassword)
}

func (s *stubUserService) RequestEmailChange(ctx context.Context, user *domain.User, newEmail string) error {
	return s.reqEmailFn(ctx, user, newEmail)
}

func (s *stubUserService) ApplyEmailChange(ctx context.Context, token string) (*domain.User, error) {
	return s.applyEmailFn(ctx, token)
}

type stubTokenService struct {
	sessionToken string
	issueErr     error
}

func (s *stubTokenService) IssueSessionToken(string) (string, error) {
	return s.sessionToken, s.issueErr
}
func (s *stubTokenService) VerifySessionToken(string) (string, error)       { return "", nil }
func (s *stubTokenService) IssuePasswordResetToken(string) (string, error)  { return "", nil }
func (s *stubTokenService) VerifyPasswordResetToken(string) (string, error) { return "", nil }
func (s *stubTokenService) IssueEmailChangeToken(string, string) (string, error) {
	return "", nil
}
func (s *stubTokenService) VerifyEmailChangeToken(string) (string, string, error) {
	return "", "", nil
}

// jsonRequest builds an echo context for a JSON body, wired with the
// production request validator.
func jsonRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
