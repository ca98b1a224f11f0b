package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/identikit/identity-api/internal/core/domain"
	"github.com/identikit/identity-api/internal/core/ports"
)

func TestMeGet(t *testing.T) {
	h := NewMeHandler(&stubUserService{})

	u := activeUser()
	u.HashedPassword = "$2a$10$secretdigest"
	c, rec := jsonRequest(t, http.MethodGet, "/v1/me", "")
	c.Set("user", u)

	if err := h.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "u1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "secretdigest") {
		t.Fatalf("password hash leaked into the payload")
	}
}

func TestMeUpdate_ForwardsOldPassword(t *testing.T) {
	users := &stubUserService{
		updateSelfFn: func(_ context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if id != "u1" {
				t.Fatalf("id not forwarded: %q", id)
			}
			if in.Password == nil || *in.Password != "a brand new password" || in.OldPassword != "a solid password" {
				t.Fatalf("password patch not forwarded: %+v", in)
			}
			return activeUser(), nil
		},
	}
	h := NewMeHandler(users)

	c, _ := jsonRequest(t, http.MethodPut, "/v1/me",
		`{"password":"a brand new password","old_password":"a solid password"}`)
	c.Set("user", activeUser())

	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestMeUpdate_ServiceErrorsPropagate(t *testing.T) {
	users := &stubUserService{
		updateSelfFn: func(context.Context, string, ports.UpdateUserInput) (*domain.User, error) {
			return nil, domain.ErrPermissionDenied
		},
	}
	h := NewMeHandler(users)

	c, _ := jsonRequest(t, http.MethodPut, "/v1/me",
		`{"password":"a brand new password","old_password":"wrong"}`)
	c.Set("user", activeUser())

	if err := h.Update(c); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestMeDelete(t *testing.T) {
	var deleted string
	users := &stubUserService{
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewMeHandler(users)

	c, rec := jsonRequest(t, http.MethodDelete, "/v1/me", "")
	c.Set("user", activeUser())

	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != "u1" {
		t.Fatalf("wrong id deleted: %q", deleted)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestChangeEmail(t *testing.T) {
	users := &stubUserService{
		reqEmailFn: func(_ context.Context, user *domain.User, newEmail string) error {
			if user.ID != "u1" || newEmail != "new@x.test" {
				t.Fatalf("arguments not forwarded: %s %s", user.ID, newEmail)
			}
			return nil
		},
	}
	h := NewMeHandler(users)

	c, rec := jsonRequest(t, http.MethodPost, "/v1/me/change-email/new@x.test", "")
	c.Set("user", activeUser())
	c.SetParamNames("email")
	c.SetParamValues("new@x.test")

	if err := h.ChangeEmail(c); err != nil {
		t.Fatalf("change email: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestValidateEmail(t *testing.T) {
	users := &stubUserService{
		applyEmailFn: func(_ context.Context, token string) (*domain.User, error) {
			if token != "tok" {
				t.Fatalf("token not forwarded: %q", token)
			}
			u := activeUser()
			u.Email = "new@x.test"
			return u, nil
		},
	}
	h := NewMeHandler(users)

	c, rec := jsonRequest(t, http.MethodPost, "/v1/validate-email/tok", "")
	c.SetParamNames("token")
	c.SetParamValues("tok")

	if err := h.ValidateEmail(c); err != nil {
		t.Fatalf("validate email: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestValidateEmail_InvalidToken(t *testing.T) {
	users := &stubUserService{
		applyEmailFn: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrInvalidToken
		},
	}
	h := NewMeHandler(users)

	c, _ := jsonRequest(t, http.MethodPost, "/v1/validate-email/garbage", "")
	c.SetParamNames("token")
	c.SetParamValues("garbage")

	if err := h.ValidateEmail(c); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
