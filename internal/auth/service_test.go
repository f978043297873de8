package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/giftdesk/internal/apiclient/apiclienttest"
	"github.com/hitoshi/giftdesk/internal/model"
)

func TestService_Login(t *testing.T) {
	api := apiclienttest.New().Respond(pathLogin, map[string]any{
		"token": "tok-1",
		"user":  map[string]any{"id": "u1", "email": "a@example.com"},
	})
	svc := NewService(api)

	res, err := svc.Login(context.Background(), LoginRequest{Email: " a@example.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("Login がエラーを返した: %v", err)
	}
	if res.Token != "tok-1" || res.User.ID != "u1" {
		t.Errorf("result = %+v", res)
	}
	body := api.LastBody()
	if body["email"] != "a@example.com" {
		t.Errorf("email = %v, want trimmed address", body["email"])
	}
}

func TestService_Login_MissingTokenIsDecodeError(t *testing.T) {
	api := apiclienttest.New().Respond(pathLogin, map[string]any{"user": map[string]any{"id": "u1"}})
	svc := NewService(api)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "pw"})
	var reqErr *model.RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != model.KindDecode {
		t.Fatalf("err = %v, want decode RequestError", err)
	}
}

func TestService_Register_PassesDomainError(t *testing.T) {
	domainErr := &model.RequestError{Kind: model.KindDomain, Path: pathRegister, Message: "Email already registered"}
	api := apiclienttest.New().Fail(pathRegister, domainErr)
	svc := NewService(api)

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@example.com", Password: "pw", VerifyCode: "1234"})
	if model.UserMessage(err) != "Email already registered" {
		t.Errorf("UserMessage = %q", model.UserMessage(err))
	}
}

func TestService_SocialLogin(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantErr  bool
	}{
		{"google", "google", false},
		{"大文字は小文字に正規化", "Apple", false},
		{"未対応のプロバイダー", "facebook", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := apiclienttest.New().Respond(pathSocialLogin, map[string]any{"token": "tok"})
			svc := NewService(api)

			_, err := svc.SocialLogin(context.Background(), SocialLoginRequest{Provider: tt.provider, IDToken: "id"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && len(api.Calls()) != 0 {
				t.Error("未対応のプロバイダーでAPIが呼ばれた")
			}
		})
	}
}

func TestService_CurrentUserSendsToken(t *testing.T) {
	api := apiclienttest.New().Respond(pathCurrentUser, map[string]any{"id": "u1", "nickname": "nick"})
	svc := NewService(api)

	user, err := svc.CurrentUser(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("CurrentUser がエラーを返した: %v", err)
	}
	if user.Nickname != "nick" {
		t.Errorf("Nickname = %q", user.Nickname)
	}
	if api.LastBody()["token"] != "tok-1" {
		t.Errorf("body = %v", api.LastBody())
	}
}

func TestService_Logout(t *testing.T) {
	api := apiclienttest.New().Respond(pathLogout, nil)
	svc := NewService(api)

	if err := svc.Logout(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Logout がエラーを返した: %v", err)
	}
	calls := api.Calls()
	if len(calls) != 1 || calls[0].Path != pathLogout {
		t.Errorf("calls = %+v", calls)
	}
}
