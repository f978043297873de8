// Package auth はログイン・登録・ソーシャル認証、セッションの永続化、
// 認証状態ストアを提供する。
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/giftdesk/internal/apiclient"
	"github.com/hitoshi/giftdesk/internal/model"
)

// エンドポイント
const (
	pathLogin       = "/user/login"
	pathRegister    = "/user/register"
	pathSocialLogin = "/user/social-login"
	pathLogout      = "/user/logout"
	pathCurrentUser = "/user/current"
)

// LoginRequest はメールアドレスとパスワードによるログインのリクエスト。
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest は新規登録のリクエスト。
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	VerifyCode  string `json:"verifyCode"`
	InviteCode  string `json:"inviteCode,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

// SocialLoginRequest はGoogle/Appleなど外部IdPのIDトークンによるログインのリクエスト。
type SocialLoginRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"idToken"`
}

// supportedProviders はソーシャル認証で受け付けるIdP。
var supportedProviders = map[string]bool{
	"google": true,
	"apple":  true,
}

// API は認証ストアが必要とするバックエンド呼び出しのインターフェース。
// テスト時にモックに差し替え可能。
type API interface {
	Login(ctx context.Context, req LoginRequest) (*model.AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*model.AuthResult, error)
	SocialLogin(ctx context.Context, req SocialLoginRequest) (*model.AuthResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*model.UserProfile, error)
}

// Service は認証系エンドポイントの薄いラッパー。
type Service struct {
	api apiclient.Poster
}

// NewService はServiceを生成する。
func NewService(api apiclient.Poster) *Service {
	return &Service{api: api}
}

// Login はメールアドレスとパスワードでログインする。
func (s *Service) Login(ctx context.Context, req LoginRequest) (*model.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	return s.authenticate(ctx, pathLogin, req)
}

// Register は新規登録する。成功するとログイン済みになる。
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*model.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	return s.authenticate(ctx, pathRegister, req)
}

// SocialLogin は外部IdPのIDトークンでログインする。
func (s *Service) SocialLogin(ctx context.Context, req SocialLoginRequest) (*model.AuthResult, error) {
	req.Provider = strings.ToLower(req.Provider)
	if !supportedProviders[req.Provider] {
		return nil, model.NewInvalidRequestError(fmt.Sprintf("unsupported social login provider: %s", req.Provider))
	}
	return s.authenticate(ctx, pathSocialLogin, req)
}

// Logout はバックエンド側のセッションを破棄する。
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.api.Post(ctx, pathLogout, model.TokenRequest{Token: token}, nil)
}

// CurrentUser はトークンに紐づく最新のユーザー情報を取得する。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.UserProfile, error) {
	user, err := apiclient.Call[model.UserProfile](ctx, s.api, pathCurrentUser, model.TokenRequest{Token: token})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*model.AuthResult, error) {
	res, err := apiclient.Call[model.AuthResult](ctx, s.api, path, body)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, &model.RequestError{Kind: model.KindDecode, Path: path, Message: model.FallbackMessage,
			Err: fmt.Errorf("response has no token")}
	}
	return &res, nil
}

// compile-time interface check
var _ API = (*Service)(nil)
