package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shopapi/internal/domain/model"
	repo "shopapi/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer はアクセストークンの発行だけを約束（実装はcmd側）。
type TokenIssuer interface {
	Issue(userID int64, now time.Time) (token string, expiresAt time.Time, err error)
}

// PasswordHasher はパスワードのハッシュ化と照合。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) error
}

type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptPasswordHasher) Verify(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// AuthUsecase は会員登録とログイン。
// リフレッシュトークンやCSRFは持たない（アクセストークンのみ）。
type AuthUsecase struct {
	userRepo repo.UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
}

func NewAuthUsecase(userRepo repo.UserRepository, hasher PasswordHasher, issuer TokenIssuer) *AuthUsecase {
	return &AuthUsecase{userRepo: userRepo, hasher: hasher, issuer: issuer}
}

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type UserOutput struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type LoginOutput struct {
	User        UserOutput `json:"user"`
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") || len(email) > 255 {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 || len(in.Password) > 72 {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "password must be 8-72 characters")
	}

	if _, err := u.userRepo.FindByEmail(ctx, email); err == nil {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "email already registered")
	} else if err != repo.ErrNotFound {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	now := time.Now()
	created, err := u.userRepo.Create(ctx, model.User{
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// emailのunique制約に弾かれた場合
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "email already registered")
	}

	return UserOutput{ID: created.ID, Email: created.Email}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err == repo.ErrNotFound {
		// 存在有無は漏らさない
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.hasher.Verify(user.PasswordHash, in.Password); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, expiresAt, err := u.issuer.Issue(user.ID, time.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginOutput{
		User:        UserOutput{ID: user.ID, Email: user.Email},
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
