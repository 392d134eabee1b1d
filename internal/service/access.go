package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"dqdash/internal/auth"
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
	"dqdash/internal/model"

	"gorm.io/gorm"
)

const tokenTypeBearer = "bearer"

// AccessGate 负责登录、令牌解析以及管理员/数据集权限判断。
type AccessGate struct {
	repo   model.Repository
	tokens *auth.Manager
}

// NewAccessGate 创建访问控制服务
func NewAccessGate(repo model.Repository, tokens *auth.Manager) *AccessGate {
	return &AccessGate{repo: repo, tokens: tokens}
}

var (
	decoyOnce   sync.Once
	decoyDigest string
)

// decoy is verified against when the email is unknown, keeping both paths
// at one PBKDF2 derivation.
func decoy() string {
	decoyOnce.Do(func() {
		decoyDigest, _ = auth.HashPassword("decoy-password-never-matches")
	})
	return decoyDigest
}

// Login checks the credentials and issues a bearer token. The password is
// verified before the active flag.
func (g *AccessGate) Login(ctx context.Context, email, password string) (dto.TokenResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	user, err := g.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.VerifyPassword(password, decoy())
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return dto.TokenResponse{}, ErrUserDisabled
	}

	token, expiresAt, err := g.tokens.Issue(user.Email, map[string]any{auth.ClaimIsAdmin: user.IsAdmin})
	if err != nil {
		return dto.TokenResponse{}, err
	}
	return dto.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveIdentity turns a bearer token into an active user.
func (g *AccessGate) ResolveIdentity(ctx context.Context, bearer string) (*db.User, error) {
	token := strings.TrimSpace(bearer)
	if token == "" {
		return nil, newError(ErrUnauthenticated, "not authenticated")
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, newError(ErrUnauthenticated, "invalid token")
	}
	subject, err := auth.Subject(claims)
	if err != nil {
		return nil, newError(ErrUnauthenticated, "invalid token")
	}

	user, err := g.repo.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthenticated, "inactive or missing user")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, newError(ErrUnauthenticated, "inactive or missing user")
	}
	return user, nil
}

// RequireAdmin passes only for admin users.
func RequireAdmin(user *db.User) error {
	if user == nil {
		return newError(ErrUnauthenticated, "not authenticated")
	}
	if !user.IsAdmin {
		return newError(ErrForbidden, "admin access required")
	}
	return nil
}

// RequireDatasetAccess passes for admins and for users holding a grant on the
// dataset. repo may be bound to the caller's transaction.
func RequireDatasetAccess(ctx context.Context, repo model.Repository, datasetID uint, user *db.User) error {
	if user == nil {
		return newError(ErrUnauthenticated, "not authenticated")
	}
	if user.IsAdmin {
		return nil
	}
	ok, err := repo.HasGrant(ctx, user.ID, datasetID)
	if err != nil {
		return err
	}
	if !ok {
		return newError(ErrForbidden, "no access to dataset")
	}
	return nil
}
