package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/pkg/jwt"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type RegisterAdminRequest struct {
	RegisterRequest
	SignupKey string `json:"signup_key" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

type LoginResponse struct {
	Tokens  TokenPair             `json:"tokens"`
	Account model.AccountResponse `json:"account"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*model.Account, error)
	RegisterAdmin(ctx context.Context, req *RegisterAdminRequest) (*model.Account, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accountID uuid.UUID) error
	Authenticate(ctx context.Context, accessToken string) (*model.Account, error)
	SeedAdmin(ctx context.Context, name, email, password string) error
}

type authService struct {
	accountRepo repository.AccountRepository
	tokens      *jwt.Manager
	signupKey   string
	log         *zap.Logger
}

func NewAuthService(accountRepo repository.AccountRepository, tokens *jwt.Manager, adminSignupKey string, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		accountRepo: accountRepo,
		tokens:      tokens,
		signupKey:   adminSignupKey,
		log:         log.Named("auth"),
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*model.Account, error) {
	return s.register(ctx, req, model.RoleUser)
}

func (s *authService) RegisterAdmin(ctx context.Context, req *RegisterAdminRequest) (*model.Account, error) {
	req.normalize()
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("%s", validator.Describe(errs))
	}
	if s.signupKey == "" || subtle.ConstantTimeCompare([]byte(req.SignupKey), []byte(s.signupKey)) != 1 {
		return nil, ErrAdminSignupDisabled
	}
	return s.register(ctx, &req.RegisterRequest, model.RoleAdmin)
}

func (s *authService) register(ctx context.Context, req *RegisterRequest, role model.Role) (*model.Account, error) {
	// 1. Validate request
	req.normalize()
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("%s", validator.Describe(errs))
	}
	email := req.Email

	// 2. Check if email already exists
	if _, err := s.accountRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("failed to check email", err)
	}

	// 3. Create account
	account := &model.Account{
		Name:         req.Name,
		Email:        email,
		Role:         role,
		TokenVersion: uuid.NewString(),
	}
	if err := account.SetPassword(req.Password); err != nil {
		return nil, persistence("failed to hash password", err)
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, persistence("failed to create account", err)
	}

	logger.FromContextOr(ctx, s.log).Info("account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(role)),
	)
	return account, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("%s", validator.Describe(errs))
	}

	// 1. Find account by email; unknown email and wrong password look the same
	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, persistence("failed to load account", err)
	}

	// 2. Verify password
	if !account.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Accounts created before token versions existed get one now
	if account.TokenVersion == "" {
		account.TokenVersion = uuid.NewString()
		if err := s.accountRepo.UpdateTokenVersion(ctx, account.ID, account.TokenVersion); err != nil {
			return nil, persistence("failed to update session", err)
		}
	}

	// 4. Generate tokens
	pair, err := s.issue(account, true)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Tokens: *pair, Account: account.ToResponse()}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	account, err := s.accountRepo.FindByID(ctx, claims.AccountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, persistence("failed to load account", err)
	}
	if account.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidRefresh
	}
	return s.issue(account, false)
}

// Logout rotates the token version so every outstanding token stops working
func (s *authService) Logout(ctx context.Context, accountID uuid.UUID) error {
	if err := s.accountRepo.UpdateTokenVersion(ctx, accountID, uuid.NewString()); err != nil {
		return persistence("failed to end session", err)
	}
	return nil
}

// Authenticate checks an access token against the stored session
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*model.Account, error) {
	claims, err := s.tokens.ValidateAccess(accessToken)
	if err != nil {
		return nil, &Error{Kind: KindUnauthorized, Msg: err.Error()}
	}
	account, err := s.accountRepo.FindByID(ctx, claims.AccountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, persistence("failed to load account", err)
	}
	if account.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	return account, nil
}

// SeedAdmin creates the bootstrap admin when the email is not taken yet
func (s *authService) SeedAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.accountRepo.FindByEmail(ctx, normalizeEmail(email)); err == nil {
		return nil
	}
	_, err := s.register(ctx, &RegisterRequest{Name: name, Email: email, Password: password}, model.RoleAdmin)
	return err
}

func (s *authService) issue(account *model.Account, withRefresh bool) (*TokenPair, error) {
	subject := jwt.Subject{
		AccountID:    account.ID,
		Email:        account.Email,
		Name:         account.Name,
		Role:         string(account.Role),
		TokenVersion: account.TokenVersion,
	}
	now := time.Now()
	access, err := s.tokens.GenerateAccess(subject)
	if err != nil {
		return nil, persistence("failed to generate token", err)
	}
	pair := &TokenPair{AccessToken: access, AccessExpiresAt: now.Add(s.tokens.AccessTTL())}
	if withRefresh {
		refresh, err := s.tokens.GenerateRefresh(subject)
		if err != nil {
			return nil, persistence("failed to generate token", err)
		}
		pair.RefreshToken = refresh
		pair.RefreshExpiresAt = now.Add(s.tokens.RefreshTTL())
	}
	return pair, nil
}

func (r *RegisterRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
