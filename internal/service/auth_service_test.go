package service

import (
	"context"
	"testing"

	"go-storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	acc, err := f.authSvc.Register(ctx, &RegisterRequest{Name: "Ann", Email: " Ann@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", acc.Email)
	assert.Equal(t, model.RoleUser, acc.Role)
	assert.NotEmpty(t, acc.TokenVersion)

	_, err = f.authSvc.Register(ctx, &RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, KindConflict, KindOf(err))

	res, err := f.authSvc.Login(ctx, &LoginRequest{Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, acc.ID, res.Account.ID)
	assert.Contains(t, res.Account.Capabilities, model.CapOrderPlace)

	authed, err := f.authSvc.Authenticate(ctx, res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, authed.ID)
}

func TestLoginFailuresAreUnauthorized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, model.RoleUser, "Ann", "ann@example.com")

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "ann@example.com", Password: "nope-nope"}},
		{"unknown email", LoginRequest{Email: "bob@example.com", Password: testPassword}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.authSvc.Login(ctx, &req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, KindUnauthorized, KindOf(err))
		})
	}

	_, err := f.authSvc.Login(ctx, &LoginRequest{Email: "not-an-email"})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.authSvc.Register(context.Background(), &RegisterRequest{Name: "A", Email: "a@example.com", Password: "secret123"})
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Contains(t, err.Error(), "Name")
}

func TestRegisterAdminNeedsSignupKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := RegisterRequest{Name: "Boss", Email: "boss@example.com", Password: "secret123"}

	_, err := f.authSvc.RegisterAdmin(ctx, &RegisterAdminRequest{RegisterRequest: base, SignupKey: "wrong"})
	assert.ErrorIs(t, err, ErrAdminSignupDisabled)

	acc, err := f.authSvc.RegisterAdmin(ctx, &RegisterAdminRequest{RegisterRequest: base, SignupKey: "let-me-in"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, acc.Role)
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.account(t, model.RoleUser, "Ann", "ann@example.com")

	res, err := f.authSvc.Login(ctx, &LoginRequest{Email: "ann@example.com", Password: testPassword})
	require.NoError(t, err)

	pair, err := f.authSvc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Empty(t, pair.RefreshToken)

	// an access token is not a refresh token
	_, err = f.authSvc.Refresh(ctx, res.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
	assert.Equal(t, KindForbidden, KindOf(err))

	require.NoError(t, f.authSvc.Logout(ctx, user.ID))

	_, err = f.authSvc.Authenticate(ctx, res.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = f.authSvc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	_, err := f.authSvc.Authenticate(context.Background(), "not-a-token")
	assert.Equal(t, KindUnauthorized, KindOf(err))
	_, err = f.authSvc.Authenticate(context.Background(), "")
	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.authSvc.SeedAdmin(ctx, "Administrator", "admin@example.com", "admin1234"))
	require.NoError(t, f.authSvc.SeedAdmin(ctx, "Administrator", "admin@example.com", "admin1234"))
	require.NoError(t, f.authSvc.SeedAdmin(ctx, "Administrator", "", ""))

	admins, err := f.accounts.FindByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestEmailIsNormalizedBeforeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, model.RoleUser, "Ann", "ann@example.com")

	res, err := f.authSvc.Login(ctx, &LoginRequest{Email: "  ANN@example.com ", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", res.Account.Email)

	acc, err := f.authSvc.RegisterAdmin(ctx, &RegisterAdminRequest{
		RegisterRequest: RegisterRequest{Name: "  Boss  ", Email: " Boss@Example.com", Password: "secret123"},
		SignupKey:       "let-me-in",
	})
	require.NoError(t, err)
	assert.Equal(t, "boss@example.com", acc.Email)
	assert.Equal(t, "Boss", acc.Name)

	// a name that is only long enough with its padding is still too short
	_, err = f.authSvc.Register(ctx, &RegisterRequest{Name: " A ", Email: "a@example.com", Password: "secret123"})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
