// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/localmart/internal/core"
)

type fakeTokenRepository struct {
	tokens map[string]*RefreshToken
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{tokens: make(map[string]*RefreshToken)}
}

func (f *fakeTokenRepository) Create(_ context.Context, token *RefreshToken) error {
	copied := *token
	copied.CreatedAt = time.Now()
	f.tokens[token.ID] = &copied
	return nil
}

func (f *fakeTokenRepository) FindByHash(_ context.Context, tokenHash string) (*RefreshToken, error) {
	for _, token := range f.tokens {
		if token.TokenHash == tokenHash {
			copied := *token
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
}

func (f *fakeTokenRepository) FindByID(_ context.Context, id string) (*RefreshToken, error) {
	token, ok := f.tokens[id]
	if !ok {
		return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
	}
	copied := *token
	return &copied, nil
}

func (f *fakeTokenRepository) MarkAsUsed(_ context.Context, id, replacedByID string) error {
	token, ok := f.tokens[id]
	if !ok {
		return fmt.Errorf("mark token: %w", core.ErrNotFound)
	}
	now := time.Now()
	token.IsUsed = true
	token.UsedAt = &now
	token.ReplacedByID = &replacedByID
	return nil
}

func (f *fakeTokenRepository) RevokeByID(_ context.Context, id string) error {
	token, ok := f.tokens[id]
	if !ok {
		return fmt.Errorf("revoke token: %w", core.ErrNotFound)
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

func (f *fakeTokenRepository) RevokeByFamilyID(_ context.Context, familyID string) error {
	now := time.Now()
	for _, token := range f.tokens {
		if token.FamilyID == familyID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepository) RevokeAllForUser(_ context.Context, userID string) error {
	now := time.Now()
	for _, token := range f.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepository) ActiveSessionsForUser(_ context.Context, userID string) ([]RefreshToken, error) {
	var out []RefreshToken
	for _, token := range f.tokens {
		if token.UserID == userID && token.IsValid() {
			out = append(out, *token)
		}
	}
	return out, nil
}

func (f *fakeTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	var deleted int64
	for id, token := range f.tokens {
		if token.IsExpired() {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeIdentityProvider struct {
	identities map[string]*Identity
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{identities: make(map[string]*Identity)}
}

func (f *fakeIdentityProvider) GetByEmail(_ context.Context, email string) (*Identity, error) {
	for _, identity := range f.identities {
		if identity.Email == email {
			return identity, nil
		}
	}
	return nil, fmt.Errorf("get identity: %w", core.ErrNotFound)
}

func (f *fakeIdentityProvider) GetByID(_ context.Context, id string) (*Identity, error) {
	identity, ok := f.identities[id]
	if !ok {
		return nil, fmt.Errorf("get identity: %w", core.ErrNotFound)
	}
	return identity, nil
}

func (f *fakeIdentityProvider) Create(_ context.Context, params NewIdentity) (*Identity, error) {
	for _, existing := range f.identities {
		if existing.Email == params.Email {
			return nil, fmt.Errorf("create identity: %w", core.ErrDuplicateKey)
		}
	}

	roles := []string{"customer"}
	if params.AsBusiness {
		roles = append(roles, "business")
	}

	identity := &Identity{
		ID:           fmt.Sprintf("user-%d", len(f.identities)+1),
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: params.PasswordHash,
		ActiveRole:   "customer",
		Roles:        roles,
		CreatedAt:    time.Now(),
	}
	f.identities[identity.ID] = identity
	return identity, nil
}

func (f *fakeIdentityProvider) IncrementTokenVersion(_ context.Context, userID string) error {
	identity, ok := f.identities[userID]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	identity.TokenVersion++
	return nil
}

func (f *fakeIdentityProvider) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	identity, ok := f.identities[userID]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	identity.PasswordHash = passwordHash
	return nil
}

func newAuthService(t *testing.T) (*Service, *fakeTokenRepository, *fakeIdentityProvider) {
	t.Helper()

	repo := newFakeTokenRepository()
	identities := newFakeIdentityProvider()
	return NewService(repo, newTestJWTManager(t), identities, nil), repo, identities
}

func registerUser(t *testing.T, svc *Service, asBusiness bool) *AuthResponse {
	t.Helper()

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:      "asha@example.com",
		Password:   "correct horse battery",
		FullName:   "Asha Patel",
		AsBusiness: asBusiness,
	}, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	return resp
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newAuthService(t)
	resp := registerUser(t, svc, true)

	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, "customer", resp.User.ActiveRole,
		"business sign-up still starts in customer mode")
	assert.ElementsMatch(t, []string{"customer", "business"}, resp.User.Roles)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Len(t, repo.tokens, 1)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "asha@example.com",
		Password: "another password",
	}, "test-agent", "127.0.0.1")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	registerUser(t, svc, false)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "asha@example.com",
		Password: "correct horse battery",
	}, "test-agent", "127.0.0.1")
	require.NoError(t, err)

	claims, err := svc.jwt.VerifyAccessToken(context.Background(), resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "customer", claims.ActiveRole)
}

func TestService_Login_Rejections(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	registerUser(t, svc, false)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "asha@example.com", password: "not the password"},
		{name: "unknown email", email: "nobody@example.com", password: "correct horse battery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Login(context.Background(), LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			}, "test-agent", "127.0.0.1")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestService_Refresh_Rotation(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newAuthService(t)
	first := registerUser(t, svc, false)

	second, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	assert.Len(t, repo.tokens, 2)

	// Replaying the rotated token is reuse: the whole family dies.
	_, err = svc.Refresh(context.Background(), first.Tokens.RefreshToken, "test-agent", "127.0.0.1")
	assert.ErrorIs(t, err, ErrTokenReuse)

	_, err = svc.Refresh(context.Background(), second.Tokens.RefreshToken, "test-agent", "127.0.0.1")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestService_Refresh_UnknownToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)

	_, err := svc.Refresh(context.Background(), "never-issued", "test-agent", "127.0.0.1")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestService_Logout(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	resp := registerUser(t, svc, false)

	require.NoError(t, svc.Logout(context.Background(), resp.Tokens.RefreshToken, resp.User.ID))

	_, err := svc.Refresh(context.Background(), resp.Tokens.RefreshToken, "test-agent", "127.0.0.1")
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestService_Logout_WrongUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	resp := registerUser(t, svc, false)

	err := svc.Logout(context.Background(), resp.Tokens.RefreshToken, "someone-else")
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()

	svc, _, identities := newAuthService(t)
	resp := registerUser(t, svc, false)

	err := svc.ChangePassword(context.Background(), resp.User.ID, "wrong current", "new password 123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(
		context.Background(), resp.User.ID, "correct horse battery", "new password 123"))

	identity := identities.identities[resp.User.ID]
	assert.Equal(t, 1, identity.TokenVersion, "a password change invalidates issued tokens")

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "asha@example.com",
		Password: "new password 123",
	}, "test-agent", "127.0.0.1")
	assert.NoError(t, err)
}

func TestService_ValidateTokenVersion(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	resp := registerUser(t, svc, false)

	assert.NoError(t, svc.ValidateTokenVersion(context.Background(), resp.User.ID, 0))

	require.NoError(t, svc.LogoutAll(context.Background(), resp.User.ID))

	err := svc.ValidateTokenVersion(context.Background(), resp.User.ID, 0)
	assert.ErrorIs(t, err, core.ErrTokenRevoked)
	assert.NoError(t, svc.ValidateTokenVersion(context.Background(), resp.User.ID, 1))
}

func TestService_SessionLifecycle(t *testing.T) {
	t.Parallel()

	svc, _, _ := newAuthService(t)
	resp := registerUser(t, svc, false)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "asha@example.com",
		Password: "correct horse battery",
	}, "other-agent", "10.0.0.2")
	require.NoError(t, err)

	sessions, err := svc.GetActiveSessions(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	require.NoError(t, svc.RevokeSession(context.Background(), resp.User.ID, sessions[0].ID))

	err = svc.RevokeSession(context.Background(), "someone-else", sessions[1].ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	remaining, err := svc.GetActiveSessions(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
