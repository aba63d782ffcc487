// AngelaMos | 2026
// service.go

package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/localmart/internal/auth"
	"github.com/angelamos/localmart/internal/core"
)

var (
	ErrAlreadyGranted = errors.New("role already granted")
	ErrRoleNotGranted = errors.New("role not granted")
	ErrInvalidRole    = errors.New("invalid role")
)

// Notifier pushes a user-visible notification. Realtime delivery is
// best-effort; role state never depends on it.
type Notifier interface {
	RoleSwitched(ctx context.Context, userID, role string)
	RoleGranted(ctx context.Context, userID, role string)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) GetSession(
	ctx context.Context,
	userID string,
) (*SessionResponse, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("get session: %w", err)
	}

	roles, err := s.repo.GetRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	// A user without a profile row still has a session; it acts as a
	// customer until a profile exists to say otherwise.
	if p == nil {
		return &SessionResponse{
			Profile:    ProfileResponse{UserID: userID, ActiveRole: RoleCustomer},
			Roles:      roles,
			ActiveRole: RoleCustomer,
		}, nil
	}

	return &SessionResponse{
		Profile:    toProfileResponse(p),
		Roles:      roles,
		ActiveRole: p.ActiveRole,
	}, nil
}

// SwitchRole persists the new active role before anything else observes
// it. An ungranted role is rejected without touching the profile row.
func (s *Service) SwitchRole(
	ctx context.Context,
	userID, role string,
) (*SessionResponse, error) {
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}

	roles, err := s.repo.GetRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("switch role: %w", err)
	}

	granted := false
	for _, r := range roles {
		if r == role {
			granted = true
			break
		}
	}
	if !granted {
		return nil, ErrRoleNotGranted
	}

	if err := s.repo.SetActiveRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("switch role: %w", err)
	}

	if s.notifier != nil {
		s.notifier.RoleSwitched(ctx, userID, role)
	}

	return s.GetSession(ctx, userID)
}

// AddBusinessRole grants the business role exactly once. Repeat calls
// fail with ErrAlreadyGranted and leave the grant set unchanged.
func (s *Service) AddBusinessRole(
	ctx context.Context,
	userID string,
) (*SessionResponse, error) {
	if err := s.repo.GrantRole(ctx, userID, RoleBusiness); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrAlreadyGranted
		}
		return nil, fmt.Errorf("add business role: %w", err)
	}

	if s.notifier != nil {
		s.notifier.RoleGranted(ctx, userID, RoleBusiness)
	}

	return s.GetSession(ctx, userID)
}

func (s *Service) GetProfile(
	ctx context.Context,
	userID string,
) (*ProfileResponse, error) {
	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toProfileResponse(p)
	return &resp, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*ProfileResponse, error) {
	p, err := s.repo.UpdateProfile(ctx, userID, req.FullName, req.AvatarURL)
	if err != nil {
		return nil, err
	}

	resp := toProfileResponse(p)
	return &resp, nil
}

func toProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		UserID:     p.UserID,
		Email:      p.Email,
		FullName:   p.FullName,
		AvatarURL:  p.AvatarURL,
		ActiveRole: p.ActiveRole,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// auth.IdentityProvider implementation. Auth never talks to the tables
// directly; everything identity-shaped funnels through here.

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.Identity, error) {
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return s.toIdentity(ctx, account)
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.Identity, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.toIdentity(ctx, account)
}

func (s *Service) Create(
	ctx context.Context,
	params auth.NewIdentity,
) (*auth.Identity, error) {
	account := &Account{
		ID:           uuid.New().String(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
	}
	if params.FullName != "" {
		account.FullName = &params.FullName
	}

	if err := s.repo.CreateAccount(ctx, account, params.AsBusiness); err != nil {
		return nil, err
	}

	return s.toIdentity(ctx, account)
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) toIdentity(
	ctx context.Context,
	account *Account,
) (*auth.Identity, error) {
	roles, err := s.repo.GetRoles(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	fullName := ""
	if account.FullName != nil {
		fullName = *account.FullName
	}

	return &auth.Identity{
		ID:           account.ID,
		Email:        account.Email,
		FullName:     fullName,
		PasswordHash: account.PasswordHash,
		ActiveRole:   account.ActiveRole,
		Roles:        roles,
		TokenVersion: account.TokenVersion,
		CreatedAt:    account.CreatedAt,
	}, nil
}
