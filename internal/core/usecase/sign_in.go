package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"rental-project/internal/constants"
	"rental-project/internal/core/domain"
	"rental-project/internal/core/port"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthUseCase checks credentials against stored profiles.
type AuthUseCase struct {
	profiles port.ProfileRepositoryPort
}

func NewAuthUseCase(profiles port.ProfileRepositoryPort) (*AuthUseCase, error) {
	if profiles == nil {
		return nil, fmt.Errorf("auth use case: profile repository cannot be nil")
	}
	return &AuthUseCase{profiles: profiles}, nil
}

// SignIn returns the profile matching email and password. Unknown emails
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (domain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	profile, err := uc.profiles.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			log.Printf("AuthUseCase: No profile for %s\n", email)
			return domain.Profile{}, domain.ErrInvalidCredentials
		}
		return domain.Profile{}, fmt.Errorf("sign in %s: %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		log.Printf("AuthUseCase: Wrong password for %s\n", email)
		return domain.Profile{}, domain.ErrInvalidCredentials
	}
	return profile, nil
}

// EnsureProfile creates a profile with the given role unless one with the
// same email exists already.
func EnsureProfile(ctx context.Context, gateway port.GatewayPort, profiles port.ProfileRepositoryPort, email, password string, role domain.Role) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return fmt.Errorf("ensure profile: email and password are required")
	}

	_, err := profiles.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return fmt.Errorf("ensure profile %s: %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ensure profile %s: hash password: %w", email, err)
	}
	now := time.Now().UTC()
	_, err = gateway.Insert(ctx, constants.TableProfiles, domain.Row{
		"user_id":       email,
		"email":         email,
		"role":          string(role),
		"password_hash": string(hash),
		"created_at":    now,
		"updated_at":    now,
	})
	if err != nil {
		return fmt.Errorf("ensure profile %s: %w", email, err)
	}
	log.Printf("AuthUseCase: Created %s profile %s\n", role, email)
	return nil
}

// SessionProvider holds the signed-in profile of one client.
type SessionProvider struct {
	auth *AuthUseCase

	mu      sync.RWMutex
	current *domain.Profile
}

func NewSessionProvider(auth *AuthUseCase) *SessionProvider {
	return &SessionProvider{auth: auth}
}

// SignIn replaces the current profile on success and leaves it untouched
// on failure.
func (s *SessionProvider) SignIn(ctx context.Context, email, password string) (domain.Profile, error) {
	profile, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return domain.Profile{}, err
	}
	s.mu.Lock()
	s.current = &profile
	s.mu.Unlock()
	return profile, nil
}

func (s *SessionProvider) SignOut() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the signed-in profile, if any.
func (s *SessionProvider) Current() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Profile{}, false
	}
	return *s.current, true
}

func (s *SessionProvider) IsAdmin() bool {
	p, ok := s.Current()
	return ok && p.IsAdmin()
}
