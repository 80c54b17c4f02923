package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/repository"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[string]*domain.User
	createErr error
	getErr    error
	updateErr error

	// createCalls counts Create invocations, to assert idempotent
	// bootstrap provisioning.
	createCalls int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return domain.ErrUserAlreadyExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if user, exists := m.users[id]; exists {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.users[user.ID]; !exists {
		return domain.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var items []*domain.User
	for _, user := range m.users {
		items = append(items, user)
	}
	return &repository.ListResult[domain.User]{
		Items: items,
		Total: int64(len(items)),
	}, nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func testUserService(repo *MockUserRepository, bootstrap BootstrapIdentity) *UserService {
	return NewUserService(repo, bootstrap, zerolog.Nop())
}

// =============================================================================
// Tests
// =============================================================================

func TestUserService_Register(t *testing.T) {
	bootstrap := BootstrapIdentity{Username: "shepherd", Password: "130903"}

	tests := []struct {
		name      string
		input     RegisterInput
		wantErr   error
		setupRepo func(*MockUserRepository)
	}{
		{
			name:    "success",
			input:   RegisterInput{Username: "alice", Password: "hunter2!"},
			wantErr: nil,
		},
		{
			name:    "username too short",
			input:   RegisterInput{Username: "ab", Password: "hunter2!"},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "password too short",
			input:   RegisterInput{Username: "alice", Password: "abc"},
			wantErr: ErrInvalidPassword,
		},
		{
			name:    "reserved username",
			input:   RegisterInput{Username: "shepherd", Password: "hunter2!"},
			wantErr: ErrUsernameReserved,
		},
		{
			name:    "reserved username different case",
			input:   RegisterInput{Username: "SHEPHERD", Password: "hunter2!"},
			wantErr: ErrUsernameReserved,
		},
		{
			name:    "already exists",
			input:   RegisterInput{Username: "alice", Password: "hunter2!"},
			wantErr: ErrUserAlreadyExists,
			setupRepo: func(m *MockUserRepository) {
				m.users["u1"] = domain.NewUser("u1", "alice", "x")
			},
		},
		{
			name:    "already exists different case",
			input:   RegisterInput{Username: "ALICE", Password: "hunter2!"},
			wantErr: ErrUserAlreadyExists,
			setupRepo: func(m *MockUserRepository) {
				m.users["u1"] = domain.NewUser("u1", "alice", "x")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}

			svc := testUserService(repo, bootstrap)
			output, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if output.User == nil {
				t.Fatal("expected user in output")
			}
			if output.User.Username != tt.input.Username {
				t.Errorf("expected username %s, got %s", tt.input.Username, output.User.Username)
			}
			if output.User.ID == "" {
				t.Error("expected generated user ID")
			}
			if output.User.PasswordHash == tt.input.Password {
				t.Error("password stored in plaintext")
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	repo := NewMockUserRepository()
	svc := testUserService(repo, BootstrapIdentity{})

	out, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	t.Run("correct password", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "alice", "hunter2!")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != out.User.ID {
			t.Errorf("expected user %s, got %s", out.User.ID, user.ID)
		}
	})

	t.Run("case-insensitive username", func(t *testing.T) {
		if _, err := svc.Authenticate(context.Background(), "ALICE", "hunter2!"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "alice", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "nobody", "hunter2!")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserService_AuthenticateLegacyPlaintext(t *testing.T) {
	// Rows written before hashing was introduced carry the raw password.
	repo := NewMockUserRepository()
	repo.users["u1"] = domain.NewUser("u1", "old-timer", "plaintext-secret")

	svc := testUserService(repo, BootstrapIdentity{})

	if _, err := svc.Authenticate(context.Background(), "old-timer", "plaintext-secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "old-timer", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_BootstrapProvisioning(t *testing.T) {
	bootstrap := BootstrapIdentity{Username: "shepherd", Password: "130903"}

	t.Run("provisions on first login", func(t *testing.T) {
		repo := NewMockUserRepository()
		svc := testUserService(repo, bootstrap)

		user, err := svc.Authenticate(context.Background(), "shepherd", "130903")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != BootstrapUserID {
			t.Errorf("expected bootstrap ID, got %s", user.ID)
		}
		if repo.createCalls != 1 {
			t.Errorf("expected 1 create call, got %d", repo.createCalls)
		}
	})

	t.Run("provisions exactly once", func(t *testing.T) {
		repo := NewMockUserRepository()
		svc := testUserService(repo, bootstrap)

		for i := 0; i < 3; i++ {
			if _, err := svc.Authenticate(context.Background(), "shepherd", "130903"); err != nil {
				t.Fatalf("login %d failed: %v", i, err)
			}
		}
		if repo.createCalls != 1 {
			t.Errorf("expected 1 create call, got %d", repo.createCalls)
		}
		if len(repo.users) != 1 {
			t.Errorf("expected 1 user, got %d", len(repo.users))
		}
	})

	t.Run("wrong bootstrap password provisions nothing", func(t *testing.T) {
		repo := NewMockUserRepository()
		svc := testUserService(repo, bootstrap)

		_, err := svc.Authenticate(context.Background(), "shepherd", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if repo.createCalls != 0 {
			t.Errorf("expected no create calls, got %d", repo.createCalls)
		}
	})

	t.Run("bootstrap username case-insensitive", func(t *testing.T) {
		repo := NewMockUserRepository()
		svc := testUserService(repo, bootstrap)

		user, err := svc.Authenticate(context.Background(), "SHEPHERD", "130903")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != BootstrapUserID {
			t.Errorf("expected bootstrap ID, got %s", user.ID)
		}
	})

	t.Run("lost insert race falls back to read", func(t *testing.T) {
		repo := NewMockUserRepository()
		svc := testUserService(repo, bootstrap)

		// Simulate another instance winning the provisioning race
		// between our lookup and our insert.
		repo.createErr = fmt.Errorf("wrapped: %w", domain.ErrUserAlreadyExists)
		repo.users[BootstrapUserID] = domain.NewUser(BootstrapUserID, "shepherd", "x")

		user, err := svc.Authenticate(context.Background(), "shepherd", "130903")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != BootstrapUserID {
			t.Errorf("expected bootstrap ID, got %s", user.ID)
		}
	})
}

func TestUserService_RegisterWithProfile(t *testing.T) {
	repo := NewMockUserRepository()
	svc := testUserService(repo, BootstrapIdentity{})

	theme := "dark"
	age := 17

	out, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "hunter2!",
		Profile:  domain.ProfileUpdate{Theme: &theme, ConversionAge: &age},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.User.Theme != "dark" {
		t.Errorf("expected theme dark, got %q", out.User.Theme)
	}
	if out.User.ConversionAge == nil || *out.User.ConversionAge != 17 {
		t.Errorf("expected conversion age 17, got %v", out.User.ConversionAge)
	}

	stored, err := svc.GetByID(context.Background(), out.User.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Theme != "dark" {
		t.Errorf("expected stored theme dark, got %q", stored.Theme)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := NewMockUserRepository()
	svc := testUserService(repo, BootstrapIdentity{})

	out, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "hunter2!"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	theme := "dark"
	age := 17
	baptism := time.Date(2019, 6, 2, 0, 0, 0, 0, time.UTC)

	updated, err := svc.UpdateProfile(context.Background(), out.User.ID, domain.ProfileUpdate{
		Theme:         &theme,
		ConversionAge: &age,
		BaptismDate:   &baptism,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Theme != "dark" {
		t.Errorf("expected theme dark, got %s", updated.Theme)
	}
	if updated.ConversionAge == nil || *updated.ConversionAge != 17 {
		t.Errorf("expected conversion age 17, got %v", updated.ConversionAge)
	}
	if updated.BaptismDate == nil || !updated.BaptismDate.Equal(baptism) {
		t.Errorf("expected baptism date %v, got %v", baptism, updated.BaptismDate)
	}
	// Untouched fields survive.
	if updated.Username != "alice" {
		t.Errorf("expected username alice, got %s", updated.Username)
	}

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), "missing", domain.ProfileUpdate{Theme: &theme})
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}
