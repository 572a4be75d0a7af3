package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthtrio/codelib/internal/platform/auth"
)

type mockRepo struct {
	byEmail map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{byEmail: make(map[string]*User)}
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Insert(ctx context.Context, u *User) error {
	if _, exists := m.byEmail[u.Email]; exists {
		return ErrEmailTaken
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*User, error) {
	var out []*User
	for _, u := range m.byEmail {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("codelib-test", []byte(strings.Repeat("k", 32)), time.Hour)
}

func seedUser(t *testing.T, repo *mockRepo, email, password, role, status string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	repo.byEmail[email] = u
	return u
}

func TestAuthenticate_Success(t *testing.T) {
	repo := newMockRepo()
	seeded := seedUser(t, repo, "admin@healthtrio.com", "correct horse", RoleAdmin, StatusActive)
	svc := NewService(repo, testIssuer())

	u, token, err := svc.Authenticate(context.Background(), "admin@healthtrio.com", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != seeded.ID {
		t.Errorf("user id = %s, want %s", u.ID, seeded.ID)
	}
	if token == "" {
		t.Error("expected a signed token")
	}
}

func TestAuthenticate_NormalizesEmail(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "admin@healthtrio.com", "correct horse", RoleAdmin, StatusActive)
	svc := NewService(repo, testIssuer())

	if _, _, err := svc.Authenticate(context.Background(), "  Admin@HealthTrio.com ", "correct horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "admin@healthtrio.com", "correct horse", RoleAdmin, StatusActive)
	svc := NewService(repo, testIssuer())

	_, _, err := svc.Authenticate(context.Background(), "admin@healthtrio.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc := NewService(newMockRepo(), testIssuer())

	_, _, err := svc.Authenticate(context.Background(), "nobody@healthtrio.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "old@healthtrio.com", "correct horse", RoleUser, StatusDisabled)
	svc := NewService(repo, testIssuer())

	// A disabled account must be indistinguishable from bad credentials.
	_, _, err := svc.Authenticate(context.Background(), "old@healthtrio.com", "correct horse")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, testIssuer())

	u, err := svc.Create(context.Background(), "New@HealthTrio.com", "longenough", RoleUser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "new@healthtrio.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if u.Status != StatusActive {
		t.Errorf("status = %q, want %q", u.Status, StatusActive)
	}
	if u.PasswordHash == "longenough" {
		t.Error("password must not be stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")) != nil {
		t.Error("stored hash does not verify against the password")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), testIssuer())

	cases := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"empty email", "", "longenough", RoleUser},
		{"not an email", "nobody", "longenough", RoleUser},
		{"short password", "a@healthtrio.com", "short", RoleUser},
		{"bad role", "a@healthtrio.com", "longenough", "superuser"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.email, tc.password, tc.role); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "taken@healthtrio.com", "longenough", RoleUser, StatusActive)
	svc := NewService(repo, testIssuer())

	_, err := svc.Create(context.Background(), "taken@healthtrio.com", "longenough", RoleUser)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestList_ReturnsAccounts(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "b@healthtrio.com", "longenough", RoleUser, StatusActive)
	seedUser(t, repo, "a@healthtrio.com", "longenough", RoleAdmin, StatusActive)
	svc := NewService(repo, testIssuer())

	users, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Email != "a@healthtrio.com" {
		t.Errorf("expected email ordering, got %q first", users[0].Email)
	}
}
