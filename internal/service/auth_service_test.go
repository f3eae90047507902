package service

import (
	"context"
	"testing"

	"github.com/spec-kit/road-damage-service/internal/config"
	"github.com/spec-kit/road-damage-service/internal/domain"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

func TestRegisterAndVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Smith",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Error("registered user must have an id")
	}
	if user.Role != domain.RoleUser {
		t.Errorf("new accounts get role user, got %s", user.Role)
	}

	verified, err := env.auth.Verify(ctx, "alice", "s3cret-password")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.ID != user.ID {
		t.Errorf("verified wrong user: %s != %s", verified.ID, user.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"empty username", RegisterInput{Email: "a@b.com", FullName: "A", Password: "pw"}},
		{"empty email", RegisterInput{Username: "a", FullName: "A", Password: "pw"}},
		{"empty full name", RegisterInput{Username: "a", Email: "a@b.com", Password: "pw"}},
		{"empty password", RegisterInput{Username: "a", Email: "a@b.com", FullName: "A"}},
		{"email without at sign", RegisterInput{Username: "a", Email: "not-an-email", FullName: "A", Password: "pw"}},
		{"whitespace username", RegisterInput{Username: "   ", Email: "a@b.com", FullName: "A", Password: "pw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.auth.Register(ctx, tt.input); !apperrors.IsCode(err, apperrors.CodeValidationFailed) {
				t.Errorf("want VALIDATION_FAILED, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "alice")

	_, err := env.auth.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		FullName: "Other Alice",
		Password: "pw",
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("duplicate username: want CONFLICT, got %v", err)
	}

	_, err = env.auth.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		FullName: "Second Alice",
		Password: "pw",
	})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("duplicate email: want CONFLICT, got %v", err)
	}
}

func TestVerifyRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "alice")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown username", "nobody", "password-alice"},
		{"wrong password", "alice", "wrong-password"},
		{"near-miss password", "alice", "password-alicE"},
		{"empty password", "alice", ""},
		{"empty username", "", "password-alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Verify(ctx, tt.username, tt.password)
			if !apperrors.IsCode(err, apperrors.CodeInvalidCredentials) {
				t.Errorf("want INVALID_CREDENTIALS, got %v", err)
			}
		})
	}
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered, _ := env.registerUser(t, "alice")

	user, token, expiresAt, err := env.auth.Login(ctx, "alice", "password-alice")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("login returned wrong user")
	}
	if token == "" {
		t.Fatal("login must return a token")
	}
	if expiresAt.IsZero() {
		t.Error("login must return an expiry")
	}

	// the same token resolves repeatedly until revoked
	for i := 0; i < 3; i++ {
		resolved, principal, err := env.auth.Resolve(ctx, token)
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i+1, err)
		}
		if resolved.ID != registered.ID {
			t.Errorf("resolved wrong user")
		}
		if principal.Role != domain.RoleUser {
			t.Errorf("principal role: want user, got %s", principal.Role)
		}
	}
}

func TestResolveRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"unsigned shape", "eyJhbGciOiJub25lIn0.e30."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.auth.Resolve(ctx, tt.token)
			if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
				t.Errorf("want UNAUTHENTICATED, got %v", err)
			}
		})
	}
}

func TestRevokeInvalidatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "alice")

	_, token, _, err := env.auth.Login(ctx, "alice", "password-alice")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, _, err := env.auth.Resolve(ctx, token); err != nil {
		t.Fatalf("Resolve before revoke: %v", err)
	}

	if err := env.auth.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, _, err := env.auth.Resolve(ctx, token); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Errorf("revoked token: want UNAUTHENTICATED, got %v", err)
	}

	// revoking again and revoking garbage are no-ops
	if err := env.auth.Revoke(ctx, token); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
	if err := env.auth.Revoke(ctx, "garbage"); err != nil {
		t.Errorf("Revoke(garbage): %v", err)
	}
}

func TestSessionExpiryInvalidatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "alice")

	_, token, _, err := env.auth.Login(ctx, "alice", "password-alice")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	env.redis.FastForward(testConfig().Auth.SessionTTL() * 2)

	if _, _, err := env.auth.Resolve(ctx, token); !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Errorf("expired session: want UNAUTHENTICATED, got %v", err)
	}
}

func TestTokensAreIndependentSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.registerUser(t, "alice")

	_, first, _, err := env.auth.Login(ctx, "alice", "password-alice")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, second, _, err := env.auth.Login(ctx, "alice", "password-alice")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first == second {
		t.Fatal("each login must mint a distinct session")
	}

	if err := env.auth.Revoke(ctx, first); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, _, err := env.auth.Resolve(ctx, first); err == nil {
		t.Error("revoked session must not resolve")
	}
	if _, _, err := env.auth.Resolve(ctx, second); err != nil {
		t.Errorf("other session must survive: %v", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cfg := config.BootstrapConfig{
		AdminUsername: "admin",
		AdminEmail:    "admin@roaddamage.local",
		AdminFullName: "System Administrator",
		AdminPassword: "bootstrap-password",
	}
	admin, err := env.auth.EnsureBootstrapAdmin(ctx, cfg)
	if err != nil {
		t.Fatalf("EnsureBootstrapAdmin: %v", err)
	}
	if admin == nil || admin.Role != domain.RoleAdmin {
		t.Fatalf("seeded account must be an admin, got %+v", admin)
	}

	verified, err := env.auth.Verify(ctx, "admin", "bootstrap-password")
	if err != nil {
		t.Fatalf("Verify seeded admin: %v", err)
	}
	if verified.ID != admin.ID {
		t.Error("verify resolved a different account")
	}

	// seeding again keeps the existing account and its password
	again, err := env.auth.EnsureBootstrapAdmin(ctx, config.BootstrapConfig{
		AdminUsername: "admin",
		AdminPassword: "different-password",
	})
	if err != nil {
		t.Fatalf("second EnsureBootstrapAdmin: %v", err)
	}
	if again.ID != admin.ID {
		t.Error("seeding must not replace an existing admin")
	}
	if _, err := env.auth.Verify(ctx, "admin", "bootstrap-password"); err != nil {
		t.Errorf("original password must still work: %v", err)
	}
}

func TestEnsureBootstrapAdminSkippedWithoutPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.auth.EnsureBootstrapAdmin(ctx, config.BootstrapConfig{AdminUsername: "admin"})
	if err != nil {
		t.Fatalf("EnsureBootstrapAdmin: %v", err)
	}
	if admin != nil {
		t.Error("seeding without a password must be skipped")
	}
	if _, err := env.store.Users().GetByUsername(ctx, "admin"); err == nil {
		t.Error("no account should have been created")
	}
}
