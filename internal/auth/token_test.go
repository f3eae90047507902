package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/road-damage-service/internal/domain"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func testSession(role domain.Role) domain.Session {
	now := time.Now()
	return domain.Session{
		ID:        "sid-1",
		UserID:    "uid-1",
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	tests := []struct {
		name string
		role domain.Role
	}{
		{name: "user role", role: domain.RoleUser},
		{name: "admin role", role: domain.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := testSession(tt.role)
			token, err := tm.GenerateToken(session)
			if err != nil {
				t.Fatalf("GenerateToken: %v", err)
			}
			claims, err := tm.ParseToken(token)
			if err != nil {
				t.Fatalf("ParseToken: %v", err)
			}
			if claims.SessionID != session.ID {
				t.Errorf("SessionID = %q, want %q", claims.SessionID, session.ID)
			}
			if claims.UserID != session.UserID {
				t.Errorf("UserID = %q, want %q", claims.UserID, session.UserID)
			}
			if claims.Role != tt.role {
				t.Errorf("Role = %q, want %q", claims.Role, tt.role)
			}
		})
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := tm.ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) = nil, want error", token)
		}
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("another-secret-also-32-chars-long!!", time.Hour)

	token, err := tm.GenerateToken(testSession(domain.RoleUser))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with a different secret must not parse")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	session := testSession(domain.RoleUser)
	session.IssuedAt = time.Now().Add(-2 * time.Hour)
	session.ExpiresAt = time.Now().Add(-time.Hour)

	token, err := tm.GenerateToken(session)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Error("expired token must not parse")
	}
}
