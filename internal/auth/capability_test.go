package auth

import (
	"testing"

	"github.com/spec-kit/road-damage-service/internal/domain"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

func TestAuthorizeRoleMatrix(t *testing.T) {
	tests := []struct {
		role    domain.Role
		cap     Capability
		allowed bool
	}{
		{domain.RoleUser, CapReadOwn, true},
		{domain.RoleUser, CapWriteOwnCreate, true},
		{domain.RoleUser, CapReadAll, false},
		{domain.RoleUser, CapWriteStatus, false},
		{domain.RoleAdmin, CapReadOwn, true},
		{domain.RoleAdmin, CapWriteOwnCreate, true},
		{domain.RoleAdmin, CapReadAll, true},
		{domain.RoleAdmin, CapWriteStatus, true},
	}

	for _, tt := range tests {
		principal := &domain.Principal{UserID: "u1", Username: "u1", Role: tt.role}
		err := Authorize(principal, tt.cap)
		if tt.allowed && err != nil {
			t.Errorf("role %s should hold %s, got %v", tt.role, tt.cap, err)
		}
		if !tt.allowed {
			if err == nil {
				t.Errorf("role %s must not hold %s", tt.role, tt.cap)
			} else if !apperrors.IsCode(err, apperrors.CodeForbidden) {
				t.Errorf("role %s cap %s: want FORBIDDEN, got %v", tt.role, tt.cap, err)
			}
		}
		if got := Can(principal, tt.cap); got != tt.allowed {
			t.Errorf("Can(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.allowed)
		}
	}
}

func TestAuthorizeNilPrincipal(t *testing.T) {
	err := Authorize(nil, CapReadOwn)
	if err == nil {
		t.Fatal("nil principal must be rejected")
	}
	if !apperrors.IsCode(err, apperrors.CodeUnauthenticated) {
		t.Errorf("want UNAUTHENTICATED, got %v", err)
	}
}

func TestAuthorizeUnknownRole(t *testing.T) {
	principal := &domain.Principal{UserID: "u1", Username: "u1", Role: domain.Role("ghost")}
	err := Authorize(principal, CapReadOwn)
	if err == nil {
		t.Fatal("unknown role must be rejected")
	}
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Errorf("want FORBIDDEN, got %v", err)
	}
}
