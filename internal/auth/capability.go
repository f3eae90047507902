package auth

import (
	"github.com/spec-kit/road-damage-service/internal/domain"
	apperrors "github.com/spec-kit/road-damage-service/pkg/util"
)

// Capability names a permission an operation requires. Roles grant fixed
// capability sets; ownership scoping for read_own and write_own_create is
// enforced by the ticket service against the resource itself.
type Capability string

const (
	CapReadOwn        Capability = "read_own"
	CapReadAll        Capability = "read_all"
	CapWriteOwnCreate Capability = "write_own_create"
	CapWriteStatus    Capability = "write_status"
)

var roleCapabilities = map[domain.Role]map[Capability]struct{}{
	domain.RoleUser: {
		CapReadOwn:        {},
		CapWriteOwnCreate: {},
	},
	domain.RoleAdmin: {
		CapReadOwn:        {},
		CapReadAll:        {},
		CapWriteOwnCreate: {},
		CapWriteStatus:    {},
	},
}

// Authorize admits or rejects the principal for the required capability.
// Every policy decision in the service layer funnels through here so read
// and write paths cannot diverge.
func Authorize(principal *domain.Principal, required Capability) error {
	if principal == nil {
		return apperrors.NewUnauthenticated("authentication required")
	}
	caps, ok := roleCapabilities[principal.Role]
	if !ok {
		return apperrors.NewForbidden("unknown role")
	}
	if _, ok := caps[required]; !ok {
		return apperrors.NewForbidden("insufficient role")
	}
	return nil
}

// Can reports whether the principal holds the capability.
func Can(principal *domain.Principal, required Capability) bool {
	return Authorize(principal, required) == nil
}
