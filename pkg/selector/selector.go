// Package selector defines ResourceSelector: a predicate over individual
// offer resources expressing which roles/reservations are eligible for a
// given matching attempt.
package selector

import (
	"github.com/samber/lo"

	"github.com/mesosphere/marathon-go/pkg/ledger"
)

// ResourceSelector decides whether a single offer resource fragment is
// eligible for consumption in a particular matching attempt.
type ResourceSelector struct {
	name      string
	accepts   func(ledger.OfferResource) bool
	allowedRoles []ledger.Role
}

func (s ResourceSelector) String() string { return s.name }

// Accepts reports whether fragment may be consumed under this selector.
func (s ResourceSelector) Accepts(fragment ledger.OfferResource) bool {
	return s.accepts(fragment)
}

// AllowedRoles returns the roles this selector permits, for the role-safety
// property (spec §8 property 3).
func (s ResourceSelector) AllowedRoles() []ledger.Role {
	return s.allowedRoles
}

// Reservable selects only resources without a dynamic reservation whose
// role is ledger.Unreserved or one of roles.
func Reservable(roles []ledger.Role) ResourceSelector {
	allowed := append([]ledger.Role{ledger.Unreserved}, roles...)
	return ResourceSelector{
		name:         "reservable",
		allowedRoles: lo.Uniq(allowed),
		accepts: func(r ledger.OfferResource) bool {
			return !r.Reservation.IsReserved() && lo.Contains(allowed, r.Role)
		},
	}
}

// ReservedWithLabels selects only resources dynamically reserved under one
// of roles whose reservation labels match labels exactly.
func ReservedWithLabels(roles []ledger.Role, labels map[string]string) ResourceSelector {
	return ResourceSelector{
		name:         "reservedWithLabels",
		allowedRoles: roles,
		accepts: func(r ledger.OfferResource) bool {
			return r.Reservation.IsReserved() &&
				lo.Contains(roles, r.Role) &&
				ledger.LabelsMatch(r.Reservation.Labels, labels)
		},
	}
}

// AnyRole selects resources under ledger.Unreserved or any of the given
// roles, reserved or not, for ordinary (non-stateful) scheduling.
func AnyRole(roles []ledger.Role) ResourceSelector {
	allowed := append([]ledger.Role{ledger.Unreserved}, roles...)
	return ResourceSelector{
		name:         "anyRole",
		allowedRoles: lo.Uniq(allowed),
		accepts: func(r ledger.OfferResource) bool {
			return lo.Contains(allowed, r.Role)
		},
	}
}
