// Package policy makes authorization decisions for the engine. It is a
// pure function over the caller identity, the requested action, and the
// owner of the target entity; it touches no storage.
package policy

import (
	"errors"

	"github.com/campushub/clubevents/internal/auth"
)

// Action is a category of operation subject to an authorization check.
type Action int

const (
	ActionUnspecified Action = iota
	ActionCreateClub
	ActionUpdateClub
	ActionDeleteClub
	ActionApproveClub
	ActionCreateEvent
	ActionUpdateEvent
	ActionDeleteEvent
	ActionApproveEvent
	ActionRegister
	ActionUpdateRegistration
	ActionCancelRegistration
	ActionViewRegistration
	ActionListOwnRegistrations
	ActionListEventRegistrations
	ActionListAllRegistrations
	ActionListCoordinators
)

var (
	// ErrRoleForbidden means the caller's role may never perform the
	// action, regardless of which entity it targets.
	ErrRoleForbidden = errors.New("not authorized")

	// ErrNotOwner means the caller's role allows the action but only on
	// entities the caller owns, and this target belongs to someone else.
	ErrNotOwner = errors.New("not authorized for this resource")
)

// allowedRoles maps each action to the roles that may attempt it.
// Admin is implicitly allowed everywhere and is not listed.
var allowedRoles = map[Action][]auth.Role{
	ActionCreateClub:             {auth.RoleCoordinator},
	ActionUpdateClub:             {auth.RoleCoordinator},
	ActionDeleteClub:             {},
	ActionApproveClub:            {},
	ActionCreateEvent:            {auth.RoleCoordinator},
	ActionUpdateEvent:            {auth.RoleCoordinator},
	ActionDeleteEvent:            {auth.RoleCoordinator},
	ActionApproveEvent:           {},
	ActionRegister:               {auth.RoleStudent},
	ActionUpdateRegistration:     {auth.RoleCoordinator},
	ActionCancelRegistration:     {auth.RoleStudent},
	ActionViewRegistration:       {auth.RoleStudent, auth.RoleCoordinator},
	ActionListOwnRegistrations:   {auth.RoleStudent},
	ActionListEventRegistrations: {auth.RoleCoordinator},
	ActionListAllRegistrations:   {},
	ActionListCoordinators:       {},
}

// ownershipChecked lists the actions that are further restricted to the
// target's owner when attempted by a non-admin.
var ownershipChecked = map[Action]bool{
	ActionUpdateClub:         true,
	ActionUpdateEvent:        true,
	ActionDeleteEvent:        true,
	ActionCancelRegistration: true,
}

// Authorize decides whether the caller may perform action on a target
// owned by ownerID. Pass an empty ownerID for a role-only check (used
// before the target is looked up, so that a caller whose role can never
// perform the action learns nothing about whether the target exists).
//
// Note ActionRegister and ActionCancelRegistration are granted to
// students only: a registration is always created for the caller
// themselves and cancelled only by its owner, so the admin bypass
// deliberately does not apply to either. An admin wanting a
// registration gone marks it cancelled via ActionUpdateRegistration
// instead, which keeps the row.
func Authorize(caller auth.Identity, action Action, ownerID string) error {
	if caller.Role == auth.RoleAdmin &&
		action != ActionRegister && action != ActionCancelRegistration {
		return nil
	}

	roles, ok := allowedRoles[action]
	if !ok {
		return ErrRoleForbidden
	}
	allowed := false
	for _, r := range roles {
		if caller.Role == r {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrRoleForbidden
	}

	if ownerID != "" && ownershipChecked[action] && caller.UserID != ownerID {
		return ErrNotOwner
	}
	return nil
}

// IsDenied reports whether err is an authorization denial.
func IsDenied(err error) bool {
	return errors.Is(err, ErrRoleForbidden) || errors.Is(err, ErrNotOwner)
}
