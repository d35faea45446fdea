// Package policy decides who may perform which action. Decisions are pure
// functions over the actor and the action, evaluated before any data-store
// access; handlers short-circuit on a non-Allow outcome.
package policy

import (
	apperrors "github.com/KGODTAO/bookshop-api/pkg/errors"

	"github.com/KGODTAO/bookshop-api/internal/domain"
)

// Decision is the outcome of looking up an action in the policy table.
type Decision int

const (
	Allow Decision = iota
	RequireAuthenticated
	RequireAdmin
	RequireOwnerOrAdmin
	Deny
)

// Actor is the authenticated (or anonymous) principal of a request.
type Actor struct {
	UserID string
	Role   string
}

// Anonymous returns an actor with no identity.
func Anonymous() Actor {
	return Actor{}
}

// IsAuthenticated reports whether the actor carries an identity.
func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// Action names an operation subject to the policy table.
type Action string

const (
	ActionBookList      Action = "book.list"
	ActionBookRead      Action = "book.read"
	ActionBookSearch    Action = "book.search"
	ActionBookWrite     Action = "book.write"
	ActionCategoryRead  Action = "category.read"
	ActionCategoryWrite Action = "category.write"

	ActionReviewList   Action = "review.list"
	ActionReviewCreate Action = "review.create"
	ActionReviewMutate Action = "review.mutate"

	ActionEngagementToggle Action = "engagement.toggle"
	ActionFavouriteList    Action = "favourite.list"

	ActionOrderCreate Action = "order.create"
	ActionOrderList   Action = "order.list"
	ActionOrderRead   Action = "order.read"
	ActionOrderUpdate Action = "order.update"
	ActionOrderDelete Action = "order.delete"
)

// table maps each action to its required decision. Actions absent from the
// table are denied.
var table = map[Action]Decision{
	ActionBookList:      Allow,
	ActionBookRead:      Allow,
	ActionBookSearch:    Allow,
	ActionBookWrite:     RequireAdmin,
	ActionCategoryRead:  Allow,
	ActionCategoryWrite: RequireAdmin,

	ActionReviewList:   Allow,
	ActionReviewCreate: RequireAuthenticated,
	ActionReviewMutate: RequireOwnerOrAdmin,

	ActionEngagementToggle: RequireAuthenticated,
	ActionFavouriteList:    RequireAuthenticated,

	ActionOrderCreate: RequireAuthenticated,
	ActionOrderList:   RequireAuthenticated,
	ActionOrderRead:   RequireOwnerOrAdmin,
	ActionOrderUpdate: RequireAdmin,
	ActionOrderDelete: Deny,
}

// Decide returns the decision for an action.
func Decide(action Action) Decision {
	d, ok := table[action]
	if !ok {
		return Deny
	}
	return d
}

// Authenticate rejects anonymous actors. Owner-scoped operations call it
// before loading the resource so anonymous callers are turned away without
// touching the store.
func Authenticate(actor Actor) error {
	if !actor.IsAuthenticated() {
		return apperrors.Unauthorized("authentication required")
	}
	return nil
}

// Authorize evaluates an actor against an action and returns nil when the
// action is permitted. For owner-scoped actions ownerID identifies the
// resource owner; pass an empty string for actions that are not
// owner-scoped. Unauthenticated actors get a 401, authenticated but
// insufficient actors a 403.
func Authorize(actor Actor, action Action, ownerID string) error {
	switch Decide(action) {
	case Allow:
		return nil
	case RequireAuthenticated:
		if !actor.IsAuthenticated() {
			return apperrors.Unauthorized("authentication required")
		}
		return nil
	case RequireAdmin:
		if !actor.IsAuthenticated() {
			return apperrors.Unauthorized("authentication required")
		}
		if !actor.IsAdmin() {
			return apperrors.Forbidden("admin role required")
		}
		return nil
	case RequireOwnerOrAdmin:
		if !actor.IsAuthenticated() {
			return apperrors.Unauthorized("authentication required")
		}
		if actor.IsAdmin() || actor.UserID == ownerID {
			return nil
		}
		return apperrors.Forbidden("access restricted to the resource owner")
	default:
		return apperrors.Forbidden("operation not permitted")
	}
}
