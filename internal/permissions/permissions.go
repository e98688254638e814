// Package permissions implements the access-control predicate algebra.
// Atomic predicates answer "may this actor perform this action"; And, Or
// and Not compose them, evaluated short-circuit left to right. A denial
// carries the first failing predicate's message so clients see which rule
// blocked them rather than a generic forbidden.
package permissions

import (
	"net/http"

	"go-catalog/internal/user"
)

// Request is the evaluation context: the HTTP method plus the actor
// (nil when anonymous).
type Request struct {
	Method string
	Actor  *user.User
}

// Owned is implemented by objects whose permissions depend on authorship.
type Owned interface {
	OwnerID() uint
}

// Permission is a boolean predicate over a request. Check gates the
// collection level (create, list); CheckObject refines it once a concrete
// object is in scope (retrieve, update, delete). Predicates with no
// object-level meaning fall back to their collection verdict.
type Permission interface {
	Check(r Request) (ok bool, message string)
	CheckObject(r Request, obj Owned) (ok bool, message string)
}

type predicate struct {
	message  string
	check    func(r Request) bool
	checkObj func(r Request, obj Owned) bool
}

func (p predicate) Check(r Request) (bool, string) {
	// Object-only predicates pass vacuously at the collection level and
	// must therefore be composed with an authentication check.
	if p.check == nil {
		return true, ""
	}
	if p.check(r) {
		return true, ""
	}
	return false, p.message
}

func (p predicate) CheckObject(r Request, obj Owned) (bool, string) {
	if p.checkObj == nil {
		return p.Check(r)
	}
	if p.checkObj(r, obj) {
		return true, ""
	}
	return false, p.message
}

var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// ReadOnly permits the non-mutating methods.
var ReadOnly Permission = predicate{
	message: "Data is read-only!",
	check:   func(r Request) bool { return safeMethods[r.Method] },
}

var IsAdmin Permission = predicate{
	message: "Only administrators may modify this data!",
	check:   func(r Request) bool { return r.Actor != nil && r.Actor.IsAdmin() },
}

var IsModerator Permission = predicate{
	message: "Only moderators may modify this data!",
	check:   func(r Request) bool { return r.Actor != nil && r.Actor.IsModerator() },
}

var Authenticated Permission = predicate{
	message: "Authentication required!",
	check:   func(r Request) bool { return r.Actor != nil },
}

// IsOwner is object-level only: it compares the object's author with the
// actor and has no meaning without a concrete object.
var IsOwner Permission = predicate{
	message: "Only the author may modify this data!",
	checkObj: func(r Request, obj Owned) bool {
		return r.Actor != nil && obj != nil && obj.OwnerID() == r.Actor.ID
	},
}

type andPerm struct{ ops []Permission }

// And passes when every operand passes, reporting the first failure.
func And(ops ...Permission) Permission { return andPerm{ops} }

func (a andPerm) Check(r Request) (bool, string) {
	for _, op := range a.ops {
		if ok, msg := op.Check(r); !ok {
			return false, msg
		}
	}
	return true, ""
}

func (a andPerm) CheckObject(r Request, obj Owned) (bool, string) {
	for _, op := range a.ops {
		if ok, msg := op.CheckObject(r, obj); !ok {
			return false, msg
		}
	}
	return true, ""
}

type orPerm struct{ ops []Permission }

// Or passes when any operand passes. At the object level an operand counts
// only if both its collection and object checks pass.
func Or(ops ...Permission) Permission { return orPerm{ops} }

func (o orPerm) Check(r Request) (bool, string) {
	var first string
	for _, op := range o.ops {
		ok, msg := op.Check(r)
		if ok {
			return true, ""
		}
		if first == "" {
			first = msg
		}
	}
	return false, first
}

func (o orPerm) CheckObject(r Request, obj Owned) (bool, string) {
	var first string
	for _, op := range o.ops {
		ok, msg := op.Check(r)
		if !ok {
			if first == "" {
				first = msg
			}
			continue
		}
		ok, msg = op.CheckObject(r, obj)
		if ok {
			return true, ""
		}
		if first == "" {
			first = msg
		}
	}
	return false, first
}

type notPerm struct{ op Permission }

const notMessage = "Permission denied!"

// Not inverts a predicate. The inverted predicate carries a generic
// message since the operand's message describes the opposite condition.
func Not(op Permission) Permission { return notPerm{op} }

func (n notPerm) Check(r Request) (bool, string) {
	if ok, _ := n.op.Check(r); ok {
		return false, notMessage
	}
	return true, ""
}

func (n notPerm) CheckObject(r Request, obj Owned) (bool, string) {
	if ok, _ := n.op.CheckObject(r, obj); ok {
		return false, notMessage
	}
	return true, ""
}

// Per-resource compositions.
var (
	// Catalog guards categories, genres and titles: anyone may read,
	// only administrators may write.
	Catalog = Or(IsAdmin, ReadOnly)

	// Feedback guards reviews and comments: authors manage their own,
	// admins and moderators manage any, anyone may read.
	Feedback = Or(And(IsOwner, Authenticated), IsAdmin, IsModerator, ReadOnly)

	// AdminOnly guards the user collection.
	AdminOnly = IsAdmin

	// SelfProfile guards /users/me.
	SelfProfile = Authenticated
)
