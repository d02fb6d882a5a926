// Package directory abstracts the remote document store and authentication
// service the portal is built on: query-by-field reads, live subscriptions
// delivering authoritative snapshots, and credential verification.
package directory

import (
	"context"
	"errors"
	"time"
)

// Collections known to the portal.
const (
	CollectionCollaborators = "collaborators"
	CollectionManagers      = "managers"
	CollectionAccounts      = "accounts"
	CollectionAnnouncements = "announcements"
	CollectionIncidents     = "incidents"
	CollectionEmergencies   = "emergencies"
	CollectionFeedbacks     = "feedbacks"
)

// ErrNoDocument is returned when a lookup or mutation targets an id that does
// not exist in the collection.
var ErrNoDocument = errors.New("directory: no such document")

// Op is a filter predicate operator.
type Op string

const (
	OpEqual Op = "eq"
	OpIn    Op = "in"
	// OpGte is supported on the createdAt meta field only.
	OpGte Op = "gte"
)

// Filter is a single server-side predicate; multiple filters are combined
// with AND.
type Filter struct {
	Field  string
	Op     Op
	Value  any
	Values []string
}

// Eq builds an equality predicate on a document field.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// In builds a membership predicate on a document field.
func In(field string, values ...string) Filter {
	return Filter{Field: field, Op: OpIn, Values: values}
}

// CreatedSince builds a lower-bound predicate on the server-assigned
// creation timestamp.
func CreatedSince(t time.Time) Filter {
	return Filter{Field: "createdAt", Op: OpGte, Value: t}
}

// OrderBy selects the result ordering; id always breaks ties so the order is
// total.
type OrderBy struct {
	Field string
	Desc  bool
}

// Document is a single record as stored in the directory. CreatedAt and
// UpdatedAt are server-assigned.
type Document struct {
	ID        string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// String returns the named field as a string, or "" when absent or of
// another type.
func (d Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

// Bool returns the named field as a bool, defaulting to false.
func (d Document) Bool(field string) bool {
	b, _ := d.Fields[field].(bool)
	return b
}

// SnapshotFunc receives the full, ordered result set of a subscription each
// time the underlying data changes.
type SnapshotFunc func(docs []Document)

// ErrorFunc receives a terminal subscription failure. It is invoked at most
// once; the subscription is dead afterwards.
type ErrorFunc func(err error)

// UnsubscribeFunc tears down a subscription. Safe to call more than once.
type UnsubscribeFunc func()

// Store is the document-store contract consumed by the portal core.
//
// Subscribe delivers snapshots in the order the underlying data changed, on a
// single goroutine per subscription. Every snapshot is the complete matching
// result set; consumers replace their local view rather than merging.
type Store interface {
	FindOne(ctx context.Context, collection, id string) (*Document, error)
	FindMany(ctx context.Context, collection string, filters []Filter, order OrderBy) ([]Document, error)
	Subscribe(ctx context.Context, collection string, filters []Filter, order OrderBy, onSnapshot SnapshotFunc, onError ErrorFunc) (UnsubscribeFunc, error)
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Remove(ctx context.Context, collection, id string) error
}

// Identity is the result of a successful credential verification.
type Identity struct {
	UID   string
	Email string
	Token string
}

// Authenticator verifies manager credentials and tracks the authenticated
// session so a failed profile lookup can undo the side effect.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	Deauthenticate(ctx context.Context, uid string) error
	Authenticated(ctx context.Context, uid string) (bool, error)
}
