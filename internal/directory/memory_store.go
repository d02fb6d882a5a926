package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for tests and for running the
// portal without a Postgres DSN. Snapshots are delivered synchronously on
// every mutation, which keeps change order trivially correct.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]Document
	subs []*memorySubscription
	now  func() time.Time
}

type memorySubscription struct {
	collection string
	filters    []Filter
	order      OrderBy
	onSnapshot SnapshotFunc
	onError    ErrorFunc
	active     bool
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]map[string]Document),
		now:  time.Now,
	}
}

// SeedDocument installs a document with a caller-chosen id and creation
// timestamp. Intended for fixtures and demo data.
func (s *MemoryStore) SeedDocument(collection, id string, fields map[string]any, createdAt time.Time) {
	s.mu.Lock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]Document)
	}
	s.docs[collection][id] = Document{ID: id, Fields: cloneFields(fields), CreatedAt: createdAt}
	subs := s.matchingSubs(collection)
	s.mu.Unlock()

	s.notify(subs)
}

func (s *MemoryStore) FindOne(_ context.Context, collection, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrNoDocument
	}
	copied := doc
	copied.Fields = cloneFields(doc.Fields)
	return &copied, nil
}

func (s *MemoryStore) FindMany(_ context.Context, collection string, filters []Filter, order OrderBy) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(collection, filters, order), nil
}

func (s *MemoryStore) Subscribe(_ context.Context, collection string, filters []Filter, order OrderBy, onSnapshot SnapshotFunc, onError ErrorFunc) (UnsubscribeFunc, error) {
	sub := &memorySubscription{
		collection: collection,
		filters:    filters,
		order:      order,
		onSnapshot: onSnapshot,
		onError:    onError,
		active:     true,
	}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	initial := s.queryLocked(collection, filters, order)
	s.mu.Unlock()

	onSnapshot(initial)

	return func() {
		s.mu.Lock()
		sub.active = false
		s.mu.Unlock()
	}, nil
}

func (s *MemoryStore) Insert(_ context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]Document)
	}
	s.docs[collection][id] = Document{ID: id, Fields: cloneFields(fields), CreatedAt: s.now()}
	subs := s.matchingSubs(collection)
	s.mu.Unlock()

	s.notify(subs)
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	doc, ok := s.docs[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNoDocument
	}
	merged := cloneFields(doc.Fields)
	for k, v := range fields {
		merged[k] = v
	}
	doc.Fields = merged
	updated := s.now()
	doc.UpdatedAt = &updated
	s.docs[collection][id] = doc
	subs := s.matchingSubs(collection)
	s.mu.Unlock()

	s.notify(subs)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, collection, id string) error {
	s.mu.Lock()
	if _, ok := s.docs[collection][id]; !ok {
		s.mu.Unlock()
		return ErrNoDocument
	}
	delete(s.docs[collection], id)
	subs := s.matchingSubs(collection)
	s.mu.Unlock()

	s.notify(subs)
	return nil
}

// FailSubscriptions delivers err to every active subscription's error
// callback and deactivates them, simulating a revoked change feed.
func (s *MemoryStore) FailSubscriptions(err error) {
	s.mu.Lock()
	var failed []*memorySubscription
	for _, sub := range s.subs {
		if sub.active {
			sub.active = false
			failed = append(failed, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range failed {
		sub.onError(err)
	}
}

// matchingSubs snapshots the active subscriptions for a collection together
// with their current query results. Caller must hold the lock.
func (s *MemoryStore) matchingSubs(collection string) map[*memorySubscription][]Document {
	out := make(map[*memorySubscription][]Document)
	for _, sub := range s.subs {
		if sub.active && sub.collection == collection {
			out[sub] = s.queryLocked(collection, sub.filters, sub.order)
		}
	}
	return out
}

func (s *MemoryStore) notify(subs map[*memorySubscription][]Document) {
	for sub, docs := range subs {
		sub.onSnapshot(docs)
	}
}

func (s *MemoryStore) queryLocked(collection string, filters []Filter, order OrderBy) []Document {
	var out []Document
	for _, doc := range s.docs[collection] {
		if matches(doc, filters) {
			copied := doc
			copied.Fields = cloneFields(doc.Fields)
			out = append(out, copied)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ka, kb := sortKey(a, order.Field), sortKey(b, order.Field)
		if ka != kb {
			if order.Desc {
				return ka > kb
			}
			return ka < kb
		}
		return a.ID < b.ID
	})
	return out
}

func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		switch f.Op {
		case OpEqual:
			if textValue(doc.Fields[f.Field]) != textValue(f.Value) {
				return false
			}
		case OpIn:
			found := false
			for _, v := range f.Values {
				if textValue(doc.Fields[f.Field]) == v {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case OpGte:
			bound, ok := f.Value.(time.Time)
			if !ok || doc.CreatedAt.Before(bound) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// timeKey is fixed-width so lexicographic comparison matches time order.
const timeKey = "2006-01-02T15:04:05.000000000"

func sortKey(doc Document, field string) string {
	switch field {
	case "", "createdAt":
		return doc.CreatedAt.UTC().Format(timeKey)
	case "updatedAt":
		if doc.UpdatedAt == nil {
			return ""
		}
		return doc.UpdatedAt.UTC().Format(timeKey)
	default:
		return textValue(doc.Fields[field])
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
