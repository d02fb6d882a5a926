// Package announce keeps a local ordered view of active announcements
// consistent with the directory service in near-real-time.
package announce

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// State of the live subscription.
type State int

const (
	StateStopped State = iota
	StateSubscribing
	StateLive
)

func (s State) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateLive:
		return "live"
	default:
		return "stopped"
	}
}

// ChangeKind classifies what triggered a change delivery, so consumers can
// distinguish first-render from new-arrival.
type ChangeKind int

const (
	ChangeInitial ChangeKind = iota
	ChangeIncremental
)

func (k ChangeKind) String() string {
	if k == ChangeInitial {
		return "initial"
	}
	return "incremental"
}

// ChangeFunc receives the full ordered collection on every snapshot.
type ChangeFunc func(items []domain.Announcement, kind ChangeKind)

// ErrorFunc receives a terminal subscription failure, surfaced once.
type ErrorFunc func(err error)

// Synchronizer is the live-subscription state machine. Exactly one
// subscription is live at a time; restarting tears down the previous one and
// a generation counter discards snapshots from stale subscriptions. The
// cached collection is owned exclusively by the snapshot handler — writes
// go through to the directory and come back via the subscription.
type Synchronizer struct {
	store  directory.Store
	logger *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	loaded     bool
	unsub      directory.UnsubscribeFunc
	items      []domain.Announcement

	nextListener    int
	changeListeners map[int]ChangeFunc
	errorListeners  map[int]ErrorFunc
}

// NewSynchronizer builds a stopped synchronizer.
func NewSynchronizer(store directory.Store, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		store:           store,
		logger:          logger,
		changeListeners: make(map[int]ChangeFunc),
		errorListeners:  make(map[int]ErrorFunc),
	}
}

// Start opens a live query scoped to the given audience. Announcements are
// filtered server-side to active records addressed to everyone or to the
// scope, ordered newest-first. Any previous subscription is torn down first.
func (s *Synchronizer) Start(ctx context.Context, audienceScope string) error {
	s.mu.Lock()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.generation++
	gen := s.generation
	s.state = StateSubscribing
	s.loaded = false
	s.items = nil
	s.mu.Unlock()

	filters := []directory.Filter{
		directory.Eq("active", true),
		directory.In("audience", domain.AudienceAll, audienceScope),
	}
	order := directory.OrderBy{Field: "createdAt", Desc: true}

	unsub, err := s.store.Subscribe(ctx, directory.CollectionAnnouncements, filters, order,
		func(docs []directory.Document) { s.deliver(gen, docs) },
		func(err error) { s.fail(gen, err) },
	)
	if err != nil {
		s.mu.Lock()
		if gen == s.generation {
			s.state = StateStopped
		}
		s.mu.Unlock()
		return apperrors.NewConnectionError(err)
	}

	s.mu.Lock()
	if gen != s.generation {
		// A newer Start or a Stop superseded this registration while it was
		// in flight; its subscription must not survive.
		s.mu.Unlock()
		unsub()
		return nil
	}
	s.unsub = unsub
	s.mu.Unlock()
	return nil
}

// Stop unsubscribes and clears the cached collection. Idempotent.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.generation++
	s.state = StateStopped
	s.loaded = false
	s.items = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// deliver applies a snapshot belonging to generation gen. Snapshots from
// stale generations are discarded.
func (s *Synchronizer) deliver(gen uint64, docs []directory.Document) {
	items := make([]domain.Announcement, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeAnnouncement(doc))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Less(items[j]) })

	s.mu.Lock()
	if gen != s.generation || s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	kind := ChangeIncremental
	if !s.loaded {
		s.loaded = true
		s.state = StateLive
		kind = ChangeInitial
	}
	s.items = items
	listeners := make([]ChangeFunc, 0, len(s.changeListeners))
	for _, fn := range s.changeListeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(copyItems(items), kind)
	}
}

// fail handles a terminal subscription error: transition to Stopped, clear
// the cache, and surface the error once via the error listeners. No
// auto-retry; the session lifecycle decides whether to restart.
func (s *Synchronizer) fail(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.state = StateStopped
	s.loaded = false
	s.items = nil
	s.unsub = nil
	listeners := make([]ErrorFunc, 0, len(s.errorListeners))
	for _, fn := range s.errorListeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	s.logger.Warn("announcement subscription failed", zap.Error(err))
	typed := err
	if apperrors.CodeOf(err) == apperrors.CodeInternal {
		typed = apperrors.NewConnectionError(err)
	}
	for _, fn := range listeners {
		fn(typed)
	}
}

// OnChange registers a listener for snapshot deliveries. The returned
// function removes it.
func (s *Synchronizer) OnChange(fn ChangeFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.changeListeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.changeListeners, id)
	}
}

// OnError registers a listener for terminal subscription failures.
func (s *Synchronizer) OnError(fn ErrorFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.errorListeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.errorListeners, id)
	}
}

// Items returns a copy of the current ordered collection.
func (s *Synchronizer) Items() []domain.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// Count returns the number of cached announcements.
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// State returns the current subscription state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Publish validates and writes a new announcement through to the directory
// with active=true and a server-assigned timestamp. The call resolves once
// the write is acknowledged; the cached collection is only updated when the
// subscription reflects it.
func (s *Synchronizer) Publish(ctx context.Context, input domain.NewAnnouncement) (*domain.Announcement, error) {
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if title == "" || body == "" {
		return nil, apperrors.NewValidationError("title and body are required", nil)
	}
	audience := input.Audience
	if audience == "" {
		audience = domain.AudienceAll
	}

	fields := map[string]any{
		"title":    title,
		"body":     body,
		"audience": audience,
		"active":   true,
	}
	id, err := s.store.Insert(ctx, directory.CollectionAnnouncements, fields)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	doc, err := s.store.FindOne(ctx, directory.CollectionAnnouncements, id)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	published := decodeAnnouncement(*doc)
	return &published, nil
}

// SetActive toggles visibility. Writing an unchanged value is legal and
// observably a no-op.
func (s *Synchronizer) SetActive(ctx context.Context, id string, active bool) error {
	return s.write(ctx, id, map[string]any{"active": active})
}

// Edit replaces title and body of an existing announcement.
func (s *Synchronizer) Edit(ctx context.Context, id, title, body string) error {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return apperrors.NewValidationError("title and body are required", nil)
	}
	return s.write(ctx, id, map[string]any{"title": title, "body": body})
}

// Remove permanently deletes an announcement. The record disappears from
// the next snapshot every listener receives.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, directory.CollectionAnnouncements, id); err != nil {
		if errors.Is(err, directory.ErrNoDocument) {
			return apperrors.NewNotFound("announcement", map[string]any{"id": id})
		}
		return apperrors.NewConnectionError(err)
	}
	return nil
}

func (s *Synchronizer) write(ctx context.Context, id string, fields map[string]any) error {
	if err := s.store.Update(ctx, directory.CollectionAnnouncements, id, fields); err != nil {
		if errors.Is(err, directory.ErrNoDocument) {
			return apperrors.NewNotFound("announcement", map[string]any{"id": id})
		}
		return apperrors.NewConnectionError(err)
	}
	return nil
}

func decodeAnnouncement(doc directory.Document) domain.Announcement {
	audience := doc.String("audience")
	if audience == "" {
		audience = domain.AudienceAll
	}
	return domain.Announcement{
		ID:        doc.ID,
		Title:     doc.String("title"),
		Body:      doc.String("body"),
		Active:    doc.Bool("active"),
		Audience:  audience,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func copyItems(items []domain.Announcement) []domain.Announcement {
	out := make([]domain.Announcement, len(items))
	copy(out, items)
	return out
}
