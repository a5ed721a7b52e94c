// Package relation implements the optimistic relation stores: locally cached
// views of the favorites, interests, likes, and comments collections that
// apply mutations before the network round-trip completes and roll back on
// failure.
package relation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventhound/internal/authority"
	"eventhound/internal/models"
	"eventhound/internal/session"
)

// Scope identifies whose records a load fetches: the actor's own records
// (favorites) or all records aimed at one target (interests, likes,
// comments).
type Scope struct {
	Actor  models.ID
	Target models.ID
}

// Kind describes one relation collection: how to query it, how to read its
// records, and how to build the optimistic placeholder and the create body.
type Kind[T any] struct {
	Collection string
	// Unique marks at-most-one-record-per-(actor,target) kinds, the ones
	// Toggle operates on.
	Unique bool
	// PrependNew controls where optimistic inserts land in the cache;
	// comments are held newest first.
	PrependNew bool

	ListQuery func(scope Scope) url.Values
	RecordID  func(rec T) models.ID
	ActorID   func(rec T) models.ID
	TargetID  func(rec T) models.ID
	// NewRecord builds the optimistic placeholder for Toggle. Only required
	// for Unique kinds.
	NewRecord func(id, actor, target models.ID, now time.Time) T
	// Body builds the create request body. The placeholder id is never sent;
	// the authority assigns the final one.
	Body func(rec T) any
}

type pendingOp uint8

const (
	opNone pendingOp = iota
	opAdd
	opRemove
)

// flight is the in-flight slot for one target. Its mutex queues toggles on
// the same target; op/rec describe the optimistic state to preserve when a
// reconciliation reload replaces the cache mid-flight.
type flight[T any] struct {
	mu   sync.Mutex
	op   pendingOp
	rec  T
	refs int
}

// Store is the generic optimistic relation store. All reads return
// snapshots; only the store mutates its cache.
type Store[T any] struct {
	kind    Kind[T]
	client  *authority.Client
	session session.Session
	log     zerolog.Logger
	now     func() time.Time

	// reconcileMu serializes every fetch-then-swap pair so a stale fetch can
	// never replace the cache after a newer one has been applied.
	reconcileMu sync.Mutex

	mu       sync.Mutex
	records  []T
	scope    Scope
	inflight map[models.ID]*flight[T]
	subs     map[int]func()
	nextSub  int
}

// NewStore creates a store for one relation kind.
func NewStore[T any](kind Kind[T], client *authority.Client, sess session.Session, log zerolog.Logger) *Store[T] {
	return &Store[T]{
		kind:     kind,
		client:   client,
		session:  sess,
		log:      log,
		now:      time.Now,
		inflight: make(map[models.ID]*flight[T]),
		subs:     make(map[int]func()),
	}
}

// Load replaces the cache with the authority's records for the scope. With
// no authenticated actor, or on a fetch failure, the cache is cleared; Load
// never reports an error so a transient failure cannot break rendering.
func (s *Store[T]) Load(ctx context.Context, scope Scope) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	actor, ok := s.session.UserID()
	if !ok {
		s.swap(nil, scope)
		return
	}
	if scope.Actor.IsZero() {
		scope.Actor = actor
	}

	var fresh []T
	if err := s.client.List(ctx, s.kind.Collection, s.kind.ListQuery(scope), &fresh); err != nil {
		s.log.Warn().Err(err).Str("collection", s.kind.Collection).Msg("load failed, clearing cache")
		s.swap(nil, scope)
		return
	}
	s.swap(fresh, scope)
}

// Has reports whether the current actor has a record aimed at target.
// Targets compare in canonical string form. Always false when no actor is
// authenticated.
func (s *Store[T]) Has(target models.ID) bool {
	actor, ok := s.session.UserID()
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(actor, target) >= 0
}

// Records returns a snapshot of the cache.
func (s *Store[T]) Records() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// CountFor returns the number of cached records aimed at target, across all
// actors.
func (s *Store[T]) CountFor(target models.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if s.kind.TargetID(rec) == target {
			n++
		}
	}
	return n
}

// Subscribe registers a change notification and returns its cancel func.
func (s *Store[T]) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Toggle flips the current actor's record for target: an optimistic local
// mutation, the matching remote call, and either a reconciliation reload
// (after an add) or a rollback (on any failure). Returns whether the target
// ended up present. Toggles on the same target are queued; the cache is
// never left in a pending state once Toggle returns.
func (s *Store[T]) Toggle(ctx context.Context, target models.ID) (bool, error) {
	if !s.kind.Unique {
		return false, fmt.Errorf("%s: toggle needs a unique relation kind", s.kind.Collection)
	}
	actor, ok := s.session.UserID()
	if !ok {
		return false, ErrNotAuthenticated
	}

	fl := s.acquire(target)
	fl.mu.Lock()
	defer func() {
		fl.mu.Unlock()
		s.release(target, fl)
	}()

	s.mu.Lock()
	if idx := s.find(actor, target); idx >= 0 {
		existing := s.records[idx]
		s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
		fl.op, fl.rec = opRemove, existing
		s.mu.Unlock()
		s.notify()

		if err := s.client.Delete(ctx, s.kind.Collection, s.kind.RecordID(existing)); err != nil {
			s.rollbackRemove(fl, existing)
			return true, fmt.Errorf("remove %s: %w", s.kind.Collection, err)
		}
		// An optimistic removal stands without reconciliation.
		s.settle(fl)
		return false, nil
	}

	rec := s.kind.NewRecord(placeholderID(), actor, target, s.now())
	s.insertLocked(rec)
	fl.op, fl.rec = opAdd, rec
	s.mu.Unlock()
	s.notify()

	if err := s.create(ctx, fl, rec, target); err != nil {
		return false, err
	}
	return true, nil
}

// Insert adds a pre-built record optimistically (used by comments, where the
// payload carries text and one actor may hold several records per target).
// The record must carry a placeholder id from PlaceholderID.
func (s *Store[T]) Insert(ctx context.Context, rec T) error {
	if _, ok := s.session.UserID(); !ok {
		return ErrNotAuthenticated
	}

	key := s.kind.RecordID(rec)
	fl := s.acquire(key)
	fl.mu.Lock()
	defer func() {
		fl.mu.Unlock()
		s.release(key, fl)
	}()

	s.mu.Lock()
	s.insertLocked(rec)
	fl.op, fl.rec = opAdd, rec
	s.mu.Unlock()
	s.notify()

	return s.create(ctx, fl, rec, s.kind.TargetID(rec))
}

// RemoveOwned deletes the cached record with the given id after verifying
// the current actor owns it. Ownership is decided from the cache alone; a
// non-owner is rejected before any request is issued.
func (s *Store[T]) RemoveOwned(ctx context.Context, recordID models.ID) error {
	actor, ok := s.session.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	fl := s.acquire(recordID)
	fl.mu.Lock()
	defer func() {
		fl.mu.Unlock()
		s.release(recordID, fl)
	}()

	s.mu.Lock()
	idx := s.findByID(recordID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	rec := s.records[idx]
	if s.kind.ActorID(rec) != actor {
		s.mu.Unlock()
		return ErrUnauthorized
	}
	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	fl.op, fl.rec = opRemove, rec
	s.mu.Unlock()
	s.notify()

	if err := s.client.Delete(ctx, s.kind.Collection, s.kind.RecordID(rec)); err != nil {
		s.rollbackRemove(fl, rec)
		return fmt.Errorf("remove %s: %w", s.kind.Collection, err)
	}
	s.settle(fl)
	return nil
}

// create issues the remote add and reconciles by reloading the full set: the
// temporary id is never trusted as final, so the cache must hold only
// server-confirmed ids before another mutation can target the record. On any
// failure the placeholder is rolled back and the error propagated.
func (s *Store[T]) create(ctx context.Context, fl *flight[T], rec T, target models.ID) error {
	if err := s.client.Create(ctx, s.kind.Collection, s.kind.Body(rec), nil); err != nil {
		s.rollbackAdd(fl, rec)
		return fmt.Errorf("add %s: %w", s.kind.Collection, err)
	}

	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	s.mu.Lock()
	scope := s.scope
	s.mu.Unlock()
	if scope.Actor.IsZero() && scope.Target.IsZero() {
		scope = Scope{Actor: s.kind.ActorID(rec), Target: target}
	}

	var fresh []T
	if err := s.client.List(ctx, s.kind.Collection, s.kind.ListQuery(scope), &fresh); err != nil {
		s.rollbackAdd(fl, rec)
		return fmt.Errorf("reconcile %s after add: %w", s.kind.Collection, err)
	}

	s.mu.Lock()
	fl.op = opNone
	s.swapLocked(fresh, scope)
	s.mu.Unlock()
	s.notify()
	return nil
}

// PlaceholderID returns a locally unique id for the optimistic window.
func PlaceholderID() models.ID { return placeholderID() }

func placeholderID() models.ID {
	return models.ID("tmp-" + uuid.NewString())
}

// IsValidationError reports whether err was rejected before any optimistic
// mutation or network call.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotFound)
}

func (s *Store[T]) acquire(key models.ID) *flight[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl := s.inflight[key]
	if fl == nil {
		fl = &flight[T]{}
		s.inflight[key] = fl
	}
	fl.refs++
	return fl
}

func (s *Store[T]) release(key models.ID, fl *flight[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl.refs--
	if fl.refs == 0 {
		delete(s.inflight, key)
	}
}

func (s *Store[T]) settle(fl *flight[T]) {
	s.mu.Lock()
	fl.op = opNone
	s.mu.Unlock()
}

func (s *Store[T]) rollbackAdd(fl *flight[T], rec T) {
	s.mu.Lock()
	if idx := s.findByID(s.kind.RecordID(rec)); idx >= 0 {
		s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	}
	fl.op = opNone
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T]) rollbackRemove(fl *flight[T], rec T) {
	s.mu.Lock()
	s.insertLocked(rec)
	fl.op = opNone
	s.mu.Unlock()
	s.notify()
}

// swap replaces the cache, preserving optimistic state still in flight for
// other targets.
func (s *Store[T]) swap(fresh []T, scope Scope) {
	s.mu.Lock()
	s.swapLocked(fresh, scope)
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T]) swapLocked(fresh []T, scope Scope) {
	for _, fl := range s.inflight {
		switch fl.op {
		case opAdd:
			rec := fl.rec
			if s.kind.Unique {
				if indexOf(fresh, s.kind, s.kind.ActorID(rec), s.kind.TargetID(rec)) < 0 {
					fresh = insert(fresh, rec, s.kind.PrependNew)
				}
			} else if indexByID(fresh, s.kind, s.kind.RecordID(rec)) < 0 {
				fresh = insert(fresh, rec, s.kind.PrependNew)
			}
		case opRemove:
			if idx := indexByID(fresh, s.kind, s.kind.RecordID(fl.rec)); idx >= 0 {
				fresh = append(fresh[:idx:idx], fresh[idx+1:]...)
			}
		}
	}
	s.records = fresh
	s.scope = scope
}

func (s *Store[T]) insertLocked(rec T) {
	s.records = insert(s.records, rec, s.kind.PrependNew)
}

func (s *Store[T]) find(actor, target models.ID) int {
	return indexOf(s.records, s.kind, actor, target)
}

func (s *Store[T]) findByID(id models.ID) int {
	return indexByID(s.records, s.kind, id)
}

func (s *Store[T]) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func indexOf[T any](records []T, kind Kind[T], actor, target models.ID) int {
	for i, rec := range records {
		if kind.ActorID(rec) == actor && kind.TargetID(rec) == target {
			return i
		}
	}
	return -1
}

func indexByID[T any](records []T, kind Kind[T], id models.ID) int {
	for i, rec := range records {
		if kind.RecordID(rec) == id {
			return i
		}
	}
	return -1
}

func insert[T any](records []T, rec T, prepend bool) []T {
	if prepend {
		return append([]T{rec}, records...)
	}
	return append(records, rec)
}
