package state

import (
	"reflect"
	"sync"
)

// Store holds the latest authoritative TableSnapshot for one table together
// with the viewing participant's private seat and hole cards. It is a
// projection of server pushes: Apply and Clear are the only mutators.
type Store struct {
	mu       sync.Mutex
	viewerID string
	snap     *TableSnapshot
	mySeat   int
	myHole   []string
	watchers map[chan *TableSnapshot]struct{}
	closed   bool
}

func NewStore(viewerID string) *Store {
	return &Store{
		viewerID: viewerID,
		mySeat:   -1,
		watchers: map[chan *TableSnapshot]struct{}{},
	}
}

// Apply replaces the current snapshot. Stale versions are rejected and
// structurally identical pushes are suppressed; watchers are only notified
// when something materially changed. The returned bool reports whether the
// snapshot was applied.
func (s *Store) Apply(snap *TableSnapshot) bool {
	if snap == nil {
		return false
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if s.snap != nil && snap.Version > 0 && s.snap.Version > 0 && snap.Version < s.snap.Version {
		s.mu.Unlock()
		return false
	}
	if s.snap != nil && reflect.DeepEqual(s.snap, snap) {
		s.mu.Unlock()
		return false
	}
	s.snap = snap
	s.mySeat = -1
	s.myHole = nil
	if me := snap.PlayerByID(s.viewerID); me != nil {
		s.mySeat = me.Seat
		s.myHole = append([]string(nil), me.HoleCards...)
	}
	s.notifyLocked(snap)
	s.mu.Unlock()
	return true
}

// Clear drops the snapshot and all mirrored private state, returning the
// store to its pre-subscribe shape. Watchers receive a nil snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.snap = nil
	s.mySeat = -1
	s.myHole = nil
	s.notifyLocked(nil)
	s.mu.Unlock()
}

func (s *Store) Snapshot() *TableSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Store) MySeat() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mySeat, s.mySeat >= 0
}

func (s *Store) MyHoleCards() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.myHole...)
}

func (s *Store) MyPlayer() (SeatedPlayer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return SeatedPlayer{}, false
	}
	me := s.snap.PlayerByID(s.viewerID)
	if me == nil {
		return SeatedPlayer{}, false
	}
	return *me, true
}

// Subscribe returns a channel that receives each applied snapshot (nil on
// Clear). Slow subscribers miss updates rather than block the apply path.
func (s *Store) Subscribe() chan *TableSnapshot {
	ch := make(chan *TableSnapshot, 16)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.watchers[ch] = struct{}{}
	return ch
}

func (s *Store) Unsubscribe(ch chan *TableSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchers[ch]; ok {
		delete(s.watchers, ch)
		close(ch)
	}
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.watchers {
		close(ch)
		delete(s.watchers, ch)
	}
}

func (s *Store) notifyLocked(snap *TableSnapshot) {
	for ch := range s.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}
