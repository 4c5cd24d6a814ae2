// File: /clientsync/store.go
package clientsync

import (
	"errors"
	"fmt"
	"sync"
)

// ErrMutationPending is returned when a second optimistic mutation is opened
// on a post whose previous window has not resolved yet. Interleaving would
// trample the unresolved snapshot.
var ErrMutationPending = errors.New("an optimistic mutation is already pending for this post")

// ErrUnknownPost is returned when a window is opened for a post the store
// has never seen.
var ErrUnknownPost = errors.New("post is not tracked by the sync store")

// RetryableError tells the caller the action failed, local state was rolled
// back, and the action can safely be retried.
type RetryableError struct {
	PostID string
	Cause  error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("engagement update failed for post %s (state rolled back): %v", e.PostID, e.Cause)
}

func (e *RetryableError) Unwrap() error {
	return e.Cause
}

type cardState struct {
	current  EngagementSnapshot
	snapshot *EngagementSnapshot // non-nil while a mutation window is open
	stale    bool
}

// Store keeps per-post engagement state and applies predicted mutations
// ahead of server confirmation. State is keyed by post id so several open
// cards never leak into each other.
type Store struct {
	mu    sync.Mutex
	cards map[string]*cardState
}

func NewStore() *Store {
	return &Store{cards: make(map[string]*cardState)}
}

// Put seeds (or refreshes) a post's engagement state from server truth.
// A pending window, if any, is discarded: fresh authoritative state wins.
func (st *Store) Put(postID string, snap EngagementSnapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.cards[postID] = &cardState{current: snap.Clone()}
}

// Get returns the post's current (possibly optimistic) state.
func (st *Store) Get(postID string) (EngagementSnapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	card, ok := st.cards[postID]
	if !ok {
		return EngagementSnapshot{}, false
	}
	return card.current.Clone(), true
}

// Begin opens a mutation window: it captures the pre-action snapshot and
// applies the predicted state. Exactly one window may be open per post.
func (st *Store) Begin(postID string, predict func(EngagementSnapshot) EngagementSnapshot) (EngagementSnapshot, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	card, ok := st.cards[postID]
	if !ok {
		return EngagementSnapshot{}, ErrUnknownPost
	}
	if card.snapshot != nil {
		return EngagementSnapshot{}, ErrMutationPending
	}

	saved := card.current.Clone()
	card.snapshot = &saved
	card.current = predict(card.current)

	return card.current.Clone(), nil
}

// Resolve closes the window on success. A non-nil authoritative snapshot
// supersedes the prediction; otherwise the optimistic value becomes final.
func (st *Store) Resolve(postID string, authoritative *EngagementSnapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()

	card, ok := st.cards[postID]
	if !ok {
		return
	}

	card.snapshot = nil
	if authoritative != nil {
		card.current = authoritative.Clone()
		card.stale = false
	}
}

// Fail closes the window on failure: the pre-action snapshot is restored
// verbatim and a retryable error is handed back for the caller to surface.
func (st *Store) Fail(postID string, cause error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	card, ok := st.cards[postID]
	if ok && card.snapshot != nil {
		card.current = *card.snapshot
		card.snapshot = nil
	}

	return &RetryableError{PostID: postID, Cause: cause}
}

// Invalidate marks a post whose state can no longer be reconstructed from a
// snapshot restore alone; the owner should re-fetch authoritative state.
func (st *Store) Invalidate(postID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if card, ok := st.cards[postID]; ok {
		card.stale = true
	}
}

// NeedsRefresh reports whether a post was invalidated since its last Put or
// authoritative Resolve.
func (st *Store) NeedsRefresh(postID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	card, ok := st.cards[postID]
	return ok && card.stale
}

// Forget drops a post from the store (card closed or post deleted).
func (st *Store) Forget(postID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.cards, postID)
}
