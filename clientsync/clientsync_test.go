// File: /clientsync/clientsync_test.go
package clientsync

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const self = "user-1"

func TestLikesFieldDecoding(t *testing.T) {
	type payload struct {
		Likes LikesField `json:"likes"`
	}

	t.Run("array of identity ids", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"likes":["user-1","user-2"]}`), &p))

		snap := p.Likes.Snapshot(self)
		assert.Equal(t, 2, snap.LikesCount)
		assert.True(t, snap.Liked)
		assert.Equal(t, []string{"user-1", "user-2"}, snap.Likes)
	})

	t.Run("bare count", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"likes":7}`), &p))

		snap := p.Likes.Snapshot(self)
		assert.Equal(t, 7, snap.LikesCount)
		assert.False(t, snap.Liked, "a count alone cannot prove membership")
		assert.Nil(t, snap.Likes)
	})

	t.Run("field absent", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

		snap := p.Likes.Snapshot(self)
		assert.Equal(t, 0, snap.LikesCount)
		assert.False(t, snap.Liked)
	})

	t.Run("null treated as absent", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"likes":null}`), &p))
		assert.False(t, p.Likes.Present)
	})
}

func TestPredictToggle(t *testing.T) {
	t.Run("like when not yet liked", func(t *testing.T) {
		out := PredictToggle(EngagementSnapshot{Likes: []string{"user-2"}, LikesCount: 1}, self)
		assert.True(t, out.Liked)
		assert.Equal(t, 2, out.LikesCount)
		assert.Contains(t, out.Likes, self)
	})

	t.Run("unlike when liked", func(t *testing.T) {
		out := PredictToggle(EngagementSnapshot{Likes: []string{"user-2", self}, LikesCount: 2, Liked: true}, self)
		assert.False(t, out.Liked)
		assert.Equal(t, 1, out.LikesCount)
		assert.NotContains(t, out.Likes, self)
	})

	t.Run("count never goes negative", func(t *testing.T) {
		out := PredictToggle(EngagementSnapshot{LikesCount: 0, Liked: true}, self)
		assert.Equal(t, 0, out.LikesCount)
	})

	t.Run("count-only state still toggles", func(t *testing.T) {
		out := PredictToggle(EngagementSnapshot{LikesCount: 3}, self)
		assert.True(t, out.Liked)
		assert.Equal(t, 4, out.LikesCount)
		assert.Nil(t, out.Likes)
	})

	t.Run("input snapshot is not mutated", func(t *testing.T) {
		in := EngagementSnapshot{Likes: []string{"user-2"}, LikesCount: 1}
		_ = PredictToggle(in, self)
		assert.Equal(t, []string{"user-2"}, in.Likes)
		assert.Equal(t, 1, in.LikesCount)
	})
}

func TestStoreOptimisticWindow(t *testing.T) {
	newStore := func() *Store {
		st := NewStore()
		st.Put("p1", EngagementSnapshot{Likes: []string{"user-2"}, LikesCount: 1, Comments: 3, Views: 40})
		return st
	}

	t.Run("prediction becomes final without authoritative state", func(t *testing.T) {
		st := newStore()

		got, err := st.Begin("p1", func(s EngagementSnapshot) EngagementSnapshot {
			return PredictToggle(s, self)
		})
		require.NoError(t, err)
		assert.True(t, got.Liked)
		assert.Equal(t, 2, got.LikesCount)

		st.Resolve("p1", nil)

		after, ok := st.Get("p1")
		require.True(t, ok)
		assert.True(t, after.Liked)
		assert.Equal(t, 2, after.LikesCount)
	})

	t.Run("authoritative state supersedes the prediction", func(t *testing.T) {
		st := newStore()

		_, err := st.Begin("p1", func(s EngagementSnapshot) EngagementSnapshot {
			return PredictToggle(s, self)
		})
		require.NoError(t, err)

		// Server saw another like land concurrently.
		st.Resolve("p1", &EngagementSnapshot{LikesCount: 3, Liked: true, Comments: 3, Views: 41})

		after, ok := st.Get("p1")
		require.True(t, ok)
		assert.Equal(t, 3, after.LikesCount)
	})

	t.Run("failure restores the pre-action snapshot verbatim", func(t *testing.T) {
		st := newStore()
		before, _ := st.Get("p1")

		_, err := st.Begin("p1", func(s EngagementSnapshot) EngagementSnapshot {
			return PredictToggle(s, self)
		})
		require.NoError(t, err)

		cause := errors.New("network down")
		retErr := st.Fail("p1", cause)

		var retryable *RetryableError
		require.ErrorAs(t, retErr, &retryable)
		assert.Equal(t, "p1", retryable.PostID)
		assert.ErrorIs(t, retErr, cause)

		after, ok := st.Get("p1")
		require.True(t, ok)
		assert.Equal(t, before, after)
	})

	t.Run("second mutation mid-window is refused", func(t *testing.T) {
		st := newStore()

		_, err := st.Begin("p1", func(s EngagementSnapshot) EngagementSnapshot {
			return PredictToggle(s, self)
		})
		require.NoError(t, err)

		_, err = st.Begin("p1", func(s EngagementSnapshot) EngagementSnapshot {
			return PredictComment(s)
		})
		assert.ErrorIs(t, err, ErrMutationPending)
	})

	t.Run("windows on different posts are independent", func(t *testing.T) {
		st := newStore()
		st.Put("p2", EngagementSnapshot{LikesCount: 5})

		_, err := st.Begin("p1", func(s EngagementSnapshot) EngagementSnapshot {
			return PredictToggle(s, self)
		})
		require.NoError(t, err)

		_, err = st.Begin("p2", func(s EngagementSnapshot) EngagementSnapshot {
			return PredictComment(s)
		})
		assert.NoError(t, err)
	})

	t.Run("unknown post", func(t *testing.T) {
		st := newStore()
		_, err := st.Begin("missing", func(s EngagementSnapshot) EngagementSnapshot { return s })
		assert.ErrorIs(t, err, ErrUnknownPost)
	})
}

func TestStoreInvalidate(t *testing.T) {
	st := NewStore()
	st.Put("p1", EngagementSnapshot{LikesCount: 1})

	assert.False(t, st.NeedsRefresh("p1"))

	st.Invalidate("p1")
	assert.True(t, st.NeedsRefresh("p1"))

	// Fresh authoritative state clears the marker.
	_, err := st.Begin("p1", func(s EngagementSnapshot) EngagementSnapshot { return PredictComment(s) })
	require.NoError(t, err)
	st.Resolve("p1", &EngagementSnapshot{LikesCount: 1, Comments: 1})
	assert.False(t, st.NeedsRefresh("p1"))
}

func TestStoreForget(t *testing.T) {
	st := NewStore()
	st.Put("p1", EngagementSnapshot{})
	st.Forget("p1")

	_, ok := st.Get("p1")
	assert.False(t, ok)
}
