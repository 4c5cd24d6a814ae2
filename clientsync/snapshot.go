// File: /clientsync/snapshot.go
package clientsync

import (
	"encoding/json"
)

// EngagementSnapshot is the one canonical engagement shape the optimistic
// layer works with. Whatever the server sent for likes is converted to this
// at the API boundary, so no downstream code sniffs payload shapes.
type EngagementSnapshot struct {
	Likes      []string `json:"likes,omitempty"`
	LikesCount int      `json:"likes_count"`
	Liked      bool     `json:"liked"`
	Comments   int      `json:"comments"`
	Views      uint64   `json:"views"`
}

// Clone returns a deep copy so a stored snapshot cannot be mutated through
// the returned value.
func (s EngagementSnapshot) Clone() EngagementSnapshot {
	out := s
	if s.Likes != nil {
		out.Likes = append([]string(nil), s.Likes...)
	}
	return out
}

// LikesField decodes the three like shapes a server response may carry:
// an array of identity ids, a bare count, or nothing at all.
type LikesField struct {
	IDs     []string
	Count   int
	HasIDs  bool
	Present bool
}

// UnmarshalJSON implements json.Unmarshaler interface
func (f *LikesField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	f.Present = true

	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		f.IDs = ids
		f.HasIDs = true
		f.Count = len(ids)
		return nil
	}

	var count int
	if err := json.Unmarshal(data, &count); err == nil {
		f.Count = count
		return nil
	}

	// null or an unexpected shape: treat as absent rather than failing the
	// whole payload.
	f.Present = false
	return nil
}

// Snapshot converts the wire field into the canonical shape for the given
// viewer identity.
func (f LikesField) Snapshot(selfID string) EngagementSnapshot {
	if !f.Present {
		return EngagementSnapshot{}
	}

	snap := EngagementSnapshot{LikesCount: f.Count}
	if f.HasIDs {
		snap.Likes = append([]string(nil), f.IDs...)
		for _, id := range f.IDs {
			if id == selfID {
				snap.Liked = true
				break
			}
		}
	}
	return snap
}

// PredictToggle returns the state expected after the server processes a like
// toggle from selfID. It behaves correctly whether or not the identity list
// is tracked.
func PredictToggle(s EngagementSnapshot, selfID string) EngagementSnapshot {
	out := s.Clone()

	if s.Liked {
		out.Liked = false
		if out.LikesCount > 0 {
			out.LikesCount--
		}
		if out.Likes != nil {
			filtered := out.Likes[:0]
			for _, id := range out.Likes {
				if id != selfID {
					filtered = append(filtered, id)
				}
			}
			out.Likes = filtered
		}
		return out
	}

	out.Liked = true
	out.LikesCount++
	if out.Likes != nil {
		out.Likes = append(out.Likes, selfID)
	}
	return out
}

// PredictComment returns the state expected after a comment append.
func PredictComment(s EngagementSnapshot) EngagementSnapshot {
	out := s.Clone()
	out.Comments++
	return out
}
