package service

import (
	"sync"

	"github.com/google/uuid"

	"complaint-engine/internal/model"
)

// ActionKind partitions mutations against a single complaint. Consecutive
// actions of the same kind are serialized (a duplicate while one is in
// flight is ignored, not queued); actions of different kinds may overlap
// because they touch disjoint fields.
type ActionKind string

const (
	KindUpvote  ActionKind = "upvote"
	KindReport  ActionKind = "report"
	KindDelete  ActionKind = "delete"
	KindRespond ActionKind = "respond"
	KindRefresh ActionKind = "refresh"
)

// VoteState is the per-viewer visible vote state of one complaint.
type VoteState struct {
	UpvoteCount int  `json:"upvote_count"`
	HasUpvoted  bool `json:"has_upvoted"`
}

// RollbackToken captures the exact pre-mutation snapshot. Rolling back is a
// data operation: the token's state is restored verbatim, never recomputed.
type RollbackToken struct {
	ComplaintID uuid.UUID
	Prev        VoteState
}

// applyToggle is the optimistic reducer for the upvote toggle: it inverts
// HasUpvoted, adjusts the count accordingly, and hands back the token that
// undoes it.
func applyToggle(complaintID uuid.UUID, current VoteState) (VoteState, RollbackToken) {
	token := RollbackToken{ComplaintID: complaintID, Prev: current}

	next := VoteState{HasUpvoted: !current.HasUpvoted}
	if next.HasUpvoted {
		next.UpvoteCount = current.UpvoteCount + 1
	} else {
		next.UpvoteCount = current.UpvoteCount - 1
	}
	if next.UpvoteCount < 0 {
		next.UpvoteCount = 0
	}
	return next, token
}

type inflightKey struct {
	complaintID uuid.UUID
	kind        ActionKind
}

// inflightGuard tracks which (complaint, kind) mutations are currently in
// flight so duplicates issue no second remote call.
type inflightGuard struct {
	mu     sync.Mutex
	active map[inflightKey]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{active: make(map[inflightKey]struct{})}
}

// begin claims the slot, returning false when the same action is already in
// flight for the complaint.
func (g *inflightGuard) begin(complaintID uuid.UUID, kind ActionKind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := inflightKey{complaintID: complaintID, kind: kind}
	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *inflightGuard) end(complaintID uuid.UUID, kind ActionKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, inflightKey{complaintID: complaintID, kind: kind})
}

type voteCacheKey struct {
	viewerID    uuid.UUID
	complaintID uuid.UUID
}

// voteCache holds per-viewer vote state only while an optimistic mutation
// is in flight, so concurrent reads render the viewer's press instantly.
// Entries are dropped on reconcile and rollback; from then on the remote
// record is authoritative and overlaying a stale copy would hide votes
// from other viewers.
type voteCache struct {
	mu     sync.RWMutex
	states map[voteCacheKey]VoteState
}

func newVoteCache() *voteCache {
	return &voteCache{states: make(map[voteCacheKey]VoteState)}
}

func (c *voteCache) put(viewerID, complaintID uuid.UUID, state VoteState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[voteCacheKey{viewerID: viewerID, complaintID: complaintID}] = state
}

func (c *voteCache) get(viewerID, complaintID uuid.UUID) (VoteState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	state, ok := c.states[voteCacheKey{viewerID: viewerID, complaintID: complaintID}]
	return state, ok
}

func (c *voteCache) drop(viewerID, complaintID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, voteCacheKey{viewerID: viewerID, complaintID: complaintID})
}

// overlay rewrites the vote fields of each complaint from the viewer's
// cached state where one exists.
func (c *voteCache) overlay(viewerID uuid.UUID, complaints []model.Complaint) []model.Complaint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range complaints {
		if state, ok := c.states[voteCacheKey{viewerID: viewerID, complaintID: complaints[i].ID}]; ok {
			complaints[i].UpvoteCount = state.UpvoteCount
			complaints[i].ViewerHasUpvoted = state.HasUpvoted
		}
	}
	return complaints
}
