// Package review enforces the publication workflow for blog_review and
// receipt_review orders. The transition table is closed: anything not
// listed here is rejected, and every entry to published requires a
// completed link at that moment.
package review

import (
	"errors"
	"strings"

	"admoa/internal/domain"
)

var (
	ErrInvalidTransition      = errors.New("transition not allowed")
	ErrTransitionForbidden    = errors.New("actor may not perform this transition")
	ErrMissingDraft           = errors.New("draft text required")
	ErrMissingLink            = errors.New("completed link required")
	ErrMissingRevisionRequest = errors.New("revision request text required")
)

// Request carries the fields a caller supplies alongside a transition.
type Request struct {
	DraftText       string
	CompletedLink   string
	RevisionRequest string
}

// Effect tells the caller which order fields the transition writes.
type Effect struct {
	SetDraftText       bool
	SetCompletedLink   bool
	ClearCompletedLink bool
	SetRevisionRequest bool
}

type edge struct {
	from, to   string
	clientMay  bool // admin may always; client edges are the approval loop
	needDraft  bool
	needLink   bool
	needReason bool
	clearLink  bool
}

var blogEdges = []edge{
	{from: domain.StatusPending, to: domain.StatusWorking},
	{from: domain.StatusWorking, to: domain.StatusDraftUploaded, needDraft: true},
	{from: domain.StatusDraftUploaded, to: domain.StatusRevisionRequested, clientMay: true, needReason: true},
	{from: domain.StatusDraftRevised, to: domain.StatusRevisionRequested, clientMay: true, needReason: true},
	{from: domain.StatusRevisionRequested, to: domain.StatusDraftRevised, needDraft: true},
	{from: domain.StatusDraftUploaded, to: domain.StatusClientApproved, clientMay: true},
	{from: domain.StatusDraftRevised, to: domain.StatusClientApproved, clientMay: true},
	{from: domain.StatusDraftUploaded, to: domain.StatusPublished, needLink: true},
	{from: domain.StatusDraftRevised, to: domain.StatusPublished, needLink: true},
	{from: domain.StatusClientApproved, to: domain.StatusPublished, needLink: true},
	// roll-back: never leaves a published row without a valid link
	{from: domain.StatusPublished, to: domain.StatusDraftUploaded, clearLink: true},
}

var receiptEdges = []edge{
	{from: domain.StatusPending, to: domain.StatusWorking},
	{from: domain.StatusWorking, to: domain.StatusPublished, needLink: true},
	{from: domain.StatusPublished, to: domain.StatusWorking, clearLink: true},
}

func table(taskType string) []edge {
	switch taskType {
	case domain.TaskBlogReview:
		return blogEdges
	case domain.TaskReceiptReview:
		return receiptEdges
	default:
		return nil
	}
}

// Apply validates a transition for the given actor role and returns the
// field effects to persist. It mutates nothing itself.
func Apply(taskType, from, to, actorRole string, req Request) (Effect, error) {
	var found *edge
	edges := table(taskType)
	for i := range edges {
		if edges[i].from == from && edges[i].to == to {
			found = &edges[i]
			break
		}
	}
	if found == nil {
		return Effect{}, ErrInvalidTransition
	}
	if actorRole != domain.RoleAdmin && !found.clientMay {
		return Effect{}, ErrTransitionForbidden
	}
	var eff Effect
	if found.needDraft {
		if strings.TrimSpace(req.DraftText) == "" {
			return Effect{}, ErrMissingDraft
		}
		eff.SetDraftText = true
	}
	if found.needLink {
		if strings.TrimSpace(req.CompletedLink) == "" {
			return Effect{}, ErrMissingLink
		}
		eff.SetCompletedLink = true
	}
	if found.needReason {
		if strings.TrimSpace(req.RevisionRequest) == "" {
			return Effect{}, ErrMissingRevisionRequest
		}
		eff.SetRevisionRequest = true
	}
	eff.ClearCompletedLink = found.clearLink
	return eff, nil
}

// SimpleAllowed is the status table for non-review task types.
// follower/like treat done as "request submitted", so pending may jump
// straight there.
func SimpleAllowed(from, to string) bool {
	switch from {
	case domain.StatusPending:
		return to == domain.StatusWorking || to == domain.StatusDone
	case domain.StatusWorking:
		return to == domain.StatusDone
	default:
		return false
	}
}
