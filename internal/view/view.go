// Package view derives role-specific projections of the complaint
// collection: which complaints a principal sees and which actions each one
// currently affords.
package view

import (
	"sort"

	"github.com/google/uuid"

	"complaint-engine/internal/model"
)

type Query struct {
	Department string
	Pincode    string
	Sort       model.SortKey
	Order      model.SortOrder
	Search     string
}

// ComplaintView is a complaint plus the affordances the principal may act
// on right now.
type ComplaintView struct {
	model.Complaint

	CanUpvote           bool `json:"can_upvote"`
	CanReport           bool `json:"can_report"`
	CanDelete           bool `json:"can_delete"`
	CanAssign           bool `json:"can_assign"`
	CanSubmitResolution bool `json:"can_submit_resolution"`
	CanRespond          bool `json:"can_respond"`
}

// OrderFor maps a sort key to its deterministic default direction:
// oldest and least-upvoted ascend, everything else descends. An explicit
// override wins.
func OrderFor(key model.SortKey, override model.SortOrder) model.SortOrder {
	if override != "" {
		return override
	}
	switch key {
	case model.SortOldest, model.SortLeastUpvoted:
		return model.OrderAscending
	default:
		return model.OrderDescending
	}
}

// Derive filters, sorts, and decorates the collection for the principal.
// reported is the viewer's fake-report ledger contents; complaints in it
// render the report action as consumed.
func Derive(complaints []model.Complaint, principal model.Principal, q Query, reported map[uuid.UUID]bool) []ComplaintView {
	scoped := scopeForRole(complaints, principal)

	// Search results replace the filtered listing wholesale; structural
	// filters apply only on the non-search path.
	if q.Search == "" {
		scoped = applyFilters(scoped, q)
	}

	sortComplaints(scoped, q.Sort, OrderFor(q.Sort, q.Order))

	views := make([]ComplaintView, 0, len(scoped))
	for _, c := range scoped {
		views = append(views, decorate(c, principal, reported))
	}
	return views
}

func scopeForRole(complaints []model.Complaint, principal model.Principal) []model.Complaint {
	switch principal.Role {
	case model.RoleAuthority:
		// Escalated complaints re-enter the authority's assignment queue
		// alongside fresh unsolved ones.
		out := make([]model.Complaint, 0, len(complaints))
		for _, c := range complaints {
			if c.Department != principal.Department {
				continue
			}
			if c.Status == model.ComplaintStatusUnsolved || c.Status == model.ComplaintStatusEscalated {
				out = append(out, c)
			}
		}
		return out
	case model.RoleFieldWorker:
		out := make([]model.Complaint, 0, len(complaints))
		for _, c := range complaints {
			if c.AssignedFieldWorker != nil && *c.AssignedFieldWorker == principal.UserID {
				out = append(out, c)
			}
		}
		return out
	default:
		out := make([]model.Complaint, len(complaints))
		copy(out, complaints)
		return out
	}
}

func applyFilters(complaints []model.Complaint, q Query) []model.Complaint {
	if q.Department == "" && q.Pincode == "" {
		return complaints
	}
	out := make([]model.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if q.Department != "" && c.Department != q.Department {
			continue
		}
		if q.Pincode != "" && c.Pincode != q.Pincode {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sortComplaints(complaints []model.Complaint, key model.SortKey, order model.SortOrder) {
	ascending := order == model.OrderAscending

	sort.SliceStable(complaints, func(i, j int) bool {
		a, b := complaints[i], complaints[j]
		if !ascending {
			a, b = b, a
		}
		switch key {
		case model.SortMostUpvoted, model.SortLeastUpvoted:
			if a.UpvoteCount != b.UpvoteCount {
				return a.UpvoteCount < b.UpvoteCount
			}
			return a.PostedAt.Before(b.PostedAt)
		default:
			return a.PostedAt.Before(b.PostedAt)
		}
	})
}

func decorate(c model.Complaint, principal model.Principal, reported map[uuid.UUID]bool) ComplaintView {
	v := ComplaintView{Complaint: c}

	if principal.IsAuthenticated() {
		v.CanUpvote = true
		v.CanReport = !reported[c.ID]
		v.CanDelete = c.AuthoredBy(principal.UserID)
	}

	switch principal.Role {
	case model.RoleAuthority:
		v.CanAssign = (c.Status == model.ComplaintStatusUnsolved || c.Status == model.ComplaintStatusEscalated) &&
			c.Department == principal.Department
	case model.RoleFieldWorker:
		v.CanSubmitResolution = c.Status == model.ComplaintStatusInProgress &&
			c.AssignedFieldWorker != nil && *c.AssignedFieldWorker == principal.UserID
	case model.RoleCitizen:
		v.CanRespond = c.Status == model.ComplaintStatusPendingApproval && c.AuthoredBy(principal.UserID)
	}

	return v
}
