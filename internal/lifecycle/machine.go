// Package lifecycle encodes the complaint status machine: which actions are
// legal from which status, which role may trigger them, and the resulting
// status. It is pure; nothing here touches the network or mutates records.
package lifecycle

import (
	"errors"

	"complaint-engine/internal/model"
)

type Action string

const (
	ActionAssign           Action = "assign"
	ActionSubmitResolution Action = "submit_resolution"
	ActionApprove          Action = "approve"
	ActionReject           Action = "reject"
)

var (
	ErrUnknownAction     = errors.New("unknown lifecycle action")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrRoleNotAllowed    = errors.New("role not allowed to trigger action")
)

type transition struct {
	from []model.ComplaintStatus
	to   model.ComplaintStatus
	role model.Role
}

var transitions = map[Action]transition{
	ActionAssign: {
		from: []model.ComplaintStatus{model.ComplaintStatusUnsolved, model.ComplaintStatusEscalated},
		to:   model.ComplaintStatusInProgress,
		role: model.RoleAuthority,
	},
	ActionSubmitResolution: {
		from: []model.ComplaintStatus{model.ComplaintStatusInProgress},
		to:   model.ComplaintStatusPendingApproval,
		role: model.RoleFieldWorker,
	},
	ActionApprove: {
		from: []model.ComplaintStatus{model.ComplaintStatusPendingApproval},
		to:   model.ComplaintStatusSolved,
		role: model.RoleCitizen,
	},
	ActionReject: {
		from: []model.ComplaintStatus{model.ComplaintStatusPendingApproval},
		to:   model.ComplaintStatusEscalated,
		role: model.RoleCitizen,
	},
}

// RoleFor returns the role empowered to trigger the action.
func RoleFor(action Action) (model.Role, error) {
	t, ok := transitions[action]
	if !ok {
		return "", ErrUnknownAction
	}
	return t.role, nil
}

// Check validates that role may trigger action from the given status. The
// role check runs first so a wrong-role caller is rejected rather than
// silently ignored, even when the status would also be wrong.
func Check(status model.ComplaintStatus, action Action, role model.Role) error {
	t, ok := transitions[action]
	if !ok {
		return ErrUnknownAction
	}
	if role != t.role {
		return ErrRoleNotAllowed
	}
	for _, from := range t.from {
		if status == from {
			return nil
		}
	}
	return ErrIllegalTransition
}

// Next returns the status the complaint enters when action succeeds. It
// fails rather than guessing when the transition is not legal from the
// current status.
func Next(status model.ComplaintStatus, action Action) (model.ComplaintStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return status, ErrUnknownAction
	}
	for _, from := range t.from {
		if status == from {
			return t.to, nil
		}
	}
	return status, ErrIllegalTransition
}
