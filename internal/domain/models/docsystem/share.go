package docsystem

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role is the portal role of a grantee.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleGroupAdmin Role = "group_admin"
	RoleInvestor   Role = "investor"
)

// ShareTarget selects the investor tab a shared file is listed under.
type ShareTarget string

const (
	ShareTargetDocument  ShareTarget = "document"
	ShareTargetStatement ShareTarget = "statement"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleGroupAdmin, RoleInvestor:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q (supported: admin, group_admin, investor)", s)
	}
}

// ParseShareTarget validates a share target string.
func ParseShareTarget(s string) (ShareTarget, error) {
	switch t := ShareTarget(s); t {
	case ShareTargetDocument, ShareTargetStatement:
		return t, nil
	default:
		return "", fmt.Errorf("unknown share target %q (supported: document, statement)", s)
	}
}

// Access is the role-dependent shape of a share. Exactly one of
// AdminAccess, GroupAdminAccess or InvestorAccess; only investors carry a target.
type Access interface {
	Role() Role
	access()
}

type (
	AdminAccess      struct{}
	GroupAdminAccess struct{}
	InvestorAccess   struct {
		Target ShareTarget
	}
)

func (AdminAccess) Role() Role      { return RoleAdmin }
func (GroupAdminAccess) Role() Role { return RoleGroupAdmin }
func (InvestorAccess) Role() Role   { return RoleInvestor }

func (AdminAccess) access()      {}
func (GroupAdminAccess) access() {}
func (InvestorAccess) access()   {}

// NewAccess builds the access variant for a role. The target is required for
// investors and ignored for every other role.
func NewAccess(role Role, target ShareTarget) (Access, error) {
	switch role {
	case RoleAdmin:
		return AdminAccess{}, nil
	case RoleGroupAdmin:
		return GroupAdminAccess{}, nil
	case RoleInvestor:
		if target == "" {
			return nil, fmt.Errorf("share_target is required for investor grantees")
		}
		if _, err := ParseShareTarget(string(target)); err != nil {
			return nil, err
		}
		return InvestorAccess{Target: target}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// TargetOf returns the investor share target, or "" for other roles.
func TargetOf(a Access) ShareTarget {
	if inv, ok := a.(InvestorAccess); ok {
		return inv.Target
	}
	return ""
}

// Share grants one grantee access to one document.
// (DocumentID, GranteeID) is unique.
type Share struct {
	DocumentID string
	GranteeID  string
	Access     Access
	Label      string // denormalized display name, not authoritative
	Email      string // denormalized, not authoritative
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type shareJSON struct {
	DocumentID  string      `json:"document_id"`
	GranteeID   string      `json:"grantee_id"`
	Role        Role        `json:"role"`
	ShareTarget ShareTarget `json:"share_target,omitempty"`
	Label       string      `json:"label"`
	Email       string      `json:"email"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// MarshalJSON flattens the access variant into role / share_target.
func (s Share) MarshalJSON() ([]byte, error) {
	out := shareJSON{
		DocumentID: s.DocumentID,
		GranteeID:  s.GranteeID,
		Label:      s.Label,
		Email:      s.Email,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Access != nil {
		out.Role = s.Access.Role()
		out.ShareTarget = TargetOf(s.Access)
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the access variant from role / share_target.
func (s *Share) UnmarshalJSON(data []byte) error {
	var in shareJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	access, err := NewAccess(in.Role, in.ShareTarget)
	if err != nil {
		return err
	}
	*s = Share{
		DocumentID: in.DocumentID,
		GranteeID:  in.GranteeID,
		Access:     access,
		Label:      in.Label,
		Email:      in.Email,
		CreatedAt:  in.CreatedAt,
		UpdatedAt:  in.UpdatedAt,
	}
	return nil
}

// Grantee is a user directory entry eligible to receive shares.
type Grantee struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// SharedDocument is a document as seen by one of its grantees.
type SharedDocument struct {
	Document Document `json:"document"`
	Share    Share    `json:"share"`
}
