package models

import "time"

// Project belongs to exactly one organization and carries the data-protection
// flags read by the protection gate. The flags are written only by the
// external sign-off workflow; this service treats them as read-only.
type Project struct {
	ID               string    `json:"id" db:"id"`
	OrganizationID   string    `json:"organization_id" db:"organization_id"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description,omitempty" db:"description"`
	Status           string    `json:"status" db:"status"`
	Priority         string    `json:"priority" db:"priority"`
	DataProtected    bool      `json:"data_protected" db:"data_protected"`
	ProtectionReason string    `json:"protection_reason,omitempty" db:"protection_reason"`
	SignOffRequested bool      `json:"sign_off_requested" db:"sign_off_requested"`
	SignOffApproved  bool      `json:"sign_off_approved" db:"sign_off_approved"`
	CreatedBy        string    `json:"created_by" db:"created_by"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ProjectProtection is the snapshot of a project's protection flags taken at
// decision time.
type ProjectProtection struct {
	DataProtected    bool   `json:"data_protected"`
	ProtectionReason string `json:"protection_reason,omitempty"`
	SignOffRequested bool   `json:"sign_off_requested"`
	SignOffApproved  bool   `json:"sign_off_approved"`
}

// Protection returns the project's current flag snapshot.
func (p *Project) Protection() ProjectProtection {
	return ProjectProtection{
		DataProtected:    p.DataProtected,
		ProtectionReason: p.ProtectionReason,
		SignOffRequested: p.SignOffRequested,
		SignOffApproved:  p.SignOffApproved,
	}
}
