package model

import "time"

// MemberStatus is a profile's standing within its group.
type MemberStatus string

const (
	// MemberActive is a fully approved group member.
	MemberActive MemberStatus = "active"
	// MemberPending is a member awaiting admin approval.
	MemberPending MemberStatus = "pending"
)

// MemberRole controls group-management permissions.
type MemberRole string

const (
	// RoleAdmin can approve and remove members.
	RoleAdmin MemberRole = "admin"
	// RoleMember is a regular participant.
	RoleMember MemberRole = "member"
)

// Profile is a user of the application and their group membership.
type Profile struct {
	CreatedAt    time.Time
	ID           string
	Name         string
	Email        string
	Color        string // UI color token
	HexColor     string // hex color for charts
	GroupID      string // empty until the user joins or creates a group
	PasswordHash string
	Status       MemberStatus
	Role         MemberRole
}

// InGroup reports whether the profile belongs to a group yet. A profile
// without a group is a valid onboarding state, not an error.
func (p *Profile) InGroup() bool {
	return p.GroupID != ""
}
