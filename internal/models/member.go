package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidMemberName   = errors.New("member name is required")
	ErrInvalidMemberRole   = errors.New("invalid member role")
	ErrInvalidMemberStatus = errors.New("invalid member status")
)

// MemberRole is an ordered privilege level inside one family
type MemberRole string

const (
	RoleViewer MemberRole = "viewer"
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
	RoleOwner  MemberRole = "owner"
)

var roleRank = map[MemberRole]int{
	RoleViewer: 0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// ParseMemberRole converts a stored or user-supplied value into a MemberRole
func ParseMemberRole(s string) (MemberRole, error) {
	role := MemberRole(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[role]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMemberRole, s)
	}
	return role, nil
}

// AtLeast reports whether r grants at least the privileges of other
func (r MemberRole) AtLeast(other MemberRole) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[other]
}

// MemberStatus is the lifecycle state of a member
type MemberStatus string

const (
	StatusActive    MemberStatus = "active"
	StatusSuspended MemberStatus = "suspended"
	StatusBanned    MemberStatus = "banned"
)

// ParseMemberStatus converts a stored or user-supplied value into a MemberStatus
func ParseMemberStatus(s string) (MemberStatus, error) {
	switch status := MemberStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case StatusActive, StatusSuspended, StatusBanned:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMemberStatus, s)
	}
}

// Member is a person in a family. UserID links the member to a login account, if any.
type Member struct {
	ID        int64
	FamilyID  int64
	Name      string
	UserID    *int64
	Role      MemberRole
	Status    MemberStatus
	Birthday  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMember builds a member that has not been stored yet
func NewMember(familyID int64, name string, userID *int64, role MemberRole, birthday *time.Time) (Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Member{}, ErrInvalidMemberName
	}
	if _, ok := roleRank[role]; !ok {
		return Member{}, fmt.Errorf("%w: %q", ErrInvalidMemberRole, role)
	}
	now := time.Now()
	return Member{
		FamilyID:  familyID,
		Name:      name,
		UserID:    userID,
		Role:      role,
		Status:    StatusActive,
		Birthday:  birthday,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// WithID returns a copy of the member carrying the stored ID
func (m Member) WithID(id int64) Member {
	m.ID = id
	return m
}

// IsActive reports whether the member is in the active state
func (m Member) IsActive() bool {
	return m.Status == StatusActive
}

// IsLinkedTo reports whether the member is linked to the given account
func (m Member) IsLinkedTo(userID *int64) bool {
	return m.UserID != nil && userID != nil && *m.UserID == *userID
}
