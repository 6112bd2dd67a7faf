package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberRoleAtLeast(t *testing.T) {
	tests := []struct {
		name  string
		role  MemberRole
		other MemberRole
		want  bool
	}{
		{name: "owner covers admin", role: RoleOwner, other: RoleAdmin, want: true},
		{name: "admin covers admin", role: RoleAdmin, other: RoleAdmin, want: true},
		{name: "member below admin", role: RoleMember, other: RoleAdmin, want: false},
		{name: "viewer below member", role: RoleViewer, other: RoleMember, want: false},
		{name: "unknown role grants nothing", role: MemberRole("guest"), other: RoleViewer, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.other))
		})
	}
}

func TestParseMemberRoleAndStatus(t *testing.T) {
	role, err := ParseMemberRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseMemberRole("emperor")
	assert.ErrorIs(t, err, ErrInvalidMemberRole)

	status, err := ParseMemberStatus("SUSPENDED")
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, status)

	_, err = ParseMemberStatus("retired")
	assert.ErrorIs(t, err, ErrInvalidMemberStatus)
}

func TestNewMember(t *testing.T) {
	birthday := time.Date(1960, time.March, 4, 0, 0, 0, 0, time.UTC)

	member, err := NewMember(7, "  Grace Hopper ", nil, RoleMember, &birthday)
	require.NoError(t, err)
	assert.Equal(t, int64(7), member.FamilyID)
	assert.Equal(t, "Grace Hopper", member.Name)
	assert.Equal(t, StatusActive, member.Status)
	assert.True(t, member.IsActive())
	assert.Zero(t, member.ID)
	assert.Equal(t, int64(42), member.WithID(42).ID)

	_, err = NewMember(7, "   ", nil, RoleMember, nil)
	assert.ErrorIs(t, err, ErrInvalidMemberName)

	_, err = NewMember(7, "Ada", nil, MemberRole("root"), nil)
	assert.ErrorIs(t, err, ErrInvalidMemberRole)
}

func TestMemberIsLinkedTo(t *testing.T) {
	one, two := int64(1), int64(2)

	assert.True(t, Member{UserID: &one}.IsLinkedTo(&one))
	assert.False(t, Member{UserID: &one}.IsLinkedTo(&two))
	assert.False(t, Member{UserID: &one}.IsLinkedTo(nil))
	assert.False(t, Member{}.IsLinkedTo(&one))
	assert.False(t, Member{}.IsLinkedTo(nil))
}

func TestRelationshipTypeDeltas(t *testing.T) {
	tests := []struct {
		relType RelationshipType
		delta   int
	}{
		{RelFather, -1}, {RelMother, -1}, {RelUncle, -1}, {RelAunt, -1},
		{RelGrandfather, -2}, {RelGrandmother, -2},
		{RelSon, 1}, {RelDaughter, 1}, {RelNephew, 1}, {RelNiece, 1},
		{RelGrandson, 2}, {RelGranddaughter, 2},
		{RelSpouse, 0}, {RelSibling, 0}, {RelCousin, 0}, {RelCustom, 0},
	}

	require.Len(t, RelationshipTypes(), len(tests))
	for _, tt := range tests {
		t.Run(string(tt.relType), func(t *testing.T) {
			assert.True(t, tt.relType.IsValid())
			assert.Equal(t, tt.delta, tt.relType.GenerationDelta())
			assert.NotEmpty(t, tt.relType.Label())
		})
	}
}

func TestNewRelationship(t *testing.T) {
	label := "Godmother"

	rel, err := NewRelationship(1, 10, 11, RelCustom, &label, nil)
	require.NoError(t, err)
	assert.Equal(t, RelCustom, rel.Type)
	assert.Equal(t, "Godmother", *rel.CustomLabel)

	_, err = NewRelationship(1, 10, 10, RelFather, nil, nil)
	assert.ErrorIs(t, err, ErrSelfRelationship)

	_, err = NewRelationship(1, 10, 11, RelationshipType("step-cousin"), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidRelationshipType)

	_, err = NewRelationship(1, 10, 11, RelFather, &label, nil)
	assert.ErrorIs(t, err, ErrUnexpectedCustomLabel)
}

func TestParseRelationshipType(t *testing.T) {
	relType, err := ParseRelationshipType("Granddaughter")
	require.NoError(t, err)
	assert.Equal(t, RelGranddaughter, relType)

	_, err = ParseRelationshipType("")
	assert.ErrorIs(t, err, ErrInvalidRelationshipType)
}
