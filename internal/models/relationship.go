package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidRelationshipType = errors.New("invalid relationship type")
	ErrSelfRelationship        = errors.New("a member cannot be related to themselves")
	ErrUnexpectedCustomLabel   = errors.New("custom label is only allowed for custom relationships")
)

// RelationshipType says what the source member is to the target member
type RelationshipType string

const (
	RelFather        RelationshipType = "father"
	RelMother        RelationshipType = "mother"
	RelUncle         RelationshipType = "uncle"
	RelAunt          RelationshipType = "aunt"
	RelGrandfather   RelationshipType = "grandfather"
	RelGrandmother   RelationshipType = "grandmother"
	RelSon           RelationshipType = "son"
	RelDaughter      RelationshipType = "daughter"
	RelNephew        RelationshipType = "nephew"
	RelNiece         RelationshipType = "niece"
	RelGrandson      RelationshipType = "grandson"
	RelGranddaughter RelationshipType = "granddaughter"
	RelSpouse        RelationshipType = "spouse"
	RelSibling       RelationshipType = "sibling"
	RelCousin        RelationshipType = "cousin"
	RelCustom        RelationshipType = "custom"
)

type relationshipTypeInfo struct {
	delta int
	label string
}

// relationshipTypes maps each type to its generation shift and display label.
// A negative delta moves toward older generations.
var relationshipTypes = map[RelationshipType]relationshipTypeInfo{
	RelFather:        {-1, "Father"},
	RelMother:        {-1, "Mother"},
	RelUncle:         {-1, "Uncle"},
	RelAunt:          {-1, "Aunt"},
	RelGrandfather:   {-2, "Grandfather"},
	RelGrandmother:   {-2, "Grandmother"},
	RelSon:           {1, "Son"},
	RelDaughter:      {1, "Daughter"},
	RelNephew:        {1, "Nephew"},
	RelNiece:         {1, "Niece"},
	RelGrandson:      {2, "Grandson"},
	RelGranddaughter: {2, "Granddaughter"},
	RelSpouse:        {0, "Spouse"},
	RelSibling:       {0, "Sibling"},
	RelCousin:        {0, "Cousin"},
	RelCustom:        {0, "Custom"},
}

// ParseRelationshipType converts a stored or user-supplied value into a RelationshipType
func ParseRelationshipType(s string) (RelationshipType, error) {
	t := RelationshipType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := relationshipTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRelationshipType, s)
	}
	return t, nil
}

// IsValid reports whether t is a known relationship type
func (t RelationshipType) IsValid() bool {
	_, ok := relationshipTypes[t]
	return ok
}

// GenerationDelta returns the generation shift from the source to the target member.
// Unknown types do not shift.
func (t RelationshipType) GenerationDelta() int {
	return relationshipTypes[t].delta
}

// Label returns the canonical display label of the type
func (t RelationshipType) Label() string {
	if info, ok := relationshipTypes[t]; ok {
		return info.label
	}
	return string(t)
}

// RelationshipTypes returns every known type
func RelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelFather, RelMother, RelUncle, RelAunt,
		RelGrandfather, RelGrandmother,
		RelSon, RelDaughter, RelNephew, RelNiece,
		RelGrandson, RelGranddaughter,
		RelSpouse, RelSibling, RelCousin, RelCustom,
	}
}

// Relationship is a directed edge: FromMemberID is Type of ToMemberID.
// The reverse edge is never implied.
type Relationship struct {
	ID           int64
	FamilyID     int64
	FromMemberID int64
	ToMemberID   int64
	Type         RelationshipType
	CustomLabel  *string
	Description  *string
	CreatedAt    time.Time
}

// NewRelationship builds a relationship that has not been stored yet
func NewRelationship(familyID, fromMemberID, toMemberID int64, relType RelationshipType, customLabel, description *string) (Relationship, error) {
	if !relType.IsValid() {
		return Relationship{}, fmt.Errorf("%w: %q", ErrInvalidRelationshipType, relType)
	}
	if fromMemberID == toMemberID {
		return Relationship{}, ErrSelfRelationship
	}
	if customLabel != nil && relType != RelCustom {
		return Relationship{}, ErrUnexpectedCustomLabel
	}
	return Relationship{
		FamilyID:     familyID,
		FromMemberID: fromMemberID,
		ToMemberID:   toMemberID,
		Type:         relType,
		CustomLabel:  customLabel,
		Description:  description,
		CreatedAt:    time.Now(),
	}, nil
}

// WithID returns a copy of the relationship carrying the stored ID
func (r Relationship) WithID(id int64) Relationship {
	r.ID = id
	return r
}
