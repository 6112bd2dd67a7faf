package familytree

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultMaxGenerations = 3
	MinMaxGenerations     = 1
	MaxMaxGenerations     = 10
)

var requestValidate = validator.New()

// TreeRequest selects the family, the optional center member and the depth bound of a tree.
// ViewerUserID is the account asking for the tree, if known.
type TreeRequest struct {
	FamilyID       int64  `validate:"gt=0"`
	CenterMemberID *int64 `validate:"omitempty,gt=0"`
	MaxGenerations int    `validate:"min=1,max=10"`
	ViewerUserID   *int64
}

// NewTreeRequest builds a validated request. A nil maxGenerations means DefaultMaxGenerations.
func NewTreeRequest(familyID int64, centerMemberID *int64, maxGenerations *int, viewerUserID *int64) (TreeRequest, error) {
	req := TreeRequest{
		FamilyID:       familyID,
		CenterMemberID: centerMemberID,
		MaxGenerations: DefaultMaxGenerations,
		ViewerUserID:   viewerUserID,
	}
	if maxGenerations != nil {
		req.MaxGenerations = *maxGenerations
	}
	if err := req.Validate(); err != nil {
		return TreeRequest{}, err
	}
	return req, nil
}

// Validate checks the request bounds. Errors wrap ErrInvalidArgument.
func (r TreeRequest) Validate() error {
	if err := requestValidate.Struct(r); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %s=%s", ErrInvalidArgument, fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}
