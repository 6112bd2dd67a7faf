// Package familytree turns one family's members and directed relationships into a
// generation-organized tree centered on a chosen member.
//
// The package works on an in-memory snapshot supplied by a Loader and keeps no state
// between calls, so a Builder may be shared by concurrent requests.
package familytree

import "errors"

var (
	ErrFamilyNotFound  = errors.New("family not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidMetadata = errors.New("invalid tree metadata")
)
