package models

import "time"

// JoinRequestStatus tracks the review state of a join request
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is an account's request to become a member of a family
type JoinRequest struct {
	ID          int64
	FamilyID    int64
	UserID      int64
	Message     string
	Status      JoinRequestStatus
	ReviewedBy  *int64
	ReviewedAt  *time.Time
	CreatedAt   time.Time
	RequestName string // Populated via JOIN
	RequestMail string // Populated via JOIN
}

func (j *JoinRequest) IsPending() bool {
	return j.Status == JoinRequestPending
}
