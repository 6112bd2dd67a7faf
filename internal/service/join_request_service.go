package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"familytree/internal/models"
	"familytree/internal/repository"
)

var (
	ErrAlreadyMember       = errors.New("user is already a member of this family")
	ErrJoinRequestPending  = errors.New("a join request is already pending")
	ErrJoinRequestNotFound = errors.New("join request not found")
	ErrJoinRequestReviewed = errors.New("join request has already been reviewed")
)

// JoinRequestService handles requests from accounts to become members of a family
type JoinRequestService struct {
	families    *FamilyService
	familyRepo  *repository.FamilyRepository
	memberRepo  *repository.MemberRepository
	requestRepo *repository.JoinRequestRepository
	email       *EmailService
	logger      *zap.Logger
}

// NewJoinRequestService creates a new join request service
func NewJoinRequestService(
	families *FamilyService,
	familyRepo *repository.FamilyRepository,
	memberRepo *repository.MemberRepository,
	requestRepo *repository.JoinRequestRepository,
	email *EmailService,
	logger *zap.Logger,
) *JoinRequestService {
	return &JoinRequestService{
		families:    families,
		familyRepo:  familyRepo,
		memberRepo:  memberRepo,
		requestRepo: requestRepo,
		email:       email,
		logger:      logger,
	}
}

// RequestToJoin records a pending request from userID to join familyID
func (s *JoinRequestService) RequestToJoin(ctx context.Context, userID, familyID int64, message string) (*models.JoinRequest, error) {
	family, err := s.familyRepo.GetFamilyByID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}

	member, err := s.memberRepo.GetMemberByUserAndFamily(ctx, userID, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member != nil {
		return nil, ErrAlreadyMember
	}

	pending, err := s.requestRepo.GetPendingRequest(ctx, familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending != nil {
		return nil, ErrJoinRequestPending
	}

	req, err := s.requestRepo.CreateJoinRequest(ctx, familyID, userID, strings.TrimSpace(message))
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	s.logger.Info("join request created",
		zap.Int64("family_id", familyID),
		zap.Int64("request_id", req.ID),
		zap.Int64("user_id", userID))
	return req, nil
}

// ListPending retrieves the pending requests of a family for one of its admins
func (s *JoinRequestService) ListPending(ctx context.Context, userID, familyID int64) ([]models.JoinRequest, error) {
	if _, err := s.families.Authorize(ctx, userID, familyID, models.RoleAdmin); err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.GetPendingRequests(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get join requests: %w", err)
	}
	return requests, nil
}

// Approve accepts a pending request and creates an active member linked to the requester
func (s *JoinRequestService) Approve(ctx context.Context, reviewerID, familyID, requestID int64) (*models.Member, error) {
	family, req, err := s.pendingRequest(ctx, reviewerID, familyID, requestID)
	if err != nil {
		return nil, err
	}

	member, err := models.NewMember(familyID, req.RequestName, &req.UserID, models.RoleMember, nil)
	if err != nil {
		return nil, err
	}

	created, err := s.requestRepo.Approve(ctx, req, reviewerID, member)
	if errors.Is(err, repository.ErrRequestAlreadyReviewed) {
		return nil, ErrJoinRequestReviewed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve join request: %w", err)
	}

	s.logger.Info("join request approved",
		zap.Int64("family_id", familyID),
		zap.Int64("request_id", requestID),
		zap.Int64("member_id", created.ID))
	s.notify(ctx, req, family, true)
	return created, nil
}

// Reject declines a pending request
func (s *JoinRequestService) Reject(ctx context.Context, reviewerID, familyID, requestID int64) error {
	family, req, err := s.pendingRequest(ctx, reviewerID, familyID, requestID)
	if err != nil {
		return err
	}

	err = s.requestRepo.Reject(ctx, req, reviewerID)
	if errors.Is(err, repository.ErrRequestAlreadyReviewed) {
		return ErrJoinRequestReviewed
	}
	if err != nil {
		return fmt.Errorf("failed to reject join request: %w", err)
	}

	s.logger.Info("join request rejected",
		zap.Int64("family_id", familyID),
		zap.Int64("request_id", requestID))
	s.notify(ctx, req, family, false)
	return nil
}

func (s *JoinRequestService) pendingRequest(ctx context.Context, reviewerID, familyID, requestID int64) (*models.Family, *models.JoinRequest, error) {
	family, _, err := s.families.authorize(ctx, reviewerID, familyID, models.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}

	req, err := s.requestRepo.GetJoinRequestByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get join request: %w", err)
	}
	if req == nil || req.FamilyID != familyID {
		return nil, nil, ErrJoinRequestNotFound
	}
	if !req.IsPending() {
		return nil, nil, ErrJoinRequestReviewed
	}
	return family, req, nil
}

// notify emails the decision; failures are logged and do not undo the review
func (s *JoinRequestService) notify(ctx context.Context, req *models.JoinRequest, family *models.Family, approved bool) {
	if err := s.email.SendJoinRequestDecision(ctx, req.RequestMail, req.RequestName, family.Name, approved); err != nil {
		s.logger.Warn("failed to send join request decision",
			zap.Int64("request_id", req.ID),
			zap.Error(err))
	}
}
