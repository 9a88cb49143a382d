package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pickleradar/internal/data/entity"
	"pickleradar/internal/data/repository"
	"pickleradar/internal/dto/request"
	"pickleradar/internal/dto/response"
	"pickleradar/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FriendService interface {
	SendRequest(ctx context.Context, userID uuid.UUID, req *request.FriendRequest) (*response.FriendRequestResponse, error)
	Respond(ctx context.Context, userID uuid.UUID, req *request.RespondFriendRequest) (*response.FriendRequestResponse, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]response.FriendResponse, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]response.FriendRequestResponse, error)
}

type friendService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewFriendService(repo *repository.Repository, log *zap.Logger) FriendService {
	return &friendService{
		repo: repo,
		log:  log.With(zap.String("service", "friend")),
	}
}

func (s *friendService) SendRequest(ctx context.Context, userID uuid.UUID, req *request.FriendRequest) (*response.FriendRequestResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	friendID, err := uuid.Parse(req.FriendID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: friend_id must be a valid UUID")
	}

	if friendID == userID {
		return nil, fmt.Errorf("cannot send a friend request to yourself")
	}

	friend, err := s.repo.User.FindByID(ctx, friendID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if friend == nil {
		return nil, fmt.Errorf("user not found")
	}

	existing, err := s.repo.Friend.FindBetween(ctx, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("check existing friendship: %w", err)
	}
	if existing != nil {
		switch existing.Status {
		case entity.FriendshipAccepted:
			return nil, fmt.Errorf("already friends")
		case entity.FriendshipPending:
			return nil, fmt.Errorf("friend request already pending")
		}
		// A declined request can be retried; reopen the same row.
		if err := s.repo.Friend.UpdateStatus(ctx, existing.ID, entity.FriendshipPending); err != nil {
			return nil, fmt.Errorf("reopen friend request: %w", err)
		}
		existing.Status = entity.FriendshipPending
		return friendshipToResponse(existing), nil
	}

	now := time.Now()
	friendship := &entity.Friendship{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RequesterID: userID,
		AddresseeID: friendID,
		Status:      entity.FriendshipPending,
	}

	if err := s.repo.Friend.CreateRequest(ctx, friendship); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("friend request already pending")
		}
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	s.log.Info("Friend request sent",
		zap.String("requester_id", userID.String()),
		zap.String("addressee_id", friendID.String()),
	)

	return friendshipToResponse(friendship), nil
}

func (s *friendService) Respond(ctx context.Context, userID uuid.UUID, req *request.RespondFriendRequest) (*response.FriendRequestResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, fmt.Errorf("validation failed: request_id must be a valid UUID")
	}

	friendship, err := s.repo.Friend.FindRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("find friend request: %w", err)
	}
	if friendship == nil {
		return nil, fmt.Errorf("friend request not found")
	}

	// Only the addressee can answer, and only while it is pending.
	if friendship.AddresseeID != userID {
		return nil, fmt.Errorf("friend request not found")
	}
	if friendship.Status != entity.FriendshipPending {
		return nil, fmt.Errorf("friend request already answered")
	}

	status := entity.FriendshipDeclined
	if req.Accept {
		status = entity.FriendshipAccepted
	}

	if err := s.repo.Friend.UpdateStatus(ctx, requestID, status); err != nil {
		return nil, fmt.Errorf("update friend request: %w", err)
	}

	s.log.Info("Friend request answered",
		zap.String("request_id", requestID.String()),
		zap.String("status", string(status)),
	)

	friendship.Status = status
	return friendshipToResponse(friendship), nil
}

func (s *friendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]response.FriendResponse, error) {
	rows, err := s.repo.Friend.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	friends := make([]response.FriendResponse, len(rows))
	for i, row := range rows {
		friends[i] = response.FriendResponse{
			UserID:      row.UserID.String(),
			Username:    row.Username,
			DisplayName: row.DisplayName,
		}
		if row.SkillLevel != nil {
			level := string(*row.SkillLevel)
			friends[i].SkillLevel = &level
		}
	}

	return friends, nil
}

func (s *friendService) ListPending(ctx context.Context, userID uuid.UUID) ([]response.FriendRequestResponse, error) {
	rows, err := s.repo.Friend.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}

	requests := make([]response.FriendRequestResponse, len(rows))
	for i, friendship := range rows {
		requests[i] = *friendshipToResponse(friendship)
	}

	return requests, nil
}

func friendshipToResponse(friendship *entity.Friendship) *response.FriendRequestResponse {
	return &response.FriendRequestResponse{
		ID:          friendship.ID.String(),
		RequesterID: friendship.RequesterID.String(),
		AddresseeID: friendship.AddresseeID.String(),
		Status:      string(friendship.Status),
		CreatedAt:   friendship.CreatedAt,
	}
}
