package usecase

import (
	"context"
	"testing"
	"time"

	"pickleradar/internal/data/entity"
	"pickleradar/internal/data/repository"
	"pickleradar/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFriendRepo struct {
	friendships map[uuid.UUID]*entity.Friendship
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{friendships: make(map[uuid.UUID]*entity.Friendship)}
}

func (f *fakeFriendRepo) CreateRequest(ctx context.Context, friendship *entity.Friendship) error {
	copied := *friendship
	f.friendships[friendship.ID] = &copied
	return nil
}

func (f *fakeFriendRepo) FindRequest(ctx context.Context, id uuid.UUID) (*entity.Friendship, error) {
	if friendship, ok := f.friendships[id]; ok {
		copied := *friendship
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeFriendRepo) FindBetween(ctx context.Context, userA, userB uuid.UUID) (*entity.Friendship, error) {
	for _, friendship := range f.friendships {
		sameDir := friendship.RequesterID == userA && friendship.AddresseeID == userB
		reverse := friendship.RequesterID == userB && friendship.AddresseeID == userA
		if sameDir || reverse {
			copied := *friendship
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeFriendRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.FriendshipStatus) error {
	if friendship, ok := f.friendships[id]; ok {
		friendship.Status = status
	}
	return nil
}

func (f *fakeFriendRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]repository.FriendRow, error) {
	return nil, nil
}

func (f *fakeFriendRepo) ListPending(ctx context.Context, userID uuid.UUID) ([]*entity.Friendship, error) {
	var pending []*entity.Friendship
	for _, friendship := range f.friendships {
		if friendship.AddresseeID == userID && friendship.Status == entity.FriendshipPending {
			copied := *friendship
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

func (f *fakeFriendRepo) ListFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, friendship := range f.friendships {
		if friendship.Status != entity.FriendshipAccepted {
			continue
		}
		switch userID {
		case friendship.RequesterID:
			ids = append(ids, friendship.AddresseeID)
		case friendship.AddresseeID:
			ids = append(ids, friendship.RequesterID)
		}
	}
	return ids, nil
}

func newFriendTestService(t *testing.T, userIDs ...uuid.UUID) (FriendService, *fakeFriendRepo) {
	t.Helper()

	users := make(map[uuid.UUID]*entity.User, len(userIDs))
	for _, id := range userIDs {
		users[id] = &entity.User{
			Base:        entity.Base{ID: id},
			DisplayName: "Player " + id.String()[:8],
		}
	}

	friends := newFakeFriendRepo()
	repo := &repository.Repository{
		User:   &fakeUserRepo{users: users},
		Friend: friends,
	}

	return NewFriendService(repo, zap.NewNop()), friends
}

func Test_SendRequest_CreatesPendingFriendship(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	service, friends := newFriendTestService(t, requester, addressee)

	result, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})

	require.NoError(t, err)
	require.Equal(t, string(entity.FriendshipPending), result.Status)
	require.Equal(t, requester.String(), result.RequesterID)
	require.Equal(t, addressee.String(), result.AddresseeID)

	stored, err := friends.FindBetween(context.Background(), requester, addressee)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func Test_SendRequest_RejectsSelf(t *testing.T) {
	userID := uuid.New()
	service, _ := newFriendTestService(t, userID)

	_, err := service.SendRequest(context.Background(), userID, &request.FriendRequest{
		FriendID: userID.String(),
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "yourself")
}

func Test_SendRequest_RejectsUnknownUser(t *testing.T) {
	requester := uuid.New()
	service, _ := newFriendTestService(t, requester)

	_, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: uuid.NewString(),
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func Test_SendRequest_RejectsDuplicatePending(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	service, _ := newFriendTestService(t, requester, addressee)

	_, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.NoError(t, err)

	_, err = service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already pending")
}

func Test_SendRequest_ReopensDeclinedRequest(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	service, friends := newFriendTestService(t, requester, addressee)

	first, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.NoError(t, err)

	requestID := uuid.MustParse(first.ID)
	require.NoError(t, friends.UpdateStatus(context.Background(), requestID, entity.FriendshipDeclined))

	reopened, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.NoError(t, err)
	require.Equal(t, first.ID, reopened.ID)
	require.Equal(t, string(entity.FriendshipPending), reopened.Status)
}

func Test_Respond_AcceptMakesFriends(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	service, friends := newFriendTestService(t, requester, addressee)

	sent, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.NoError(t, err)

	answered, err := service.Respond(context.Background(), addressee, &request.RespondFriendRequest{
		RequestID: sent.ID,
		Accept:    true,
	})

	require.NoError(t, err)
	require.Equal(t, string(entity.FriendshipAccepted), answered.Status)

	ids, err := friends.ListFriendIDs(context.Background(), requester)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{addressee}, ids)
}

func Test_Respond_OnlyAddresseeCanAnswer(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	service, _ := newFriendTestService(t, requester, addressee)

	sent, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.NoError(t, err)

	_, err = service.Respond(context.Background(), requester, &request.RespondFriendRequest{
		RequestID: sent.ID,
		Accept:    true,
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func Test_Respond_AlreadyAnsweredRejected(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	service, _ := newFriendTestService(t, requester, addressee)

	sent, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.NoError(t, err)

	_, err = service.Respond(context.Background(), addressee, &request.RespondFriendRequest{
		RequestID: sent.ID,
		Accept:    false,
	})
	require.NoError(t, err)

	_, err = service.Respond(context.Background(), addressee, &request.RespondFriendRequest{
		RequestID: sent.ID,
		Accept:    true,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already answered")
}

func Test_ListPending_OnlyAddresseeSide(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	service, _ := newFriendTestService(t, requester, addressee)

	_, err := service.SendRequest(context.Background(), requester, &request.FriendRequest{
		FriendID: addressee.String(),
	})
	require.NoError(t, err)

	forAddressee, err := service.ListPending(context.Background(), addressee)
	require.NoError(t, err)
	require.Len(t, forAddressee, 1)

	forRequester, err := service.ListPending(context.Background(), requester)
	require.NoError(t, err)
	require.Empty(t, forRequester)

	require.WithinDuration(t, time.Now(), forAddressee[0].CreatedAt, time.Minute)
}
