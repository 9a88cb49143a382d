package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"pickleradar/internal/data/entity"
	"pickleradar/internal/data/repository"
	"pickleradar/internal/dto/request"
	"pickleradar/internal/dto/response"
	"pickleradar/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==================== FAKES ====================

type checkInKey struct {
	userID  uuid.UUID
	courtID uuid.UUID
}

// fakeCheckInRepo mirrors the store's semantics in memory, including the
// one-active-row-per-user rejection.
type fakeCheckInRepo struct {
	mu         sync.Mutex
	rows       map[checkInKey]*entity.CheckIn
	courtNames map[uuid.UUID]string

	upsertErr error

	// When set, FindActiveByUser signals findEntered and then blocks until
	// findRelease is closed.
	findEntered chan struct{}
	findRelease chan struct{}
}

func newFakeCheckInRepo(courtNames map[uuid.UUID]string) *fakeCheckInRepo {
	return &fakeCheckInRepo{
		rows:       make(map[checkInKey]*entity.CheckIn),
		courtNames: courtNames,
	}
}

func (f *fakeCheckInRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (*entity.CheckIn, error) {
	if f.findEntered != nil {
		f.findEntered <- struct{}{}
		<-f.findRelease
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID == userID && row.IsActive(now) {
			copied := *row
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeCheckInRepo) FindByUserAndCourt(ctx context.Context, userID, courtID uuid.UUID) (*entity.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row, ok := f.rows[checkInKey{userID, courtID}]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeCheckInRepo) Upsert(ctx context.Context, checkIn *entity.CheckIn) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID != checkIn.UserID || row.CourtID == checkIn.CourtID {
			continue
		}
		if row.Active && row.ExpiresAt.After(checkIn.CreatedAt) {
			return repository.ErrActiveCheckInExists
		}
		row.Active = false
	}

	copied := *checkIn
	copied.Active = true
	f.rows[checkInKey{checkIn.UserID, checkIn.CourtID}] = &copied
	return nil
}

func (f *fakeCheckInRepo) Deactivate(ctx context.Context, userID, courtID uuid.UUID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row, ok := f.rows[checkInKey{userID, courtID}]; ok {
		row.Active = false
		if row.ExpiresAt.After(now) {
			row.ExpiresAt = now
		}
	}
	return nil
}

func (f *fakeCheckInRepo) SetNotificationHandle(ctx context.Context, userID, courtID uuid.UUID, handle *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row, ok := f.rows[checkInKey{userID, courtID}]; ok {
		row.NotificationHandle = handle
	}
	return nil
}

func (f *fakeCheckInRepo) ListHistory(ctx context.Context, userID uuid.UUID, limit int) ([]repository.CheckInHistoryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var history []repository.CheckInHistoryRow
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		name, ok := f.courtNames[row.CourtID]
		if !ok {
			name = "Unknown Court"
		}
		history = append(history, repository.CheckInHistoryRow{
			ID:              row.ID,
			CourtID:         row.CourtID,
			CourtName:       name,
			SkillLevel:      row.SkillLevel,
			DurationMinutes: row.DurationMinutes,
			CheckedInAt:     row.CreatedAt,
		})
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].CheckedInAt.After(history[j].CheckedInAt)
	})
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (f *fakeCheckInRepo) ListActiveByCourt(ctx context.Context, courtID uuid.UUID, now time.Time) ([]repository.ActivePlayerRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var players []repository.ActivePlayerRow
	for _, row := range f.rows {
		if row.CourtID == courtID && row.IsActive(now) {
			players = append(players, repository.ActivePlayerRow{
				UserID:      row.UserID,
				SkillLevel:  row.SkillLevel,
				CheckedInAt: row.CreatedAt,
				ExpiresAt:   row.ExpiresAt,
			})
		}
	}
	return players, nil
}

func (f *fakeCheckInRepo) CountActiveByCourt(ctx context.Context, courtID uuid.UUID, now time.Time) (int64, error) {
	players, _ := f.ListActiveByCourt(ctx, courtID, now)
	return int64(len(players)), nil
}

func (f *fakeCheckInRepo) row(userID, courtID uuid.UUID) *entity.CheckIn {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row, ok := f.rows[checkInKey{userID, courtID}]; ok {
		copied := *row
		return &copied
	}
	return nil
}

type fakeCourtRepo struct {
	names map[uuid.UUID]string
}

func (f *fakeCourtRepo) Create(ctx context.Context, court *entity.Court) error { return nil }
func (f *fakeCourtRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Court, error) {
	return nil, nil
}
func (f *fakeCourtRepo) FindName(ctx context.Context, id uuid.UUID) (string, error) {
	return f.names[id], nil
}
func (f *fakeCourtRepo) FindAll(ctx context.Context, limit, offset int, filter repository.CourtFilter) ([]*entity.Court, error) {
	return nil, nil
}
func (f *fakeCourtRepo) CountAll(ctx context.Context, filter repository.CourtFilter) (int64, error) {
	return 0, nil
}
func (f *fakeCourtRepo) Update(ctx context.Context, court *entity.Court) error { return nil }
func (f *fakeCourtRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}
func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

// fakeDispatcher records notification calls; err makes every call fail.
type fakeDispatcher struct {
	mu  sync.Mutex
	err error

	scheduled  []string
	cancelled  []string
	immediates []notify.PushMessage
	checkIns   []notify.CheckInCreatedEvent
	checkOuts  []notify.CheckInRemovedEvent
}

func (f *fakeDispatcher) ScheduleReminder(ctx context.Context, userID, message string, fireAt time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	handle := uuid.NewString()
	f.mu.Lock()
	f.scheduled = append(f.scheduled, handle)
	f.mu.Unlock()
	return handle, nil
}

func (f *fakeDispatcher) CancelReminder(ctx context.Context, handle string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.cancelled = append(f.cancelled, handle)
	f.mu.Unlock()
	return nil
}

func (f *fakeDispatcher) SendImmediate(ctx context.Context, msg notify.PushMessage) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.immediates = append(f.immediates, msg)
	f.mu.Unlock()
	return nil
}

func (f *fakeDispatcher) NotifyFriendsOfCheckIn(ctx context.Context, event notify.CheckInCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.checkIns = append(f.checkIns, event)
	f.mu.Unlock()
	return nil
}

func (f *fakeDispatcher) NotifyFriendsOfCheckOut(ctx context.Context, event notify.CheckInRemovedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.checkOuts = append(f.checkOuts, event)
	f.mu.Unlock()
	return nil
}

func (f *fakeDispatcher) scheduledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scheduled)
}

func (f *fakeDispatcher) checkOutEvents() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.checkOuts)
}

// ==================== TEST SETUP ====================

type testEnv struct {
	service  *checkInService
	checkIns *fakeCheckInRepo
	notifier *fakeDispatcher
	now      time.Time

	userID uuid.UUID
	courtA uuid.UUID
	courtB uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userID := uuid.New()
	courtA := uuid.New()
	courtB := uuid.New()

	courtNames := map[uuid.UUID]string{
		courtA: "Sunset Park",
		courtB: "Riverside Courts",
	}

	checkIns := newFakeCheckInRepo(courtNames)
	notifier := &fakeDispatcher{}

	repo := &repository.Repository{
		User: &fakeUserRepo{users: map[uuid.UUID]*entity.User{
			userID: {
				Base:        entity.Base{ID: userID},
				Username:    "dinkmaster",
				DisplayName: "Dink Master",
			},
		}},
		Court:   &fakeCourtRepo{names: courtNames},
		CheckIn: checkIns,
	}

	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	service := NewCheckInService(repo, notifier, zap.NewNop(), 0).(*checkInService)
	service.now = func() time.Time { return now }

	return &testEnv{
		service:  service,
		checkIns: checkIns,
		notifier: notifier,
		now:      now,
		userID:   userID,
		courtA:   courtA,
		courtB:   courtB,
	}
}

func checkInReq(courtID uuid.UUID, minutes int) *request.CheckInRequest {
	return &request.CheckInRequest{
		CourtID:         courtID.String(),
		SkillLevel:      "Intermediate",
		DurationMinutes: minutes,
	}
}

// ==================== CHECK-IN ====================

func Test_CheckIn_Succeeds(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 90))

	require.True(t, result.Success)
	require.Equal(t, "Sunset Park", result.CourtName)
	require.Empty(t, result.Code)

	row := env.checkIns.row(env.userID, env.courtA)
	require.NotNil(t, row)
	require.True(t, row.Active)
	require.Equal(t, env.now.Add(90*time.Minute), row.ExpiresAt)
}

func Test_CheckIn_RejectedWhenActiveAtAnotherCourt(t *testing.T) {
	env := newTestEnv(t)
	first := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 120))
	require.True(t, first.Success)

	result := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtB, 60))

	require.False(t, result.Success)
	require.Equal(t, response.CodeAlreadyCheckedIn, result.Code)
	require.Equal(t, env.courtA.String(), result.CourtID)
	require.Equal(t, "Sunset Park", result.CourtName)
	require.Contains(t, result.Error, "Sunset Park")

	// The losing request must not leave a row behind.
	require.Nil(t, env.checkIns.row(env.userID, env.courtB))
}

func Test_CheckIn_RenewsAtSameCourt(t *testing.T) {
	env := newTestEnv(t)
	first := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 60))
	require.True(t, first.Success)

	firstRow := env.checkIns.row(env.userID, env.courtA)
	require.NotNil(t, firstRow)

	second := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 120))
	require.True(t, second.Success)

	secondRow := env.checkIns.row(env.userID, env.courtA)
	require.NotNil(t, secondRow)
	require.Equal(t, firstRow.ID, secondRow.ID)
	require.Equal(t, env.now.Add(120*time.Minute), secondRow.ExpiresAt)
}

func Test_CheckIn_AllowedAfterPreviousExpired(t *testing.T) {
	env := newTestEnv(t)
	first := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 30))
	require.True(t, first.Success)

	// Move past the first check-in's expiry; no checkout ever happened.
	env.service.now = func() time.Time { return env.now.Add(45 * time.Minute) }

	result := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtB, 60))

	require.True(t, result.Success)
	require.Equal(t, "Riverside Courts", result.CourtName)

	stale := env.checkIns.row(env.userID, env.courtA)
	require.NotNil(t, stale)
	require.False(t, stale.Active)
}

func Test_CheckIn_RaceLoserGetsConflict(t *testing.T) {
	env := newTestEnv(t)
	env.checkIns.upsertErr = repository.ErrActiveCheckInExists

	result := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtB, 60))

	require.False(t, result.Success)
	require.Equal(t, response.CodeAlreadyCheckedIn, result.Code)
}

func Test_CheckIn_SucceedsWhenNotifierFails(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("broker unreachable")

	result := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 90))

	require.True(t, result.Success)

	row := env.checkIns.row(env.userID, env.courtA)
	require.NotNil(t, row)
	require.True(t, row.Active)
}

func Test_CheckIn_SchedulesReminderAndNotifiesFriends(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 90))
	require.True(t, result.Success)

	require.Eventually(t, func() bool {
		return env.notifier.scheduledCount() == 1
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		env.notifier.mu.Lock()
		defer env.notifier.mu.Unlock()
		return len(env.notifier.checkIns) == 1
	}, time.Second, 10*time.Millisecond)

	env.notifier.mu.Lock()
	event := env.notifier.checkIns[0]
	env.notifier.mu.Unlock()

	require.Equal(t, env.userID.String(), event.UserID)
	require.Equal(t, "Dink Master", event.DisplayName)
	require.Equal(t, "Sunset Park", event.CourtName)
}

func Test_CheckIn_SecondOperationInFlightRejected(t *testing.T) {
	env := newTestEnv(t)
	env.checkIns.findEntered = make(chan struct{})
	env.checkIns.findRelease = make(chan struct{})

	done := make(chan *response.CheckInResult)
	go func() {
		done <- env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 60))
	}()

	// First call is now holding the user's slot inside the store read.
	<-env.checkIns.findEntered

	second := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtB, 60))
	require.False(t, second.Success)
	require.Equal(t, response.CodeOperationInFlight, second.Code)

	close(env.checkIns.findRelease)
	first := <-done
	require.True(t, first.Success)
}

func Test_CheckIn_InvalidDurationRejected(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 0))

	require.False(t, result.Success)
	require.Contains(t, result.Error, "Validation failed")
}

// ==================== CHECK-OUT ====================

func Test_CheckOut_Succeeds(t *testing.T) {
	env := newTestEnv(t)
	checkIn := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 90))
	require.True(t, checkIn.Success)

	result := env.service.CheckOut(context.Background(), env.userID.String(), &request.CheckOutRequest{
		CourtID: env.courtA.String(),
	})

	require.True(t, result.Success)
	require.Equal(t, "Sunset Park", result.CourtName)

	row := env.checkIns.row(env.userID, env.courtA)
	require.NotNil(t, row)
	require.False(t, row.Active)
}

func Test_CheckOut_IdempotentWhenNotCheckedIn(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.CheckOut(context.Background(), env.userID.String(), &request.CheckOutRequest{
		CourtID: env.courtA.String(),
	})

	require.True(t, result.Success)
}

func Test_CheckOut_UsesClientSuppliedCourtName(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.CheckOut(context.Background(), env.userID.String(), &request.CheckOutRequest{
		CourtID:   env.courtA.String(),
		CourtName: "The Local Spot",
	})

	require.True(t, result.Success)
	require.Equal(t, "The Local Spot", result.CourtName)
}

func Test_CheckOut_NotifiesFriends(t *testing.T) {
	env := newTestEnv(t)
	checkIn := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 90))
	require.True(t, checkIn.Success)

	result := env.service.CheckOut(context.Background(), env.userID.String(), &request.CheckOutRequest{
		CourtID: env.courtA.String(),
	})
	require.True(t, result.Success)

	require.Eventually(t, func() bool {
		return env.notifier.checkOutEvents() == 1
	}, time.Second, 10*time.Millisecond)
}

// ==================== READS ====================

func Test_GetActiveSession_NilWhenNone(t *testing.T) {
	env := newTestEnv(t)

	active, err := env.service.GetActiveSession(context.Background(), env.userID.String())

	require.NoError(t, err)
	require.Nil(t, active)
}

func Test_GetActiveSession_ReturnsRemainingTime(t *testing.T) {
	env := newTestEnv(t)
	checkIn := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 125))
	require.True(t, checkIn.Success)

	active, err := env.service.GetActiveSession(context.Background(), env.userID.String())

	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, "Sunset Park", active.CourtName)
	require.Equal(t, 2, active.Remaining.Hours)
	require.Equal(t, 5, active.Remaining.Minutes)
	require.Equal(t, 125, active.Remaining.TotalMinutes)
}

func Test_GetActiveSession_NilAfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	checkIn := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 30))
	require.True(t, checkIn.Success)

	env.service.now = func() time.Time { return env.now.Add(31 * time.Minute) }

	active, err := env.service.GetActiveSession(context.Background(), env.userID.String())

	require.NoError(t, err)
	require.Nil(t, active)
}

func Test_History_IncludesCheckedOutSessions(t *testing.T) {
	env := newTestEnv(t)
	checkIn := env.service.CheckIn(context.Background(), env.userID.String(), checkInReq(env.courtA, 60))
	require.True(t, checkIn.Success)

	checkOut := env.service.CheckOut(context.Background(), env.userID.String(), &request.CheckOutRequest{
		CourtID: env.courtA.String(),
	})
	require.True(t, checkOut.Success)

	history, err := env.service.History(context.Background(), env.userID.String(), 10)

	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "Sunset Park", history[0].CourtName)
}

// ==================== REMAINING TIME ====================

func Test_RemainingTime_SplitsHoursAndMinutes(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	remaining := RemainingTime(now.Add(125*time.Minute), now)

	require.Equal(t, 2, remaining.Hours)
	require.Equal(t, 5, remaining.Minutes)
	require.Equal(t, 125, remaining.TotalMinutes)
}

func Test_RemainingTime_ClampsToZeroWhenExpired(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)

	remaining := RemainingTime(now.Add(-15*time.Minute), now)

	require.Equal(t, 0, remaining.Hours)
	require.Equal(t, 0, remaining.Minutes)
	require.Equal(t, 0, remaining.TotalMinutes)
}
