package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"swyft/internal/models"
	"swyft/internal/repositories/interfaces"
	"swyft/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRideRepo implements interfaces.RideRepository in memory. Transition
// methods hold the lock across check and mutation, matching the atomic
// conditional updates of the Mongo implementation.
type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
	seq   int64
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (f *fakeRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride.ID = primitive.NewObjectID()
	ride.Status = models.RideStatusPending
	ride.DriverAssigned = false
	f.seq++
	ride.CreatedAt = baseTime.Add(time.Duration(f.seq) * time.Second)

	cp := *ride
	f.rides[ride.ID] = &cp
	return nil
}

func (f *fakeRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[id]
	if !ok {
		return nil, models.ErrRideNotFound
	}
	cp := *ride
	return &cp, nil
}

func (f *fakeRideRepo) List(ctx context.Context, filter *interfaces.RideFilter) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Ride
	for _, ride := range f.rides {
		if filter != nil {
			if filter.PassengerEmail != "" && ride.PassengerEmail != filter.PassengerEmail {
				continue
			}
			if filter.DriverEmail != "" && ride.DriverEmail != filter.DriverEmail {
				continue
			}
			if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ride.Status) {
				continue
			}
		}
		cp := *ride
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRideRepo) GetActiveByDriver(ctx context.Context, driverEmail string) ([]*models.Ride, error) {
	return f.List(ctx, &interfaces.RideFilter{
		DriverEmail: driverEmail,
		Statuses:    []models.RideStatus{models.RideStatusAccepted, models.RideStatusInProgress},
	})
}

func (f *fakeRideRepo) AssignDriver(ctx context.Context, id primitive.ObjectID, driver *models.User) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[id]
	if !ok {
		return nil, models.ErrRideNotFound
	}
	if ride.DriverAssigned {
		return nil, models.ErrRideAlreadyAssigned
	}

	now := timeNow()
	ride.DriverName = driver.FullName()
	ride.DriverEmail = driver.Email
	ride.DriverPhone = driver.Phone
	ride.DriverVehicle = driver.VehiclePlate
	ride.DriverAssigned = true
	ride.Status = models.RideStatusAccepted
	ride.AcceptedAt = &now

	cp := *ride
	return &cp, nil
}

func (f *fakeRideRepo) StartRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[id]
	if !ok {
		return nil, models.ErrRideNotFound
	}
	if !ride.DriverAssigned {
		return nil, models.ErrNoDriverAssigned
	}
	if ride.Status != models.RideStatusAccepted {
		return nil, models.ErrInvalidRideState
	}

	now := timeNow()
	ride.Status = models.RideStatusInProgress
	ride.StartedAt = &now

	cp := *ride
	return &cp, nil
}

func (f *fakeRideRepo) CompleteRide(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[id]
	if !ok {
		return nil, models.ErrRideNotFound
	}
	if ride.Status != models.RideStatusAccepted && ride.Status != models.RideStatusInProgress {
		return nil, models.ErrInvalidRideState
	}

	now := timeNow()
	ride.Status = models.RideStatusCompleted
	ride.CompletedAt = &now

	cp := *ride
	return &cp, nil
}

func (f *fakeRideRepo) CancelRide(ctx context.Context, id primitive.ObjectID, canceledBy, reason string) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[id]
	if !ok {
		return nil, models.ErrRideNotFound
	}
	switch ride.Status {
	case models.RideStatusPending, models.RideStatusAccepted, models.RideStatusInProgress:
	default:
		return nil, models.ErrInvalidRideState
	}

	now := timeNow()
	ride.Status = models.RideStatusCanceled
	ride.CanceledAt = &now
	ride.CanceledBy = canceledBy
	ride.CancellationReason = reason

	cp := *ride
	return &cp, nil
}

func (f *fakeRideRepo) UpdateDriverLocation(ctx context.Context, id primitive.ObjectID, lat, lng float64) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[id]
	if !ok {
		return nil, models.ErrRideNotFound
	}
	if !ride.DriverAssigned {
		return nil, models.ErrNoDriverAssigned
	}
	if ride.Status != models.RideStatusAccepted && ride.Status != models.RideStatusInProgress {
		return nil, models.ErrInvalidRideState
	}

	ride.DriverLat = &lat
	ride.DriverLng = &lng

	cp := *ride
	return &cp, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetDriverByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok || user.Role != models.UserRoleDriver {
		return nil, models.ErrDriverNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) ListDrivers(ctx context.Context) ([]*models.DriverSummary, error) {
	var out []*models.DriverSummary
	for _, u := range f.users {
		if u.Role == models.UserRoleDriver {
			out = append(out, &models.DriverSummary{
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				Email:        u.Email,
				Phone:        u.Phone,
				VehiclePlate: u.VehiclePlate,
			})
		}
	}
	return out, nil
}

// recordingNotifier captures published events. Room is empty for broadcasts.
type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Room    string
	Event   string
	Payload interface{}
}

func (n *recordingNotifier) Broadcast(event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{Event: event, Payload: payload})
}

func (n *recordingNotifier) PublishToRoom(room, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedEvent{Room: room, Event: event, Payload: payload})
}

func (n *recordingNotifier) byEvent(event string) []publishedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []publishedEvent
	for _, e := range n.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

var baseTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func timeNow() time.Time {
	return time.Now().UTC()
}

func containsStatus(statuses []models.RideStatus, status models.RideStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel})
	require.NoError(t, err)
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T, drivers ...*models.User) (RideService, *fakeRideRepo, *recordingNotifier) {
	t.Helper()
	repo := newFakeRideRepo()
	notifier := &recordingNotifier{}
	svc := NewRideService(repo, newFakeUserRepo(drivers...), notifier, nil, testLogger(t))
	return svc, repo, notifier
}

func testDriver() *models.User {
	return &models.User{
		FirstName:    "Dana",
		LastName:     "Okafor",
		Email:        "dana@drivers.test",
		Phone:        "+15550001111",
		Role:         models.UserRoleDriver,
		VehiclePlate: "KAA 123X",
	}
}

func bookingInput() *BookRideInput {
	return &BookRideInput{
		PassengerName:  "Priya Shah",
		PassengerEmail: "priya@passengers.test",
		PassengerPhone: "+15550002222",
		Pickup:         "Union Square",
		Dropoff:        "Airport Terminal 2",
		RideType:       models.RideTypeEconomy,
		Price:          24.50,
	}
}

func TestCreateRideStartsPendingAndUnassigned(t *testing.T) {
	svc, _, notifier := newTestService(t)

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	assert.Equal(t, models.RideStatusPending, ride.Status)
	assert.False(t, ride.DriverAssigned)
	assert.Empty(t, ride.DriverEmail)
	assert.Nil(t, ride.DriverLat)
	assert.Equal(t, 24.50, ride.Price)
	assert.False(t, ride.CreatedAt.IsZero())

	events := notifier.byEvent(EventNewRide)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Room, "newRide must be a broadcast")
}

func TestAcceptRideAssignsDriver(t *testing.T) {
	svc, _, notifier := newTestService(t, testDriver())

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	accepted, driver, err := svc.AcceptRide(context.Background(), ride.ID, "dana@drivers.test", "+15559998888")
	require.NoError(t, err)

	assert.Equal(t, models.RideStatusAccepted, accepted.Status)
	assert.True(t, accepted.DriverAssigned)
	assert.Equal(t, "Dana Okafor", accepted.DriverName)
	assert.Equal(t, "dana@drivers.test", accepted.DriverEmail)
	assert.Equal(t, "+15559998888", accepted.DriverPhone)
	assert.Equal(t, "KAA 123X", accepted.DriverVehicle)
	require.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, "KAA 123X", driver.VehiclePlate)

	updates := notifier.byEvent(EventRideUpdated)
	require.Len(t, updates, 2)
	rooms := []string{updates[0].Room, updates[1].Room}
	assert.Contains(t, rooms, "")
	assert.Contains(t, rooms, "priya@passengers.test")
}

func TestAcceptRideUnknownDriver(t *testing.T) {
	svc, _, _ := newTestService(t)

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	_, _, err = svc.AcceptRide(context.Background(), ride.ID, "nobody@drivers.test", "")
	assert.ErrorIs(t, err, models.ErrDriverNotFound)
}

func TestAcceptRidePassengerRoleRejected(t *testing.T) {
	passenger := &models.User{
		FirstName: "Priya",
		Email:     "priya@passengers.test",
		Role:      models.UserRolePassenger,
	}
	svc, _, _ := newTestService(t, passenger)

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	_, _, err = svc.AcceptRide(context.Background(), ride.ID, "priya@passengers.test", "")
	assert.ErrorIs(t, err, models.ErrDriverNotFound)
}

func TestAcceptRideSecondAttemptConflicts(t *testing.T) {
	second := &models.User{
		FirstName:    "Miguel",
		LastName:     "Reyes",
		Email:        "miguel@drivers.test",
		Role:         models.UserRoleDriver,
		VehiclePlate: "KBB 456Y",
	}
	svc, _, _ := newTestService(t, testDriver(), second)

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	_, _, err = svc.AcceptRide(context.Background(), ride.ID, "dana@drivers.test", "")
	require.NoError(t, err)

	_, _, err = svc.AcceptRide(context.Background(), ride.ID, "miguel@drivers.test", "")
	assert.ErrorIs(t, err, models.ErrRideAlreadyAssigned)
}

func TestAcceptRideConcurrentExactlyOneWinner(t *testing.T) {
	drivers := []*models.User{
		{FirstName: "Dana", Email: "d1@drivers.test", Role: models.UserRoleDriver, VehiclePlate: "P1"},
		{FirstName: "Miguel", Email: "d2@drivers.test", Role: models.UserRoleDriver, VehiclePlate: "P2"},
		{FirstName: "Ayo", Email: "d3@drivers.test", Role: models.UserRoleDriver, VehiclePlate: "P3"},
		{FirstName: "Lena", Email: "d4@drivers.test", Role: models.UserRoleDriver, VehiclePlate: "P4"},
	}
	svc, repo, _ := newTestService(t, drivers...)

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, len(drivers))
	for i, d := range drivers {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			_, _, errs[i] = svc.AcceptRide(context.Background(), ride.ID, email, "")
		}(i, d.Email)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, models.ErrRideAlreadyAssigned)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent accept must succeed")

	final, err := repo.GetByID(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.True(t, final.DriverAssigned)
	assert.Equal(t, models.RideStatusAccepted, final.Status)
}

func TestStartRideRequiresAssignedDriver(t *testing.T) {
	svc, _, _ := newTestService(t)

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	_, err = svc.StartRide(context.Background(), ride.ID)
	assert.ErrorIs(t, err, models.ErrNoDriverAssigned)
}

func TestCompleteRideOnlyFromActiveStates(t *testing.T) {
	svc, _, _ := newTestService(t, testDriver())

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	_, err = svc.CompleteRide(context.Background(), ride.ID)
	assert.ErrorIs(t, err, models.ErrInvalidRideState, "pending ride must not complete")

	_, _, err = svc.AcceptRide(context.Background(), ride.ID, "dana@drivers.test", "")
	require.NoError(t, err)

	completed, err := svc.CompleteRide(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = svc.CompleteRide(context.Background(), ride.ID)
	assert.ErrorIs(t, err, models.ErrInvalidRideState, "completed ride must not complete twice")
}

func TestCancelRideIsTerminal(t *testing.T) {
	svc, _, _ := newTestService(t, testDriver())

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)
	_, _, err = svc.AcceptRide(context.Background(), ride.ID, "dana@drivers.test", "")
	require.NoError(t, err)

	canceled, err := svc.CancelRide(context.Background(), ride.ID, models.CanceledByDriver, "passenger no-show")
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCanceled, canceled.Status)
	require.NotNil(t, canceled.CanceledAt)
	assert.Equal(t, models.CanceledByDriver, canceled.CanceledBy)
	assert.Equal(t, "passenger no-show", canceled.CancellationReason)

	_, err = svc.StartRide(context.Background(), ride.ID)
	assert.ErrorIs(t, err, models.ErrInvalidRideState)
	_, err = svc.CompleteRide(context.Background(), ride.ID)
	assert.ErrorIs(t, err, models.ErrInvalidRideState)
	_, err = svc.CancelRide(context.Background(), ride.ID, "", "")
	assert.ErrorIs(t, err, models.ErrInvalidRideState)
}

func TestCancelPendingRideAsPassengerWithdrawal(t *testing.T) {
	svc, _, _ := newTestService(t)

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	canceled, err := svc.CancelRide(context.Background(), ride.ID, models.CanceledByPassenger, "")
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCanceled, canceled.Status)
	assert.Equal(t, models.CanceledByPassenger, canceled.CanceledBy)
	assert.False(t, canceled.DriverAssigned)
}

func TestUpdateDriverLocationGuards(t *testing.T) {
	svc, repo, notifier := newTestService(t, testDriver())

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	_, err = svc.UpdateDriverLocation(context.Background(), ride.ID, 40.75, -73.99)
	assert.ErrorIs(t, err, models.ErrNoDriverAssigned)

	stored, err := repo.GetByID(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.DriverLat, "failed update must not touch coordinates")
	assert.Nil(t, stored.DriverLng)

	_, _, err = svc.AcceptRide(context.Background(), ride.ID, "dana@drivers.test", "")
	require.NoError(t, err)

	updated, err := svc.UpdateDriverLocation(context.Background(), ride.ID, 40.75, -73.99)
	require.NoError(t, err)
	require.NotNil(t, updated.DriverLat)
	assert.Equal(t, 40.75, *updated.DriverLat)
	assert.Equal(t, -73.99, *updated.DriverLng)

	locEvents := notifier.byEvent(EventDriverLocationUpdated)
	require.Len(t, locEvents, 2, "location update publishes broadcast + passenger room")
	payload, ok := locEvents[0].Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ride.ID.Hex(), payload["rideId"])
	assert.Equal(t, 40.75, payload["lat"])
	assert.Equal(t, -73.99, payload["lng"])

	// Location ticks must not masquerade as status changes: one accept
	// produced the only rideUpdated pair.
	assert.Len(t, notifier.byEvent(EventRideUpdated), 2)
}

func TestRideLifecycleHappyPath(t *testing.T) {
	svc, _, _ := newTestService(t, testDriver())

	ride, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusPending, ride.Status)

	accepted, _, err := svc.AcceptRide(context.Background(), ride.ID, "dana@drivers.test", "")
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusAccepted, accepted.Status)
	assert.Equal(t, "dana@drivers.test", accepted.DriverEmail)

	started, err := svc.StartRide(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)

	completed, err := svc.CompleteRide(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	_, err = svc.CompleteRide(context.Background(), ride.ID)
	assert.ErrorIs(t, err, models.ErrInvalidRideState)
}

func TestListRidesFiltersByStatusNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t, testDriver())

	first, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)
	second, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)
	third, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)

	_, _, err = svc.AcceptRide(context.Background(), first.ID, "dana@drivers.test", "")
	require.NoError(t, err)
	_, _, err = svc.AcceptRide(context.Background(), second.ID, "dana@drivers.test", "")
	require.NoError(t, err)
	_, err = svc.StartRide(context.Background(), second.ID)
	require.NoError(t, err)

	rides, err := svc.ListRides(context.Background(), &interfaces.RideFilter{
		Statuses: []models.RideStatus{models.RideStatusAccepted, models.RideStatusInProgress},
	})
	require.NoError(t, err)

	require.Len(t, rides, 2)
	assert.Equal(t, second.ID, rides[0].ID, "newest created first")
	assert.Equal(t, first.ID, rides[1].ID)
	for _, r := range rides {
		assert.NotEqual(t, third.ID, r.ID)
		assert.True(t, r.IsActive())
	}
}

func TestListActiveRidesExcludesFinishedRides(t *testing.T) {
	svc, _, _ := newTestService(t, testDriver())

	done, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)
	_, _, err = svc.AcceptRide(context.Background(), done.ID, "dana@drivers.test", "")
	require.NoError(t, err)
	_, err = svc.CompleteRide(context.Background(), done.ID)
	require.NoError(t, err)

	active, err := svc.CreateRide(context.Background(), bookingInput())
	require.NoError(t, err)
	_, _, err = svc.AcceptRide(context.Background(), active.ID, "dana@drivers.test", "")
	require.NoError(t, err)

	rides, err := svc.ListActiveRides(context.Background(), "dana@drivers.test")
	require.NoError(t, err)
	require.Len(t, rides, 1)
	assert.Equal(t, active.ID, rides[0].ID)
}
