package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/common/domain"
	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
	"github.com/transport-ledger/service-transport/internal/form"
)

func newTestDraftService(resolver form.Resolver, policy transport.AmountPolicy) (*DraftService, *memoryRepo) {
	repo := newMemoryRepo()
	transports := newTestTransportService(repo, policy, nil)
	return NewDraftService(resolver, transports, 10*time.Minute, zap.NewNop()), repo
}

var hyderabadResolver = fixedResolver{
	address:  geo.AddressResult{Address: "Hyderabad, Telangana"},
	distance: geo.RouteDistance{Km: 162, Resolved: true},
}

func TestDraftService_PickBothPointsAndSubmit(t *testing.T) {
	svc, repo := newTestDraftService(hyderabadResolver, transport.AmountDistanceTimesRate)
	ctx := context.Background()

	draft := svc.Create()
	require.NotEmpty(t, draft.ID)
	assert.Equal(t, form.StateClosed, draft.Selection.State)

	_, err := svc.Patch(draft.ID, []byte(`{
		"date_of_transport": "2025-03-04",
		"vehicle_no": "TS09AB1234",
		"quantity_qtls": 120.5,
		"no_of_bags": 241,
		"rate_per_km": 45
	}`))
	require.NoError(t, err)

	for _, field := range []string{"starting_point", "destination_point"} {
		opened, err := svc.OpenPicker(draft.ID, field)
		require.NoError(t, err)
		assert.Equal(t, form.StateOpen, opened.Selection.State)

		got, err := svc.SelectPoint(ctx, draft.ID, geo.Point{Lat: 17.3, Lng: 78.4})
		require.NoError(t, err)
		assert.Equal(t, form.StateClosed, got.Selection.State)
	}

	got, err := svc.Get(draft.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Values.DistanceKm)
	assert.Equal(t, 162.0, *got.Values.DistanceKm)
	assert.Equal(t, 7290.0, *got.Values.Amount)

	rec, err := svc.Submit(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hyderabad, Telangana", rec.StartingPoint)
	assert.Len(t, repo.records, 1)

	_, err = svc.Get(draft.ID)
	assert.True(t, domain.IsNotFound(err), "submitted draft is gone")
	assert.Zero(t, svc.Len())
}

func TestDraftService_SubmitIncompleteKeepsDraft(t *testing.T) {
	svc, repo := newTestDraftService(hyderabadResolver, transport.AmountManual)
	draft := svc.Create()

	_, err := svc.Submit(context.Background(), draft.ID)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, repo.records)

	_, err = svc.Get(draft.ID)
	assert.NoError(t, err)
}

func TestDraftService_SelectPointWithoutPicker(t *testing.T) {
	svc, _ := newTestDraftService(hyderabadResolver, transport.AmountManual)
	draft := svc.Create()

	_, err := svc.SelectPoint(context.Background(), draft.ID, geo.Point{Lat: 1, Lng: 1})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	_, err = svc.OpenPicker(draft.ID, "vehicle_no")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.OpenPicker(draft.ID, "starting_point")
	require.NoError(t, err)
	_, err = svc.SelectPoint(context.Background(), draft.ID, geo.Point{Lat: 100, Lng: 1})
	assert.True(t, domain.IsValidation(err))
}

func TestDraftService_SelectPointReturnsOnContextEnd(t *testing.T) {
	slow := hyderabadResolver
	slow.delay = 200 * time.Millisecond
	svc, _ := newTestDraftService(slow, transport.AmountManual)
	draft := svc.Create()
	_, err := svc.OpenPicker(draft.ID, "starting_point")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	got, err := svc.SelectPoint(ctx, draft.ID, geo.Point{Lat: 17.3, Lng: 78.4})
	require.NoError(t, err)
	assert.Equal(t, form.StateResolving, got.Selection.State)

	assert.Eventually(t, func() bool {
		d, err := svc.Get(draft.ID)
		return err == nil && d.Values.StartingPoint == "Hyderabad, Telangana"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDraftService_CancelAndDiscard(t *testing.T) {
	svc, _ := newTestDraftService(hyderabadResolver, transport.AmountManual)
	draft := svc.Create()

	_, err := svc.OpenPicker(draft.ID, "destination_point")
	require.NoError(t, err)
	got, err := svc.CancelPicker(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, form.StateClosed, got.Selection.State)
	assert.Empty(t, got.Values.DestinationPoint)

	require.NoError(t, svc.Discard(draft.ID))
	assert.True(t, domain.IsNotFound(svc.Discard(draft.ID)))
}

func TestDraftService_UnknownDraft(t *testing.T) {
	svc, _ := newTestDraftService(hyderabadResolver, transport.AmountManual)

	_, err := svc.Get("missing")
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.Patch("missing", []byte(`{}`))
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.Submit(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

// slowSaveRepo holds every insert open long enough for submits to overlap.
type slowSaveRepo struct {
	*memoryRepo
	delay time.Duration
}

func (r *slowSaveRepo) Save(ctx context.Context, rec *transport.Record) error {
	time.Sleep(r.delay)
	return r.memoryRepo.Save(ctx, rec)
}

func patchComplete(t *testing.T, svc *DraftService, id string) {
	t.Helper()
	_, err := svc.Patch(id, []byte(`{
		"date_of_transport": "2025-03-04",
		"vehicle_no": "TS09AB1234",
		"starting_point": "Shamshabad",
		"destination_point": "Warangal",
		"quantity_qtls": 120.5,
		"no_of_bags": 241,
		"distance_km": 162,
		"rate_per_km": 45,
		"amount": 7290
	}`))
	require.NoError(t, err)
}

func TestDraftService_ConcurrentSubmitStoresOnce(t *testing.T) {
	repo := &slowSaveRepo{memoryRepo: newMemoryRepo(), delay: 20 * time.Millisecond}
	transports := newTestTransportService(repo, transport.AmountManual, nil)
	svc := NewDraftService(hyderabadResolver, transports, time.Minute, zap.NewNop())

	draft := svc.Create()
	patchComplete(t, svc, draft.ID)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), draft.ID)
		}(i)
	}
	wg.Wait()

	var stored, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			stored++
		case domain.KindOf(err) == domain.KindConflict, domain.IsNotFound(err):
			rejected++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	assert.Equal(t, 1, stored)
	assert.Equal(t, 1, rejected)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Zero(t, svc.Len())
}

func TestDraftService_FailedStoreKeepsDraft(t *testing.T) {
	svc, repo := newTestDraftService(hyderabadResolver, transport.AmountManual)
	draft := svc.Create()
	patchComplete(t, svc, draft.ID)

	repo.failAll = errors.New("connection refused")
	_, err := svc.Submit(context.Background(), draft.ID)
	require.Error(t, err)
	assert.Equal(t, 1, svc.Len())

	repo.failAll = nil
	rec, err := svc.Submit(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
	assert.Zero(t, svc.Len())
}

func TestDraftService_IdleDraftsExpire(t *testing.T) {
	svc, _ := newTestDraftService(hyderabadResolver, transport.AmountManual)
	clock := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	active := svc.Create()
	idle := svc.Create()

	clock = clock.Add(6 * time.Minute)
	_, err := svc.Get(active.ID)
	require.NoError(t, err)

	clock = clock.Add(6 * time.Minute)
	assert.Equal(t, 1, svc.Sweep())
	_, err = svc.Get(idle.ID)
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.Get(active.ID)
	require.NoError(t, err, "reading a draft keeps it alive")

	clock = clock.Add(11 * time.Minute)
	_, err = svc.Patch(active.ID, []byte(`{"vehicle_no": "X"}`))
	assert.True(t, domain.IsNotFound(err), "expired on access before the next sweep")
	assert.Zero(t, svc.Len())
}

func TestDraftService_RunJanitorStopsWithContext(t *testing.T) {
	svc, _ := newTestDraftService(hyderabadResolver, transport.AmountManual)
	// now is only called with svc.mu held.
	clock := time.Now()
	svc.now = func() time.Time { return clock }
	svc.Create()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		svc.RunJanitor(ctx, 5*time.Millisecond)
		close(stopped)
	}()

	svc.mu.Lock()
	clock = clock.Add(time.Hour)
	svc.mu.Unlock()
	assert.Eventually(t, func() bool { return svc.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
