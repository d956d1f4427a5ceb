package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/transport-ledger/service-transport/internal/common/domain"
	"github.com/transport-ledger/service-transport/internal/common/kafka"
	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[int64]transport.Fields
	nextID  int64
	failAll error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]transport.Fields)}
}

func (r *memoryRepo) List(context.Context) ([]*transport.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	ids := make([]int64, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]*transport.Record, len(ids))
	for i, id := range ids {
		out[i] = transport.ReconstructRecord(id, r.records[id])
	}
	return out, nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*transport.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	f, ok := r.records[id]
	if !ok {
		return nil, domain.NewNotFoundError("TransportRecord", strconv.FormatInt(id, 10))
	}
	return transport.ReconstructRecord(id, f), nil
}

func (r *memoryRepo) Save(_ context.Context, rec *transport.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.nextID++
	r.records[r.nextID] = rec.Fields()
	rec.AssignID(r.nextID)
	return nil
}

func (r *memoryRepo) Update(_ context.Context, rec *transport.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.records[rec.ID()]; !ok {
		return domain.NewNotFoundError("TransportRecord", rec.IDString())
	}
	r.records[rec.ID()] = rec.Fields()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.records[id]; !ok {
		return domain.NewNotFoundError("TransportRecord", strconv.FormatInt(id, 10))
	}
	delete(r.records, id)
	return nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

type fixedResolver struct {
	address  geo.AddressResult
	distance geo.RouteDistance
	delay    time.Duration
}

func (r fixedResolver) Resolve(ctx context.Context, _ geo.Point) geo.AddressResult {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return r.address
}

func (r fixedResolver) RouteDistance(context.Context, geo.Point, geo.Point) geo.RouteDistance {
	return r.distance
}

func validInput() transport.Input {
	date := transport.NewDate(2025, time.March, 4)
	qty, bags, dist, rate, amount := 120.5, 241, 162.0, 45.0, 7290.0
	return transport.Input{
		DateOfTransport:  &date,
		VehicleNo:        "TS09AB1234",
		DCGPNo:           "DC-77",
		StartingPoint:    "Shamshabad, Rangareddy, Telangana",
		DestinationPoint: "Warangal, Telangana",
		QuantityQtls:     &qty,
		NoOfBags:         &bags,
		DistanceKm:       &dist,
		RatePerKm:        &rate,
		Amount:           &amount,
		OutwardLFNo:      "LF-9",
	}
}
