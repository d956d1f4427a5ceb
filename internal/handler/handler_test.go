package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/application"
	"github.com/transport-ledger/service-transport/internal/common/domain"
	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[int64]transport.Fields
	nextID  int64
	err     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]transport.Fields)}
}

func (r *memoryRepo) List(context.Context) ([]*transport.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
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
	if r.err != nil {
		return nil, r.err
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
	if r.err != nil {
		return r.err
	}
	r.nextID++
	r.records[r.nextID] = rec.Fields()
	rec.AssignID(r.nextID)
	return nil
}

func (r *memoryRepo) Update(_ context.Context, rec *transport.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID()]; !ok {
		return domain.NewNotFoundError("TransportRecord", rec.IDString())
	}
	r.records[rec.ID()] = rec.Fields()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return domain.NewNotFoundError("TransportRecord", strconv.FormatInt(id, 10))
	}
	delete(r.records, id)
	return nil
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, p geo.Point) geo.AddressResult {
	if p.Lat == 0 && p.Lng == 0 {
		return geo.AddressResult{Address: geo.UnknownLocation, Degraded: true}
	}
	return geo.AddressResult{Address: "Warangal, Telangana"}
}

func (stubResolver) RouteDistance(context.Context, geo.Point, geo.Point) geo.RouteDistance {
	return geo.RouteDistance{Km: 162, Resolved: true}
}

type testServer struct {
	router *gin.Engine
	repo   *memoryRepo
}

func newTestServer(policy transport.AmountPolicy) *testServer {
	gin.SetMode(gin.TestMode)
	repo := newMemoryRepo()
	log := zap.NewNop()

	transports := application.NewTransportService(repo, policy, nil, "", log)
	drafts := application.NewDraftService(stubResolver{}, transports, application.DefaultDraftTTL, log)
	geos := application.NewGeoService(stubResolver{})

	router := gin.New()
	NewTransportHandler(transports).RegisterRoutes(&router.RouterGroup)
	NewDraftHandler(drafts).RegisterRoutes(&router.RouterGroup)
	NewGeoHandler(geos).RegisterRoutes(&router.RouterGroup)
	return &testServer{router: router, repo: repo}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

const fullRecord = `{
	"date_of_transport": "2025-03-04",
	"vehicle_no": "TS09AB1234",
	"dc_gp_no": "DC-77",
	"starting_point": "Shamshabad, Rangareddy, Telangana",
	"destination_point": "Warangal, Telangana",
	"quantity_qtls": 120.5,
	"no_of_bags": 241,
	"distance_km": 162,
	"rate_per_km": 45,
	"amount": 7290,
	"outward_lf_no": "LF-9"
}`
