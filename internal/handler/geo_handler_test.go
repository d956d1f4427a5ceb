package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

func TestGeoHandler_Reverse(t *testing.T) {
	s := newTestServer(transport.AmountManual)

	w := s.do(http.MethodGet, "/geo/reverse?lat=17.97&lng=79.59", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"address":"Warangal, Telangana","degraded":false}`, w.Body.String())

	w = s.do(http.MethodGet, "/geo/reverse?lat=0&lng=0", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"address":"Unknown Location","degraded":true}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/geo/reverse?lat=abc&lng=1", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/geo/reverse?lat=91&lng=1", "").Code)
}

func TestGeoHandler_Distance(t *testing.T) {
	s := newTestServer(transport.AmountManual)

	w := s.do(http.MethodGet, "/geo/distance?start_lat=17.24&start_lng=78.43&end_lat=17.97&end_lng=79.59", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"distance_km":162,"resolved":true}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/geo/distance?start_lat=17.24", "").Code)
}
