package geo

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	geoDomain "github.com/transport-ledger/service-transport/internal/domain/geo"
)

// OSRMRouter queries an OSRM route service for driving distances.
type OSRMRouter struct {
	baseURL string
	client  *http.Client
}

// NewOSRMRouter creates a router against the given OSRM base URL.
func NewOSRMRouter(baseURL string, client *http.Client) *OSRMRouter {
	return &OSRMRouter{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// DrivingDistanceMeters returns the distance of the first route.
func (r *OSRMRouter) DrivingDistanceMeters(ctx context.Context, start, end geoDomain.Point) (float64, error) {
	endpoint := fmt.Sprintf("%s/route/v1/driving/%s;%s?overview=false", r.baseURL, start.LngLat(), end.LngLat())

	var body osrmResponse
	if err := getJSON(ctx, r.client, endpoint, nil, &body); err != nil {
		return 0, err
	}
	if body.Code != "" && body.Code != "Ok" {
		return 0, fmt.Errorf("%w: osrm code %s", geoDomain.ErrNoRoute, body.Code)
	}
	if len(body.Routes) == 0 || body.Routes[0].Distance <= 0 {
		return 0, geoDomain.ErrNoRoute
	}
	return body.Routes[0].Distance, nil
}
