package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	geoDomain "github.com/transport-ledger/service-transport/internal/domain/geo"
)

// ErrMissingAPIKey is returned when the MapMyIndia provider has no key configured.
var ErrMissingAPIKey = errors.New("mapmyindia api key is not configured")

// MapMyIndiaClient implements both ReverseGeocoder and Router on the
// MapMyIndia advanced maps API. The key is part of the URL path.
type MapMyIndiaClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewMapMyIndiaClient creates a client; apiKey must come from configuration.
func NewMapMyIndiaClient(baseURL, apiKey string, client *http.Client) *MapMyIndiaClient {
	return &MapMyIndiaClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

type mapMyIndiaGeocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

type mapMyIndiaRouteResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"`
		Summary  *struct {
			Distance float64 `json:"distance"`
		} `json:"summary"`
	} `json:"routes"`
}

// ReverseGeocode returns the formatted address of the first result.
func (m *MapMyIndiaClient) ReverseGeocode(ctx context.Context, p geoDomain.Point) (string, error) {
	if m.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(p.Lng, 'f', -1, 64))

	var body mapMyIndiaGeocodeResponse
	endpoint := fmt.Sprintf("%s/%s/rev_geocode?%s", m.baseURL, url.PathEscape(m.apiKey), q.Encode())
	if err := getJSON(ctx, m.client, endpoint, nil, &body); err != nil {
		return "", err
	}
	if len(body.Results) == 0 || strings.TrimSpace(body.Results[0].FormattedAddress) == "" {
		return "", geoDomain.ErrNoAddress
	}
	return strings.TrimSpace(body.Results[0].FormattedAddress), nil
}

// DrivingDistanceMeters returns the first route's distance, preferring the summary block.
func (m *MapMyIndiaClient) DrivingDistanceMeters(ctx context.Context, start, end geoDomain.Point) (float64, error) {
	if m.apiKey == "" {
		return 0, ErrMissingAPIKey
	}
	endpoint := fmt.Sprintf("%s/%s/route_adv/driving/%s;%s",
		m.baseURL, url.PathEscape(m.apiKey), start.LngLat(), end.LngLat())

	var body mapMyIndiaRouteResponse
	if err := getJSON(ctx, m.client, endpoint, nil, &body); err != nil {
		return 0, err
	}
	if len(body.Routes) == 0 {
		return 0, geoDomain.ErrNoRoute
	}
	meters := body.Routes[0].Distance
	if s := body.Routes[0].Summary; s != nil && s.Distance > 0 {
		meters = s.Distance
	}
	if meters <= 0 {
		return 0, geoDomain.ErrNoRoute
	}
	return meters, nil
}
