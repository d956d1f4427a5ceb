package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	geoDomain "github.com/transport-ledger/service-transport/internal/domain/geo"
)

// NominatimGeocoder reverse geocodes through an OpenStreetMap Nominatim instance.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimGeocoder creates a geocoder. Nominatim's usage policy requires a User-Agent.
func NewNominatimGeocoder(baseURL, userAgent string, client *http.Client) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
	}
}

type nominatimResponse struct {
	DisplayName string            `json:"display_name"`
	Address     *nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	Village string `json:"village"`
	Town    string `json:"town"`
	City    string `json:"city"`
	County  string `json:"county"`
	State   string `json:"state"`
}

// ReverseGeocode joins the locality parts of the address, smallest first.
func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, p geoDomain.Point) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lng, 'f', -1, 64))
	q.Set("format", "json")

	var body nominatimResponse
	err := getJSON(ctx, g.client, fmt.Sprintf("%s/reverse?%s", g.baseURL, q.Encode()),
		map[string]string{"User-Agent": g.userAgent}, &body)
	if err != nil {
		return "", err
	}
	if body.Address == nil {
		return "", geoDomain.ErrNoAddress
	}

	a := body.Address
	if joined := joinNonEmpty(a.Village, a.Town, a.City, a.County, a.State); joined != "" {
		return joined, nil
	}
	if body.DisplayName != "" {
		return body.DisplayName, nil
	}
	return "", geoDomain.ErrNoAddress
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
