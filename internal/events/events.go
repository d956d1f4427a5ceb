package events

import (
	"time"
)

// TopicTransportEvents is the default topic for record events.
const TopicTransportEvents = "transport.events"

// Source is the CloudEvent source of every event this service emits.
const Source = "service-transport"

// Record event types.
const (
	RecordCreated = "transport.record.created"
	RecordUpdated = "transport.record.updated"
	RecordDeleted = "transport.record.deleted"
)

// RecordEvent is the payload of created and updated events. It carries the
// whole record snapshot.
type RecordEvent struct {
	RecordID         int64     `json:"record_id"`
	DateOfTransport  string    `json:"date_of_transport"`
	VehicleNo        string    `json:"vehicle_no"`
	DCGPNo           string    `json:"dc_gp_no,omitempty"`
	StartingPoint    string    `json:"starting_point"`
	DestinationPoint string    `json:"destination_point"`
	QuantityQtls     float64   `json:"quantity_qtls"`
	NoOfBags         int       `json:"no_of_bags"`
	DistanceKm       float64   `json:"distance_km"`
	RatePerKm        float64   `json:"rate_per_km"`
	Amount           float64   `json:"amount"`
	OutwardLFNo      string    `json:"outward_lf_no,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// RecordDeletedEvent is the payload of a deleted event.
type RecordDeletedEvent struct {
	RecordID   int64     `json:"record_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
