package application

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/common/domain"
	"github.com/transport-ledger/service-transport/internal/common/kafka"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
	"github.com/transport-ledger/service-transport/internal/events"
)

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, kafka.CloudEvent) error { return nil }

// TransportDTO is the API representation of a transport record.
type TransportDTO struct {
	ID               int64          `json:"id"`
	DateOfTransport  transport.Date `json:"date_of_transport"`
	VehicleNo        string         `json:"vehicle_no"`
	DCGPNo           string         `json:"dc_gp_no"`
	StartingPoint    string         `json:"starting_point"`
	DestinationPoint string         `json:"destination_point"`
	QuantityQtls     float64        `json:"quantity_qtls"`
	NoOfBags         int            `json:"no_of_bags"`
	DistanceKm       float64        `json:"distance_km"`
	RatePerKm        float64        `json:"rate_per_km"`
	Amount           float64        `json:"amount"`
	OutwardLFNo      string         `json:"outward_lf_no"`
}

// TransportService implements the record store use cases.
type TransportService struct {
	repo      transport.Repository
	policy    transport.AmountPolicy
	publisher EventPublisher
	topic     string
	logger    *zap.Logger
}

// NewTransportService creates a new TransportService. A nil publisher
// disables events.
func NewTransportService(
	repo transport.Repository,
	policy transport.AmountPolicy,
	publisher EventPublisher,
	topic string,
	logger *zap.Logger,
) *TransportService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if topic == "" {
		topic = events.TopicTransportEvents
	}
	return &TransportService{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// Policy returns the amount policy enforced on writes.
func (s *TransportService) Policy() transport.AmountPolicy { return s.policy }

// List returns all records, newest first.
func (s *TransportService) List(ctx context.Context) ([]TransportDTO, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list transport records", zap.Error(err))
		return nil, err
	}
	dtos := make([]TransportDTO, len(records))
	for i, r := range records {
		dtos[i] = toTransportDTO(r)
	}
	return dtos, nil
}

// Get returns a single record.
func (s *TransportService) Get(ctx context.Context, id int64) (*TransportDTO, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toTransportDTO(rec)
	return &dto, nil
}

// Create validates in and persists it as a new record.
func (s *TransportService) Create(ctx context.Context, in transport.Input) (*TransportDTO, error) {
	fields, err := in.Fields()
	if err != nil {
		return nil, err
	}
	rec, err := transport.NewRecord(s.policy.Apply(fields))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		s.logger.Error("failed to save transport record", zap.Error(err))
		return nil, err
	}

	s.logger.Info("transport record created",
		zap.Int64("id", rec.ID()),
		zap.String("vehicle_no", rec.Fields().VehicleNo),
	)
	s.publishRecord(ctx, events.RecordCreated, rec)

	dto := toTransportDTO(rec)
	return &dto, nil
}

// Update replaces every field of record id with in.
func (s *TransportService) Update(ctx context.Context, id int64, in transport.Input) (*TransportDTO, error) {
	fields, err := in.Fields()
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.Replace(s.policy.Apply(fields)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		if !domain.IsNotFound(err) {
			s.logger.Error("failed to update transport record", zap.Int64("id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("transport record updated", zap.Int64("id", id))
	s.publishRecord(ctx, events.RecordUpdated, rec)

	dto := toTransportDTO(rec)
	return &dto, nil
}

// Delete removes record id.
func (s *TransportService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !domain.IsNotFound(err) {
			s.logger.Error("failed to delete transport record", zap.Int64("id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("transport record deleted", zap.Int64("id", id))
	s.publishEvent(ctx, events.RecordDeleted, id, events.RecordDeletedEvent{
		RecordID:   id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// --- Helpers ---

func toTransportDTO(r *transport.Record) TransportDTO {
	f := r.Fields()
	return TransportDTO{
		ID:               r.ID(),
		DateOfTransport:  f.DateOfTransport,
		VehicleNo:        f.VehicleNo,
		DCGPNo:           f.DCGPNo,
		StartingPoint:    f.StartingPoint,
		DestinationPoint: f.DestinationPoint,
		QuantityQtls:     f.QuantityQtls,
		NoOfBags:         f.NoOfBags,
		DistanceKm:       f.DistanceKm,
		RatePerKm:        f.RatePerKm,
		Amount:           f.Amount,
		OutwardLFNo:      f.OutwardLFNo,
	}
}

func (s *TransportService) publishRecord(ctx context.Context, eventType string, r *transport.Record) {
	f := r.Fields()
	s.publishEvent(ctx, eventType, r.ID(), events.RecordEvent{
		RecordID:         r.ID(),
		DateOfTransport:  f.DateOfTransport.String(),
		VehicleNo:        f.VehicleNo,
		DCGPNo:           f.DCGPNo,
		StartingPoint:    f.StartingPoint,
		DestinationPoint: f.DestinationPoint,
		QuantityQtls:     f.QuantityQtls,
		NoOfBags:         f.NoOfBags,
		DistanceKm:       f.DistanceKm,
		RatePerKm:        f.RatePerKm,
		Amount:           f.Amount,
		OutwardLFNo:      f.OutwardLFNo,
		OccurredAt:       time.Now().UTC(),
	})
}

func (s *TransportService) publishEvent(ctx context.Context, eventType string, id int64, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = strconv.FormatInt(id, 10)

	if err := s.publisher.PublishEvent(ctx, s.topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", s.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
