package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/transport-ledger/service-transport/internal/common/domain"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

// TransportModel is the GORM model for the transport_records table.
type TransportModel struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"`
	DateOfTransport  time.Time `gorm:"type:date;not null"`
	VehicleNo        string    `gorm:"type:varchar(50);not null"`
	DCGPNo           string    `gorm:"column:dc_gp_no;type:varchar(100)"`
	StartingPoint    string    `gorm:"type:text;not null"`
	DestinationPoint string    `gorm:"type:text;not null"`
	QuantityQtls     float64   `gorm:"type:numeric;not null"`
	NoOfBags         int       `gorm:"not null"`
	DistanceKm       float64   `gorm:"type:numeric;not null"`
	RatePerKm        float64   `gorm:"type:numeric;not null"`
	Amount           float64   `gorm:"type:numeric;not null"`
	OutwardLFNo      string    `gorm:"column:outward_lf_no;type:varchar(100)"`
}

// TableName returns the table name for the GORM model.
func (TransportModel) TableName() string { return "transport_records" }

// GormTransportRepository implements transport.Repository using GORM.
type GormTransportRepository struct {
	db *gorm.DB
}

// NewGormTransportRepository creates a new GORM-backed transport repository.
func NewGormTransportRepository(db *gorm.DB) *GormTransportRepository {
	return &GormTransportRepository{db: db}
}

// List returns every transport record, newest first.
func (r *GormTransportRepository) List(ctx context.Context) ([]*transport.Record, error) {
	var models []TransportModel
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&models).Error; err != nil {
		return nil, domain.NewInfrastructureError("list transport records", err)
	}
	records := make([]*transport.Record, len(models))
	for i := range models {
		records[i] = toTransportDomain(&models[i])
	}
	return records, nil
}

// FindByID retrieves a transport record by its id.
func (r *GormTransportRepository) FindByID(ctx context.Context, id int64) (*transport.Record, error) {
	var model TransportModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("TransportRecord", strconv.FormatInt(id, 10))
		}
		return nil, domain.NewInfrastructureError("find transport record", err)
	}
	return toTransportDomain(&model), nil
}

// Save inserts a new transport record and assigns the generated id to it.
func (r *GormTransportRepository) Save(ctx context.Context, record *transport.Record) error {
	model := toTransportModel(record)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.NewInfrastructureError("insert transport record", err)
	}
	record.AssignID(model.ID)
	return nil
}

// Update overwrites every column, including zero values, of the row with
// the record's id.
func (r *GormTransportRepository) Update(ctx context.Context, record *transport.Record) error {
	model := toTransportModel(record)
	result := r.db.WithContext(ctx).
		Model(&TransportModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id").
		Updates(model)
	if result.Error != nil {
		return domain.NewInfrastructureError("update transport record", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("TransportRecord", record.IDString())
	}
	return nil
}

// Delete removes the transport record with the given id.
func (r *GormTransportRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TransportModel{})
	if result.Error != nil {
		return domain.NewInfrastructureError("delete transport record", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("TransportRecord", strconv.FormatInt(id, 10))
	}
	return nil
}

// --- Conversions ---

func toTransportModel(r *transport.Record) *TransportModel {
	f := r.Fields()
	return &TransportModel{
		ID:               r.ID(),
		DateOfTransport:  f.DateOfTransport.Time(),
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

func toTransportDomain(m *TransportModel) *transport.Record {
	return transport.ReconstructRecord(m.ID, transport.Fields{
		DateOfTransport:  transport.DateOf(m.DateOfTransport),
		VehicleNo:        m.VehicleNo,
		DCGPNo:           m.DCGPNo,
		StartingPoint:    m.StartingPoint,
		DestinationPoint: m.DestinationPoint,
		QuantityQtls:     m.QuantityQtls,
		NoOfBags:         m.NoOfBags,
		DistanceKm:       m.DistanceKm,
		RatePerKm:        m.RatePerKm,
		Amount:           m.Amount,
		OutwardLFNo:      m.OutwardLFNo,
	})
}
