package transport

import (
	"strconv"
	"strings"

	"github.com/transport-ledger/service-transport/internal/common/domain"
)

// Field names as they appear on the wire and in the form.
const (
	FieldDateOfTransport  = "date_of_transport"
	FieldVehicleNo        = "vehicle_no"
	FieldDCGPNo           = "dc_gp_no"
	FieldStartingPoint    = "starting_point"
	FieldDestinationPoint = "destination_point"
	FieldQuantityQtls     = "quantity_qtls"
	FieldNoOfBags         = "no_of_bags"
	FieldDistanceKm       = "distance_km"
	FieldRatePerKm        = "rate_per_km"
	FieldAmount           = "amount"
	FieldOutwardLFNo      = "outward_lf_no"
)

// RequiredFields lists the fields that must be present on create and update.
var RequiredFields = []string{
	FieldDateOfTransport,
	FieldVehicleNo,
	FieldStartingPoint,
	FieldDestinationPoint,
	FieldQuantityQtls,
	FieldNoOfBags,
	FieldDistanceKm,
	FieldRatePerKm,
	FieldAmount,
}

// Fields is the full, user-editable content of a transport record.
type Fields struct {
	DateOfTransport  Date
	VehicleNo        string
	DCGPNo           string
	StartingPoint    string
	DestinationPoint string
	QuantityQtls     float64
	NoOfBags         int
	DistanceKm       float64
	RatePerKm        float64
	Amount           float64
	OutwardLFNo      string
}

// Validate checks required strings are non-blank, the date is set and
// numeric fields are non-negative. All offending fields are reported at once.
func (f Fields) Validate() error {
	var missing, invalid []string

	if f.DateOfTransport.IsZero() {
		missing = append(missing, FieldDateOfTransport)
	}
	for name, v := range map[string]string{
		FieldVehicleNo:        f.VehicleNo,
		FieldStartingPoint:    f.StartingPoint,
		FieldDestinationPoint: f.DestinationPoint,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}

	for name, v := range map[string]float64{
		FieldQuantityQtls: f.QuantityQtls,
		FieldDistanceKm:   f.DistanceKm,
		FieldRatePerKm:    f.RatePerKm,
		FieldAmount:       f.Amount,
		FieldNoOfBags:     float64(f.NoOfBags),
	} {
		if v < 0 {
			invalid = append(invalid, name)
		}
	}

	if len(missing) > 0 {
		return domain.NewFieldValidationError("missing required fields", missing...)
	}
	if len(invalid) > 0 {
		return domain.NewFieldValidationError("fields must be non-negative", invalid...)
	}
	return nil
}

// Record is the aggregate root for one logged dispatch trip.
type Record struct {
	id     int64
	fields Fields
}

// NewRecord validates fields and returns an unsaved record (ID 0).
func NewRecord(fields Fields) (*Record, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &Record{fields: normalize(fields)}, nil
}

// ReconstructRecord rebuilds a Record from persistence data (no validation).
func ReconstructRecord(id int64, fields Fields) *Record {
	return &Record{id: id, fields: fields}
}

// ID returns the server-assigned identifier, 0 before the first save.
func (r *Record) ID() int64 { return r.id }

// IDString returns the identifier in decimal form.
func (r *Record) IDString() string { return strconv.FormatInt(r.id, 10) }

// Fields returns a copy of the record content.
func (r *Record) Fields() Fields { return r.fields }

// AssignID sets the identifier once, after the first insert.
func (r *Record) AssignID(id int64) {
	if r.id == 0 {
		r.id = id
	}
}

// Replace swaps the whole content of the record. The id is untouched.
func (r *Record) Replace(fields Fields) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	r.fields = normalize(fields)
	return nil
}

func normalize(f Fields) Fields {
	f.VehicleNo = strings.TrimSpace(f.VehicleNo)
	f.DCGPNo = strings.TrimSpace(f.DCGPNo)
	f.StartingPoint = strings.TrimSpace(f.StartingPoint)
	f.DestinationPoint = strings.TrimSpace(f.DestinationPoint)
	f.OutwardLFNo = strings.TrimSpace(f.OutwardLFNo)
	return f
}
