package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/transport-ledger/service-transport/internal/common/domain"
)

// Input is record content as submitted by a client. Pointer fields
// distinguish an absent value from an explicit zero.
type Input struct {
	DateOfTransport  *Date    `json:"date_of_transport"`
	VehicleNo        string   `json:"vehicle_no"`
	DCGPNo           string   `json:"dc_gp_no"`
	StartingPoint    string   `json:"starting_point"`
	DestinationPoint string   `json:"destination_point"`
	QuantityQtls     *float64 `json:"quantity_qtls"`
	NoOfBags         *int     `json:"no_of_bags"`
	DistanceKm       *float64 `json:"distance_km"`
	RatePerKm        *float64 `json:"rate_per_km"`
	Amount           *float64 `json:"amount"`
	OutwardLFNo      string   `json:"outward_lf_no"`
}

// Fields checks every required field is present and returns validated content.
func (in Input) Fields() (Fields, error) {
	var missing []string
	if in.DateOfTransport == nil || in.DateOfTransport.IsZero() {
		missing = append(missing, FieldDateOfTransport)
	}
	for name, v := range map[string]string{
		FieldVehicleNo:        in.VehicleNo,
		FieldStartingPoint:    in.StartingPoint,
		FieldDestinationPoint: in.DestinationPoint,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	for name, present := range map[string]bool{
		FieldQuantityQtls: in.QuantityQtls != nil,
		FieldNoOfBags:     in.NoOfBags != nil,
		FieldDistanceKm:   in.DistanceKm != nil,
		FieldRatePerKm:    in.RatePerKm != nil,
		FieldAmount:       in.Amount != nil,
	} {
		if !present {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Fields{}, domain.NewFieldValidationError("missing required fields", missing...)
	}

	f := Fields{
		DateOfTransport:  *in.DateOfTransport,
		VehicleNo:        in.VehicleNo,
		DCGPNo:           in.DCGPNo,
		StartingPoint:    in.StartingPoint,
		DestinationPoint: in.DestinationPoint,
		QuantityQtls:     *in.QuantityQtls,
		NoOfBags:         *in.NoOfBags,
		DistanceKm:       *in.DistanceKm,
		RatePerKm:        *in.RatePerKm,
		Amount:           *in.Amount,
		OutwardLFNo:      in.OutwardLFNo,
	}
	if err := f.Validate(); err != nil {
		return Fields{}, err
	}
	return normalize(f), nil
}

// Clone returns a deep copy, so decoding into it never writes through to in.
func (in Input) Clone() Input {
	out := in
	if in.DateOfTransport != nil {
		d := *in.DateOfTransport
		out.DateOfTransport = &d
	}
	out.QuantityQtls = cloneFloat(in.QuantityQtls)
	out.NoOfBags = cloneInt(in.NoOfBags)
	out.DistanceKm = cloneFloat(in.DistanceKm)
	out.RatePerKm = cloneFloat(in.RatePerKm)
	out.Amount = cloneFloat(in.Amount)
	return out
}

// InputFromFields converts stored content back into the client shape.
func InputFromFields(f Fields) Input {
	date := f.DateOfTransport
	return Input{
		DateOfTransport:  &date,
		VehicleNo:        f.VehicleNo,
		DCGPNo:           f.DCGPNo,
		StartingPoint:    f.StartingPoint,
		DestinationPoint: f.DestinationPoint,
		QuantityQtls:     float64Ptr(f.QuantityQtls),
		NoOfBags:         intPtr(f.NoOfBags),
		DistanceKm:       float64Ptr(f.DistanceKm),
		RatePerKm:        float64Ptr(f.RatePerKm),
		Amount:           float64Ptr(f.Amount),
		OutwardLFNo:      f.OutwardLFNo,
	}
}

// DecodeInput unmarshals a JSON body onto into. Keys absent from raw leave
// the existing values alone. Type mismatches become validation errors
// naming the field.
func DecodeInput(raw []byte, into *Input) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.NewValidationError("request body is required")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		var typeErr *json.UnmarshalTypeError
		var dateErr *DateError
		var syntaxErr *json.SyntaxError
		switch {
		case errors.As(err, &dateErr):
			return domain.NewFieldValidationError("invalid date, expected YYYY-MM-DD", FieldDateOfTransport)
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return domain.NewFieldValidationError("invalid value type", typeErr.Field)
		case errors.As(err, &syntaxErr):
			return domain.NewValidationError("malformed JSON body")
		default:
			return domain.NewValidationError("invalid request body")
		}
	}
	return nil
}

// Keys returns the top-level keys present in a JSON object body.
func Keys(raw []byte) (map[string]bool, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, domain.NewValidationError("malformed JSON body")
	}
	keys := make(map[string]bool, len(m))
	for k := range m {
		keys[k] = true
	}
	return keys, nil
}

func float64Ptr(v float64) *float64 { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return float64Ptr(*p)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}

func intPtr(v int) *int { return &v }
