package form

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

// Resolver is the geo lookup surface a form needs.
type Resolver interface {
	Resolve(ctx context.Context, p geo.Point) geo.AddressResult
	DistanceResolver
}

// Selection describes the picker for API consumers.
type Selection struct {
	State     State      `json:"state"`
	Target    Field      `json:"target_field,omitempty"`
	Candidate *geo.Point `json:"candidate_point,omitempty"`
}

// Snapshot is a consistent copy of the form state.
type Snapshot struct {
	Values       transport.Input        `json:"fields"`
	Selection    Selection              `json:"selection"`
	Coordinates  map[Field]geo.Point    `json:"coordinates"`
	Distance     *geo.RouteDistance     `json:"distance,omitempty"`
	Degraded     map[Field]bool         `json:"degraded_fields,omitempty"`
	AmountPolicy transport.AmountPolicy `json:"amount_policy"`
}

// Form holds one in-progress transport record: field values, the
// coordinate behind each map-picked point, and the point selection session.
// Address and distance lookups run asynchronously; a result that arrives
// after its selection was cancelled or superseded is discarded.
type Form struct {
	mu          sync.Mutex
	values      transport.Input
	coords      map[Field]geo.Point
	degraded    map[Field]bool
	session     *Session
	distance    *geo.RouteDistance
	distanceGen uint64

	resolver Resolver
	engine   *Engine
	logger   *zap.Logger
	inflight sync.WaitGroup
}

// New creates an empty form.
func New(resolver Resolver, policy transport.AmountPolicy, logger *zap.Logger) *Form {
	return &Form{
		coords:   make(map[Field]geo.Point),
		degraded: make(map[Field]bool),
		session:  NewSession(),
		resolver: resolver,
		engine:   NewEngine(resolver, policy),
		logger:   logger,
	}
}

// OpenPicker starts a point selection for field.
func (f *Form) OpenPicker(field Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session.OpenFor(field)
}

// CancelPicker closes the point selection without changing any field.
func (f *Form) CancelPicker() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session.Cancel()
}

// SelectPoint feeds a map click or search result into the open selection
// and resolves its address in the background. The returned channel is
// closed once the address, and the distance if both endpoints are known,
// have been applied or discarded. ctx cancellation does not abort the lookup.
func (f *Form) SelectPoint(ctx context.Context, p geo.Point) (<-chan struct{}, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	ticket, err := f.session.Click(p)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	bg := context.WithoutCancel(ctx)
	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		defer close(done)
		f.resolve(bg, ticket)
	}()
	return done, nil
}

func (f *Form) resolve(ctx context.Context, ticket Ticket) {
	result := f.resolver.Resolve(ctx, ticket.Point)

	f.mu.Lock()
	if !f.session.Complete(ticket) {
		f.mu.Unlock()
		f.logger.Debug("discarding stale address resolution", zap.String("field", string(ticket.Field)))
		return
	}
	f.setPointLocked(ticket.Field, result.Address)
	f.coords[ticket.Field] = ticket.Point
	f.degraded[ticket.Field] = result.Degraded

	start, hasStart := f.coords[StartingPoint]
	end, hasEnd := f.coords[DestinationPoint]
	if !hasStart || !hasEnd {
		f.mu.Unlock()
		return
	}
	f.distanceGen++
	gen := f.distanceGen
	f.mu.Unlock()

	distance := f.engine.RecomputeDistance(ctx, start, end)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.distanceGen {
		f.logger.Debug("discarding stale distance", zap.Int("distance_km", distance.Km))
		return
	}
	km := float64(distance.Km)
	f.values.DistanceKm = &km
	f.distance = &distance
	f.recomputeAmountLocked()
}

// Apply merges a partial JSON object of field values into the form.
// Changing the text of a point field drops its picked coordinate, so distance is no
// longer recomputed for it. Any change to quantity, rate or distance
// recomputes the amount under a computing policy.
func (f *Form) Apply(patch []byte) error {
	keys, err := transport.Keys(patch)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.values
	next := f.values.Clone()
	if err := transport.DecodeInput(patch, &next); err != nil {
		return err
	}
	f.values = next

	for _, field := range []Field{StartingPoint, DestinationPoint} {
		if keys[string(field)] && pointValue(next, field) != pointValue(prev, field) {
			if _, picked := f.coords[field]; picked {
				delete(f.coords, field)
				delete(f.degraded, field)
				f.distanceGen++
				f.distance = nil
			}
		}
	}
	if keys[transport.FieldDistanceKm] {
		f.distanceGen++
		f.distance = nil
	}
	if keys[transport.FieldQuantityQtls] || keys[transport.FieldRatePerKm] || keys[transport.FieldDistanceKm] {
		f.recomputeAmountLocked()
	}
	return nil
}

// Values returns a copy of the field values.
func (f *Form) Values() transport.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.Clone()
}

// Snapshot returns a consistent copy of the whole form state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	coords := make(map[Field]geo.Point, len(f.coords))
	for k, v := range f.coords {
		coords[k] = v
	}
	var degraded map[Field]bool
	for k, v := range f.degraded {
		if v {
			if degraded == nil {
				degraded = make(map[Field]bool)
			}
			degraded[k] = true
		}
	}
	var distance *geo.RouteDistance
	if f.distance != nil {
		d := *f.distance
		distance = &d
	}

	return Snapshot{
		Values: f.values.Clone(),
		Selection: Selection{
			State:     f.session.State(),
			Target:    f.session.Target(),
			Candidate: f.session.Candidate(),
		},
		Coordinates:  coords,
		Distance:     distance,
		Degraded:     degraded,
		AmountPolicy: f.engine.Policy(),
	}
}

// Wait blocks until every background lookup has finished.
func (f *Form) Wait() {
	f.inflight.Wait()
}

func (f *Form) setPointLocked(field Field, address string) {
	switch field {
	case StartingPoint:
		f.values.StartingPoint = address
	case DestinationPoint:
		f.values.DestinationPoint = address
	}
}

func pointValue(in transport.Input, field Field) string {
	switch field {
	case StartingPoint:
		return in.StartingPoint
	case DestinationPoint:
		return in.DestinationPoint
	}
	return ""
}

func (f *Form) recomputeAmountLocked() {
	v := &f.values
	v.Amount = f.engine.RecomputeAmount(v.QuantityQtls, v.RatePerKm, v.DistanceKm, v.Amount)
}
