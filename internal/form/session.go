package form

import (
	"fmt"

	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/domain/transport"
)

// Field is a form field that can be set from the map picker.
type Field string

const (
	StartingPoint    Field = transport.FieldStartingPoint
	DestinationPoint Field = transport.FieldDestinationPoint
)

// ParseField validates a picker target name.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case StartingPoint, DestinationPoint:
		return f, nil
	default:
		return "", fmt.Errorf("field %q cannot be picked from the map", s)
	}
}

// State is the picker state.
type State string

const (
	StateClosed    State = "closed"
	StateOpen      State = "open"
	StateResolving State = "resolving"
)

// Ticket identifies one point selection awaiting its address.
type Ticket struct {
	Field      Field
	Point      geo.Point
	generation uint64
}

// Session is the point selection state machine:
// Closed -> Open(field) -> Resolving(field, point) -> Closed.
// Every transition bumps a generation counter so results of superseded
// selections can be recognised and dropped. Session is not safe for
// concurrent use; Form serialises access to it.
type Session struct {
	state      State
	target     Field
	candidate  *geo.Point
	generation uint64
}

// NewSession returns a closed session.
func NewSession() *Session {
	return &Session{state: StateClosed}
}

// OpenFor targets field, replacing any open or resolving selection.
func (s *Session) OpenFor(field Field) {
	s.generation++
	s.state = StateOpen
	s.target = field
	s.candidate = nil
}

// Click records the chosen point and moves to Resolving. Clicking again
// while resolving supersedes the earlier point.
func (s *Session) Click(p geo.Point) (Ticket, error) {
	if s.state == StateClosed {
		return Ticket{}, fmt.Errorf("no point selection is open")
	}
	s.generation++
	s.state = StateResolving
	point := p
	s.candidate = &point
	return Ticket{Field: s.target, Point: p, generation: s.generation}, nil
}

// Complete closes the session if t is the latest selection. It reports
// false for stale tickets, whose result must be discarded.
func (s *Session) Complete(t Ticket) bool {
	if s.state != StateResolving || t.generation != s.generation {
		return false
	}
	s.generation++
	s.state = StateClosed
	s.target = ""
	s.candidate = nil
	return true
}

// Cancel closes the session without touching any field.
func (s *Session) Cancel() {
	s.generation++
	s.state = StateClosed
	s.target = ""
	s.candidate = nil
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Target returns the field being picked, empty when closed.
func (s *Session) Target() Field { return s.target }

// Candidate returns the clicked point while resolving.
func (s *Session) Candidate() *geo.Point {
	if s.candidate == nil {
		return nil
	}
	p := *s.candidate
	return &p
}

// IsOpen reports whether a selection is in progress.
func (s *Session) IsOpen() bool { return s.state != StateClosed }
