package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transport-ledger/service-transport/internal/common/domain"
	"github.com/transport-ledger/service-transport/internal/domain/geo"
	"github.com/transport-ledger/service-transport/internal/form"
)

// DraftDTO is a form in progress together with its id.
type DraftDTO struct {
	ID string `json:"id"`
	form.Snapshot
}

// DefaultDraftTTL is how long an untouched draft is kept.
const DefaultDraftTTL = 30 * time.Minute

type draftEntry struct {
	form       *form.Form
	touched    time.Time
	submitting bool
}

// DraftService holds in-progress forms in memory. Drafts do not survive a
// restart and are dropped once left untouched for longer than the TTL.
type DraftService struct {
	mu         sync.Mutex
	drafts     map[string]*draftEntry
	ttl        time.Duration
	now        func() time.Time
	resolver   form.Resolver
	transports *TransportService
	logger     *zap.Logger
}

// NewDraftService creates a new DraftService. Submitted drafts are stored
// through transports, whose amount policy the forms share. A non-positive
// ttl falls back to DefaultDraftTTL.
func NewDraftService(resolver form.Resolver, transports *TransportService, ttl time.Duration, logger *zap.Logger) *DraftService {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftService{
		drafts:     make(map[string]*draftEntry),
		ttl:        ttl,
		now:        time.Now,
		resolver:   resolver,
		transports: transports,
		logger:     logger,
	}
}

// Create starts an empty draft.
func (s *DraftService) Create() DraftDTO {
	id := uuid.NewString()
	f := form.New(s.resolver, s.transports.Policy(), s.logger.With(zap.String("draft_id", id)))

	s.mu.Lock()
	s.drafts[id] = &draftEntry{form: f, touched: s.now()}
	s.mu.Unlock()

	s.logger.Debug("draft created", zap.String("draft_id", id))
	return DraftDTO{ID: id, Snapshot: f.Snapshot()}
}

// Get returns the current state of draft id.
func (s *DraftService) Get(id string) (*DraftDTO, error) {
	f, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return snapshotOf(id, f), nil
}

// Patch merges manually entered values into draft id.
func (s *DraftService) Patch(id string, patch []byte) (*DraftDTO, error) {
	f, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := f.Apply(patch); err != nil {
		return nil, err
	}
	return snapshotOf(id, f), nil
}

// OpenPicker starts a point selection on draft id.
func (s *DraftService) OpenPicker(id, field string) (*DraftDTO, error) {
	f, err := s.find(id)
	if err != nil {
		return nil, err
	}
	target, err := form.ParseField(field)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	f.OpenPicker(target)
	return snapshotOf(id, f), nil
}

// SelectPoint feeds a picked coordinate into draft id and waits until its
// address, and the distance when both ends are known, have been applied.
// If ctx ends first the state is returned while still resolving.
func (s *DraftService) SelectPoint(ctx context.Context, id string, p geo.Point) (*DraftDTO, error) {
	f, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	done, err := f.SelectPoint(ctx, p)
	if err != nil {
		return nil, domain.NewConflictError(err.Error())
	}

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("returning draft before point resolution finished", zap.String("draft_id", id))
	}
	return snapshotOf(id, f), nil
}

// CancelPicker closes the point selection of draft id.
func (s *DraftService) CancelPicker(id string) (*DraftDTO, error) {
	f, err := s.find(id)
	if err != nil {
		return nil, err
	}
	f.CancelPicker()
	return snapshotOf(id, f), nil
}

// Submit stores draft id as a transport record and discards the draft. A
// draft that fails validation or storage is kept so it can be corrected.
// Only one submit of a draft runs at a time; a concurrent one is a conflict.
func (s *DraftService) Submit(ctx context.Context, id string) (*TransportDTO, error) {
	s.mu.Lock()
	e, err := s.lookupLocked(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if e.submitting {
		s.mu.Unlock()
		return nil, domain.NewConflictError("draft is already being submitted")
	}
	e.submitting = true
	s.mu.Unlock()

	dto, err := s.transports.Create(ctx, e.form.Values())
	if err != nil {
		s.mu.Lock()
		e.submitting = false
		e.touched = s.now()
		s.mu.Unlock()
		return nil, err
	}
	s.remove(id)
	s.logger.Info("draft submitted", zap.String("draft_id", id), zap.Int64("record_id", dto.ID))
	return dto, nil
}

// Discard drops draft id.
func (s *DraftService) Discard(id string) error {
	s.mu.Lock()
	e, err := s.lookupLocked(id)
	if err == nil && e.submitting {
		err = domain.NewConflictError("draft is being submitted")
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.remove(id)
	return nil
}

// Len returns the number of open drafts.
func (s *DraftService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// Sweep drops every draft idle for longer than the TTL and reports how
// many were dropped.
func (s *DraftService) Sweep() int {
	var expired []*form.Form

	s.mu.Lock()
	now := s.now()
	for id, e := range s.drafts {
		if s.expired(e, now) {
			delete(s.drafts, id)
			expired = append(expired, e.form)
		}
	}
	s.mu.Unlock()

	for _, f := range expired {
		f.CancelPicker()
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle drafts", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunJanitor sweeps idle drafts every interval until ctx is done.
func (s *DraftService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *DraftService) find(id string) (*form.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookupLocked(id)
	if err != nil {
		return nil, err
	}
	return e.form, nil
}

// lookupLocked returns the live entry for id and marks it touched. An
// expired entry is dropped and reported as not found.
func (s *DraftService) lookupLocked(id string) (*draftEntry, error) {
	e, ok := s.drafts[id]
	if !ok {
		return nil, domain.NewNotFoundError("Draft", id)
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.drafts, id)
		e.form.CancelPicker()
		return nil, domain.NewNotFoundError("Draft", id)
	}
	e.touched = now
	return e, nil
}

func (s *DraftService) expired(e *draftEntry, now time.Time) bool {
	return !e.submitting && now.Sub(e.touched) > s.ttl
}

func (s *DraftService) remove(id string) {
	s.mu.Lock()
	e, ok := s.drafts[id]
	delete(s.drafts, id)
	s.mu.Unlock()
	if ok {
		e.form.CancelPicker()
	}
}

func snapshotOf(id string, f *form.Form) *DraftDTO {
	return &DraftDTO{ID: id, Snapshot: f.Snapshot()}
}
