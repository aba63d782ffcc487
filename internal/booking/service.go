// AngelaMos | 2026
// service.go

package booking

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/angelamos/localmart/internal/config"
	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/directory"
)

const (
	dateLayout     = "2006-01-02"
	maxAdvanceDays = 30
)

var (
	ErrSessionExpired    = errors.New("booking session expired")
	ErrStepLocked        = errors.New("previous step not completed")
	ErrUnknownService    = errors.New("unknown service")
	ErrInvalidDate       = errors.New("invalid booking date")
	ErrSlotUnavailable   = errors.New("slot not available")
	ErrSelectionMismatch = errors.New("selection does not match session")
)

// BusinessResolver is the slice of the directory the wizard needs.
type BusinessResolver interface {
	GetBusiness(ctx context.Context, id string) (*directory.Business, error)
}

// Notifier acknowledges the confirmed booking to the user.
type Notifier interface {
	BookingConfirmed(ctx context.Context, userID, serviceName, date, slot string)
}

type Service struct {
	repo       Repository
	businesses BusinessResolver
	notifier   Notifier
	cfg        config.BookingConfig
	now        func() time.Time
}

func NewService(
	repo Repository,
	businesses BusinessResolver,
	notifier Notifier,
	cfg config.BookingConfig,
) *Service {
	return &Service{
		repo:       repo,
		businesses: businesses,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *Service) StartSession(
	ctx context.Context,
	userID, businessID string,
) (*StartSessionResponse, error) {
	business, err := s.businesses.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		BusinessID:   business.ID,
		BusinessName: business.Name,
		CategorySlug: business.CategorySlug,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.SaveSession(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, err
	}

	return &StartSessionResponse{
		SessionID:    session.ID,
		BusinessID:   business.ID,
		BusinessName: business.Name,
		Services:     CatalogFor(business.CategorySlug),
	}, nil
}

// SelectService records the first wizard step. Re-selecting clears the
// chosen date: going back invalidates everything after it.
func (s *Service) SelectService(
	ctx context.Context,
	userID, sessionID, serviceID string,
) (*Session, error) {
	session, err := s.loadSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if _, ok := serviceByID(session.CategorySlug, serviceID); !ok {
		return nil, ErrUnknownService
	}

	session.ServiceID = serviceID
	session.Date = ""

	if err := s.repo.SaveSession(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, err
	}

	return session, nil
}

// Slots returns the availability snapshot for a date. The snapshot is
// computed once per (session, date) and reused from redis afterwards,
// so a user stepping back and forth sees stable availability.
func (s *Service) Slots(
	ctx context.Context,
	userID, sessionID, date string,
) (*SlotsResponse, error) {
	session, err := s.loadSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.ServiceID == "" {
		return nil, ErrStepLocked
	}

	if err := s.validateDate(date); err != nil {
		return nil, err
	}

	snapshot, err := s.repo.GetSnapshot(ctx, sessionID, date)
	if errors.Is(err, core.ErrNotFound) {
		snapshot = buildSnapshot(sessionID, date, s.cfg.SlotFillPercent)
		if err := s.repo.SaveSnapshot(ctx, sessionID, snapshot, s.cfg.SessionTTL); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	session.Date = date
	if err := s.repo.SaveSession(ctx, session, s.cfg.SessionTTL); err != nil {
		return nil, err
	}

	return toSlotsResponse(snapshot), nil
}

// Confirm validates the complete selection against the session and its
// snapshot. Nothing durable is written: the confirmation is the
// notification.
func (s *Service) Confirm(
	ctx context.Context,
	userID, sessionID string,
	req ConfirmRequest,
) (*ConfirmationResponse, error) {
	session, err := s.loadSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.ServiceID == "" || session.Date == "" {
		return nil, ErrStepLocked
	}

	if session.ServiceID != req.ServiceID || session.Date != req.Date {
		return nil, ErrSelectionMismatch
	}

	svc, ok := serviceByID(session.CategorySlug, req.ServiceID)
	if !ok {
		return nil, ErrUnknownService
	}

	snapshot, err := s.repo.GetSnapshot(ctx, sessionID, req.Date)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}

	available, ok := snapshot.Slots[req.Slot]
	if !ok || !available {
		return nil, ErrSlotUnavailable
	}

	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		return nil, err
	}

	s.notifier.BookingConfirmed(ctx, userID, svc.Name, req.Date, req.Slot)

	return &ConfirmationResponse{
		BusinessName: session.BusinessName,
		ServiceName:  svc.Name,
		Date:         req.Date,
		Slot:         req.Slot,
	}, nil
}

func (s *Service) loadSession(
	ctx context.Context,
	userID, sessionID string,
) (*Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}

	if session.UserID != userID {
		return nil, fmt.Errorf("load session: %w", core.ErrForbidden)
	}

	return session, nil
}

func (s *Service) validateDate(date string) error {
	parsed, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return ErrInvalidDate
	}

	today := s.now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)

	if parsed.Before(today) {
		return ErrInvalidDate
	}
	if parsed.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return ErrInvalidDate
	}

	return nil
}

// buildSnapshot derives availability from a hash of (session, date), so
// rebuilding after a cache miss yields the same answer the session saw
// before.
func buildSnapshot(sessionID, date string, fillPercent int) *SlotSnapshot {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	h.Write([]byte{0})
	h.Write([]byte(date))
	seed := h.Sum64()

	rng := rand.New(rand.NewPCG(seed, seed))

	slots := make(map[string]bool, len(timeSlots))
	for _, slot := range timeSlots {
		slots[slot] = rng.IntN(100) >= fillPercent
	}

	return &SlotSnapshot{Date: date, Slots: slots}
}

func toSlotsResponse(snapshot *SlotSnapshot) *SlotsResponse {
	out := make([]SlotResponse, 0, len(timeSlots))
	for _, slot := range timeSlots {
		available, ok := snapshot.Slots[slot]
		out = append(out, SlotResponse{
			Time:      slot,
			Available: ok && available,
		})
	}

	return &SlotsResponse{Date: snapshot.Date, TimeSlots: out}
}
