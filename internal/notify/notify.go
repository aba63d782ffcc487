// AngelaMos | 2026
// notify.go

package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/angelamos/localmart/internal/realtime"
)

// Notification is the payload pushed on a user's realtime topic after a
// mutating operation succeeds. Failures never travel this path; they go
// back as error responses on the request itself.
type Notification struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	publisher realtime.Publisher
	logger    *slog.Logger
}

func NewService(publisher realtime.Publisher, logger *slog.Logger) *Service {
	return &Service{publisher: publisher, logger: logger}
}

// push is best-effort: a user who is offline or a flaky redis hop never
// fails the operation that produced the notification.
func (s *Service) push(ctx context.Context, userID, kind, message string) {
	event, err := realtime.NewEvent(
		realtime.EventNotification,
		realtime.UserTopic(userID),
		Notification{Kind: kind, Message: message, CreatedAt: time.Now().UTC()},
	)
	if err != nil {
		s.logger.Warn("build notification", "kind", kind, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish notification",
			"kind", kind,
			"user_id", userID,
			"error", err,
		)
	}
}

func (s *Service) RoleSwitched(ctx context.Context, userID, role string) {
	s.push(ctx, userID, "role.switched", "Switched to "+role+" mode")
}

func (s *Service) RoleGranted(ctx context.Context, userID, role string) {
	s.push(ctx, userID, "role.granted", "You now have "+role+" access")
}

func (s *Service) EnquirySent(ctx context.Context, userID, businessName string) {
	s.push(ctx, userID, "enquiry.sent", "Enquiry sent to "+businessName)
}

func (s *Service) BookingConfirmed(
	ctx context.Context,
	userID, serviceName, date, slot string,
) {
	s.push(ctx, userID, "booking.confirmed",
		"Booking confirmed: "+serviceName+" on "+date+" at "+slot)
}
