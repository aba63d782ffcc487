// AngelaMos | 2026
// service.go

package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelamos/localmart/internal/chat"
	"github.com/angelamos/localmart/internal/profile"
)

var ErrUnknownEnquiry = errors.New("unknown enquiry kind")

// cannedEnquiries are the quick-enquiry buttons: a tap sends a fixed
// message, no free text involved.
var cannedEnquiries = map[string]string{
	"price":         "What is the price?",
	"stock":         "Is this item in stock?",
	"delivery":      "Do you offer delivery?",
	"delivery_time": "What is the delivery time?",
	"order":         "I want to order this",
}

// ChatStarter is the slice of the chat service an enquiry needs.
type ChatStarter interface {
	StartConversation(ctx context.Context, userID, activeRole, otherUserID string) (*chat.Conversation, error)
	SendMessage(ctx context.Context, userID, conversationID, content string) (*chat.Message, error)
}

// Notifier acknowledges the enquiry to the sender.
type Notifier interface {
	EnquirySent(ctx context.Context, userID, businessName string)
}

type Service struct {
	repo     Repository
	chats    ChatStarter
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, chats ChatStarter, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		chats:    chats,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{
			ID:    c.ID,
			Slug:  c.Slug,
			Name:  c.Name,
			Emoji: c.Emoji,
		})
	}

	return out, nil
}

func (s *Service) ListBusinesses(
	ctx context.Context,
	categorySlug, search string,
) ([]BusinessResponse, error) {
	businesses, err := s.repo.ListBusinesses(ctx, categorySlug, search)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]BusinessResponse, 0, len(businesses))
	for i := range businesses {
		out = append(out, s.toBusinessResponse(&businesses[i], now))
	}

	return out, nil
}

func (s *Service) GetBusiness(
	ctx context.Context,
	id string,
) (*BusinessResponse, error) {
	business, err := s.repo.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := s.toBusinessResponse(business, s.now())
	return &resp, nil
}

// SendEnquiry resolves the canned message and routes it through chat
// when the business has a linked owner account. Businesses without one
// get acknowledgement only; there is nobody to deliver to.
func (s *Service) SendEnquiry(
	ctx context.Context,
	userID, businessID, kind string,
) (*EnquiryResponse, error) {
	message, ok := cannedEnquiries[kind]
	if !ok {
		return nil, ErrUnknownEnquiry
	}

	business, err := s.repo.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	resp := &EnquiryResponse{
		BusinessID: businessID,
		Message:    message,
	}

	if business.OwnerUserID != nil {
		conv, err := s.chats.StartConversation(
			ctx,
			userID,
			profile.RoleCustomer,
			*business.OwnerUserID,
		)
		if err != nil {
			return nil, fmt.Errorf("enquiry conversation: %w", err)
		}

		if _, err := s.chats.SendMessage(ctx, userID, conv.ID, message); err != nil {
			return nil, fmt.Errorf("enquiry message: %w", err)
		}

		resp.ConversationID = &conv.ID
	}

	s.notifier.EnquirySent(ctx, userID, business.Name)

	return resp, nil
}

func (s *Service) toBusinessResponse(
	b *Business,
	now time.Time,
) BusinessResponse {
	return BusinessResponse{
		ID:           b.ID,
		OwnerUserID:  b.OwnerUserID,
		CategoryID:   b.CategoryID,
		CategorySlug: b.CategorySlug,
		CategoryName: b.CategoryName,
		Name:         b.Name,
		Description:  b.Description,
		Area:         b.Area,
		ImageURL:     b.ImageURL,
		Rating:       b.Rating,
		OpensAt:      b.OpensAt,
		ClosesAt:     b.ClosesAt,
		OpenNow:      b.OpenAt(now),
		CreatedAt:    b.CreatedAt,
	}
}
