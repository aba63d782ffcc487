// AngelaMos | 2026
// service.go

package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/directory"
	"github.com/angelamos/localmart/internal/profile"
	"github.com/angelamos/localmart/internal/realtime"
)

var (
	ErrEmptyComment = errors.New("comment content is empty")
	ErrNotOwner     = errors.New("not the business owner")
)

// BusinessResolver checks post targets against the directory.
type BusinessResolver interface {
	GetBusiness(ctx context.Context, id string) (*directory.Business, error)
}

// ProfileReader resolves the commenting user's display fields.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*profile.ProfileResponse, error)
}

type Service struct {
	repo       Repository
	engagement EngagementStore
	businesses BusinessResolver
	profiles   ProfileReader
	publisher  realtime.Publisher
	logger     *slog.Logger
}

func NewService(
	repo Repository,
	engagement EngagementStore,
	businesses BusinessResolver,
	profiles ProfileReader,
	publisher realtime.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		engagement: engagement,
		businesses: businesses,
		profiles:   profiles,
		publisher:  publisher,
		logger:     logger,
	}
}

// ListPosts annotates each post with like counts and, for a signed-in
// viewer, their own liked/saved state. Engagement read failures degrade
// to zeroes rather than failing the feed.
func (s *Service) ListPosts(
	ctx context.Context,
	viewerID, kind string,
) ([]PostResponse, error) {
	posts, err := s.repo.ListPosts(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, s.toPostResponse(ctx, &posts[i], viewerID))
	}

	return out, nil
}

// CreatePost is business-mode only (route gated) and requires the
// caller to own the target business.
func (s *Service) CreatePost(
	ctx context.Context,
	userID string,
	req CreatePostRequest,
) (*PostResponse, error) {
	business, err := s.businesses.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}

	if business.OwnerUserID == nil || *business.OwnerUserID != userID {
		return nil, ErrNotOwner
	}

	post := &Post{
		ID:           uuid.New().String(),
		BusinessID:   business.ID,
		AuthorID:     &userID,
		Kind:         req.Kind,
		Caption:      strings.TrimSpace(req.Caption),
		MediaURL:     req.MediaURL,
		BusinessName: business.Name,
		BusinessArea: business.Area,
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	resp := s.toPostResponse(ctx, post, userID)
	return &resp, nil
}

func (s *Service) ListComments(
	ctx context.Context,
	postID string,
) ([]CommentResponse, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}

	return out, nil
}

func (s *Service) AddComment(
	ctx context.Context,
	userID, postID, content string,
) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	userName := "Customer"
	var userAvatar *string
	if p, err := s.profiles.GetProfile(ctx, userID); err == nil {
		if p.FullName != nil && *p.FullName != "" {
			userName = *p.FullName
		}
		userAvatar = p.AvatarURL
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("resolve commenter: %w", err)
	}

	comment := &Comment{
		ID:         uuid.New().String(),
		PostID:     postID,
		UserID:     &userID,
		UserName:   userName,
		UserAvatar: userAvatar,
		Content:    content,
	}

	if err := s.repo.InsertComment(ctx, comment); err != nil {
		return nil, err
	}

	s.publishComment(ctx, comment)

	return comment, nil
}

func (s *Service) ToggleLike(
	ctx context.Context,
	userID, postID string,
) (*LikeResponse, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	liked, count, err := s.engagement.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	return &LikeResponse{PostID: postID, Liked: liked, LikeCount: count}, nil
}

func (s *Service) ToggleSave(
	ctx context.Context,
	userID, postID string,
) (*SaveResponse, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	saved, err := s.engagement.ToggleSave(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	return &SaveResponse{PostID: postID, Saved: saved}, nil
}

func (s *Service) toPostResponse(
	ctx context.Context,
	post *Post,
	viewerID string,
) PostResponse {
	resp := PostResponse{
		ID:           post.ID,
		BusinessID:   post.BusinessID,
		BusinessName: post.BusinessName,
		BusinessArea: post.BusinessArea,
		Kind:         post.Kind,
		Caption:      post.Caption,
		MediaURL:     post.MediaURL,
		CreatedAt:    post.CreatedAt,
	}

	count, err := s.engagement.LikeCount(ctx, post.ID)
	if err != nil {
		s.logger.Warn("like count", "post_id", post.ID, "error", err)
		return resp
	}
	resp.LikeCount = count

	if viewerID == "" {
		return resp
	}

	if liked, err := s.engagement.Liked(ctx, post.ID, viewerID); err == nil {
		resp.Liked = liked
	}
	if saved, err := s.engagement.Saved(ctx, post.ID, viewerID); err == nil {
		resp.Saved = saved
	}

	return resp
}

func (s *Service) publishComment(ctx context.Context, comment *Comment) {
	event, err := realtime.NewEvent(
		realtime.EventCommentCreated,
		realtime.PostTopic(comment.PostID),
		toCommentResponse(comment),
	)
	if err != nil {
		s.logger.Warn("build comment event", "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish comment event",
			"post_id", comment.PostID,
			"error", err,
		)
	}
}
