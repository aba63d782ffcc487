// AngelaMos | 2026
// service_test.go

package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/directory"
	"github.com/angelamos/localmart/internal/profile"
	"github.com/angelamos/localmart/internal/realtime"
	"github.com/angelamos/localmart/internal/testutil"
)

type fakeFeedRepository struct {
	posts    map[string]*Post
	comments map[string][]Comment
}

func newFakeFeedRepository() *fakeFeedRepository {
	return &fakeFeedRepository{
		posts:    make(map[string]*Post),
		comments: make(map[string][]Comment),
	}
}

func (f *fakeFeedRepository) ListPosts(_ context.Context, kind string) ([]Post, error) {
	var out []Post
	for _, p := range f.posts {
		if kind == "" || p.Kind == kind {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeFeedRepository) GetPost(_ context.Context, id string) (*Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	return p, nil
}

func (f *fakeFeedRepository) CreatePost(_ context.Context, post *Post) error {
	post.CreatedAt = time.Now()
	f.posts[post.ID] = post
	return nil
}

func (f *fakeFeedRepository) ListComments(_ context.Context, postID string) ([]Comment, error) {
	return f.comments[postID], nil
}

func (f *fakeFeedRepository) InsertComment(_ context.Context, comment *Comment) error {
	comment.CreatedAt = time.Now()
	f.comments[comment.PostID] = append(f.comments[comment.PostID], *comment)
	return nil
}

// fakeEngagementStore mirrors the redis set semantics in memory.
type fakeEngagementStore struct {
	likes map[string]map[string]struct{}
	saves map[string]map[string]struct{}
	err   error
}

func newFakeEngagementStore() *fakeEngagementStore {
	return &fakeEngagementStore{
		likes: make(map[string]map[string]struct{}),
		saves: make(map[string]map[string]struct{}),
	}
}

func (f *fakeEngagementStore) ToggleLike(_ context.Context, postID, userID string) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	set := f.likes[postID]
	if set == nil {
		set = make(map[string]struct{})
		f.likes[postID] = set
	}
	if _, ok := set[userID]; ok {
		delete(set, userID)
		return false, int64(len(set)), nil
	}
	set[userID] = struct{}{}
	return true, int64(len(set)), nil
}

func (f *fakeEngagementStore) ToggleSave(_ context.Context, postID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	set := f.saves[userID]
	if set == nil {
		set = make(map[string]struct{})
		f.saves[userID] = set
	}
	if _, ok := set[postID]; ok {
		delete(set, postID)
		return false, nil
	}
	set[postID] = struct{}{}
	return true, nil
}

func (f *fakeEngagementStore) LikeCount(_ context.Context, postID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.likes[postID])), nil
}

func (f *fakeEngagementStore) Liked(_ context.Context, postID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.likes[postID][userID]
	return ok, nil
}

func (f *fakeEngagementStore) Saved(_ context.Context, postID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.saves[userID][postID]
	return ok, nil
}

type fakeBusinessResolver struct {
	businesses map[string]*directory.Business
}

func (f *fakeBusinessResolver) GetBusiness(_ context.Context, id string) (*directory.Business, error) {
	b, ok := f.businesses[id]
	if !ok {
		return nil, fmt.Errorf("get business: %w", core.ErrNotFound)
	}
	return b, nil
}

type fakeProfileReader struct {
	profiles map[string]*profile.ProfileResponse
}

func (f *fakeProfileReader) GetProfile(_ context.Context, userID string) (*profile.ProfileResponse, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("get profile: %w", core.ErrNotFound)
	}
	return p, nil
}

type recordingPublisher struct {
	events []realtime.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event realtime.Event) error {
	r.events = append(r.events, event)
	return nil
}

type feedFixture struct {
	svc        *Service
	repo       *fakeFeedRepository
	engagement *fakeEngagementStore
	publisher  *recordingPublisher
}

func newFeedFixture() *feedFixture {
	owner := "owner-1"
	repo := newFakeFeedRepository()
	engagement := newFakeEngagementStore()
	publisher := &recordingPublisher{}

	resolver := &fakeBusinessResolver{businesses: map[string]*directory.Business{
		"b1": {ID: "b1", Name: "Green Grocer", Area: "Indiranagar", OwnerUserID: &owner},
		"b2": {ID: "b2", Name: "Seeded Stall", Area: "Koramangala"},
	}}
	name := "Asha Patel"
	profiles := &fakeProfileReader{profiles: map[string]*profile.ProfileResponse{
		"customer-1": {UserID: "customer-1", FullName: &name},
	}}

	svc := NewService(repo, engagement, resolver, profiles, publisher, testutil.Logger())
	return &feedFixture{svc: svc, repo: repo, engagement: engagement, publisher: publisher}
}

func (f *feedFixture) seedPost(id, kind string) {
	f.repo.posts[id] = &Post{
		ID:           id,
		BusinessID:   "b1",
		Kind:         kind,
		Caption:      "fresh stock in",
		MediaURL:     "https://cdn.example.com/p.jpg",
		BusinessName: "Green Grocer",
		BusinessArea: "Indiranagar",
		CreatedAt:    time.Now(),
	}
}

func TestService_CreatePost(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()

	resp, err := f.svc.CreatePost(context.Background(), "owner-1", CreatePostRequest{
		BusinessID: "b1",
		Kind:       KindPhoto,
		Caption:    "  opening day  ",
		MediaURL:   "https://cdn.example.com/open.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "opening day", resp.Caption)
	assert.Equal(t, "Green Grocer", resp.BusinessName)
	assert.Len(t, f.repo.posts, 1)
}

func TestService_CreatePost_OwnershipRequired(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()

	req := CreatePostRequest{
		BusinessID: "b1",
		Kind:       KindReel,
		MediaURL:   "https://cdn.example.com/r.mp4",
	}

	_, err := f.svc.CreatePost(context.Background(), "customer-1", req)
	assert.ErrorIs(t, err, ErrNotOwner)

	// A business without a linked owner account can never match.
	req.BusinessID = "b2"
	_, err = f.svc.CreatePost(context.Background(), "owner-1", req)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Empty(t, f.repo.posts)
}

func TestService_ListPosts(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)
	f.seedPost("p2", KindReel)

	all, err := f.svc.ListPosts(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	reels, err := f.svc.ListPosts(context.Background(), "", KindReel)
	require.NoError(t, err)
	require.Len(t, reels, 1)
	assert.Equal(t, "p2", reels[0].ID)
}

func TestService_ListPosts_ViewerAnnotations(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)

	_, err := f.svc.ToggleLike(context.Background(), "customer-1", "p1")
	require.NoError(t, err)
	_, err = f.svc.ToggleSave(context.Background(), "customer-1", "p1")
	require.NoError(t, err)

	posts, err := f.svc.ListPosts(context.Background(), "customer-1", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Liked)
	assert.True(t, posts[0].Saved)
	assert.Equal(t, int64(1), posts[0].LikeCount)

	// An anonymous viewer sees counts but no personal state.
	posts, err = f.svc.ListPosts(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, posts[0].Liked)
	assert.Equal(t, int64(1), posts[0].LikeCount)
}

func TestService_ListPosts_EngagementOutage(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)
	f.engagement.err = assert.AnError

	// Engagement being down degrades to zeroes, never an error.
	posts, err := f.svc.ListPosts(context.Background(), "customer-1", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Zero(t, posts[0].LikeCount)
	assert.False(t, posts[0].Liked)
}

func TestService_ToggleLike(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)

	first, err := f.svc.ToggleLike(context.Background(), "customer-1", "p1")
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, int64(1), first.LikeCount)

	second, err := f.svc.ToggleLike(context.Background(), "customer-1", "p1")
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Zero(t, second.LikeCount)

	_, err = f.svc.ToggleLike(context.Background(), "customer-1", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_ToggleSave(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)

	saved, err := f.svc.ToggleSave(context.Background(), "customer-1", "p1")
	require.NoError(t, err)
	assert.True(t, saved.Saved)

	unsaved, err := f.svc.ToggleSave(context.Background(), "customer-1", "p1")
	require.NoError(t, err)
	assert.False(t, unsaved.Saved)
}

func TestService_AddComment(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)

	comment, err := f.svc.AddComment(context.Background(), "customer-1", "p1", "  looks great  ")
	require.NoError(t, err)

	assert.Equal(t, "looks great", comment.Content)
	assert.Equal(t, "Asha Patel", comment.UserName)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, realtime.EventCommentCreated, f.publisher.events[0].Type)
	assert.Equal(t, realtime.PostTopic("p1"), f.publisher.events[0].Topic)
}

func TestService_AddComment_DefaultName(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)

	// No profile row: the comment still lands under a generic name.
	comment, err := f.svc.AddComment(context.Background(), "ghost", "p1", "anonymous but keen")
	require.NoError(t, err)
	assert.Equal(t, "Customer", comment.UserName)
}

func TestService_AddComment_Rejections(t *testing.T) {
	t.Parallel()

	f := newFeedFixture()
	f.seedPost("p1", KindPhoto)

	_, err := f.svc.AddComment(context.Background(), "customer-1", "p1", "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)

	_, err = f.svc.AddComment(context.Background(), "customer-1", "missing", "hi")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, f.publisher.events)
}
