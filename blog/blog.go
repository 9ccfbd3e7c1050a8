package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 9

	fallbackUserName   = "User"
	fallbackUserAvatar = "https://i.pravatar.cc/80"
)

// IdentityResolver resolves a user id to a display name and avatar for
// denormalizing into comments.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (name string, avatarURL string, ok bool)
}

type Service struct {
	postRepo   PostRepository
	identities IdentityResolver
}

func NewService(postRepo PostRepository, identities IdentityResolver) *Service {
	return &Service{
		postRepo:   postRepo,
		identities: identities,
	}
}

type PostPage struct {
	Items []*Post
	Total int
	Page  int
	Limit int
}

// ListPosts returns a page of published posts. Page and limit values below 1
// clamp to 1; an out-of-range page yields empty items with the total
// unchanged.
func (svc *Service) ListPosts(ctx context.Context, params ListPostsParams) (*PostPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}

	if params.Limit < 1 {
		params.Limit = 1
	}

	posts, total, err := svc.postRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &PostPage{
		Items: posts,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

// GetPost returns the post regardless of its state. Drafts are reachable by
// direct id even though they never appear in listings.
func (svc *Service) GetPost(ctx context.Context, postID string) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return post, nil
}

type CreatePostInput struct {
	Title    string
	Content  string
	Tags     []string
	ImageURL string
	State    string
}

func (svc *Service) CreatePost(ctx context.Context, authorID, authorName string, input CreatePostInput) (*Post, error) {
	if input.Title == "" || input.Content == "" {
		return nil, ValidationError{Message: "title and content required"}
	}

	state := StatePublished
	if input.State == string(StateDraft) {
		state = StateDraft
	}

	timeNow := time.Now()

	post := &Post{
		ID:         uuid.NewString(),
		Title:      input.Title,
		Content:    input.Content,
		Tags:       normalizeTags(input.Tags),
		ImageURL:   input.ImageURL,
		AuthorID:   authorID,
		AuthorName: authorName,
		CreatedAt:  timeNow,
		UpdatedAt:  timeNow,
		State:      state,
		Likes:      []string{},
		Bookmarks:  []string{},
		Comments:   []Comment{},
	}

	err := svc.postRepo.Insert(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

// UpdatePostInput carries partial update semantics: zero-valued fields keep
// the post's prior value. ImageURL is a pointer so an explicit empty string
// clears the image while nil leaves it untouched; Tags works the same way,
// nil keeps the prior tags and an explicit empty list clears them.
type UpdatePostInput struct {
	Title    string
	Content  string
	Tags     []string
	ImageURL *string
	State    string
}

func (svc *Service) UpdatePost(ctx context.Context, postID, requesterID string, input UpdatePostInput) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	err = authorize(post, requesterID)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		post.Title = input.Title
	}

	if input.Content != "" {
		post.Content = input.Content
	}

	if input.Tags != nil {
		post.Tags = normalizeTags(input.Tags)
	}

	if input.ImageURL != nil {
		post.ImageURL = *input.ImageURL
	}

	if input.State != "" {
		post.State = StatePublished
		if input.State == string(StateDraft) {
			post.State = StateDraft
		}
	}

	post.UpdatedAt = time.Now()

	err = svc.postRepo.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// DeletePost removes the post and returns the deleted record.
func (svc *Service) DeletePost(ctx context.Context, postID, requesterID string) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	err = authorize(post, requesterID)
	if err != nil {
		return nil, err
	}

	err = svc.postRepo.Delete(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}

	return post, nil
}

func (svc *Service) ToggleLike(ctx context.Context, postID, userID string) (*Post, error) {
	post, err := svc.postRepo.ToggleReaction(ctx, postID, userID, ReactionLike)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	return post, nil
}

func (svc *Service) ToggleBookmark(ctx context.Context, postID, userID string) (*Post, error) {
	post, err := svc.postRepo.ToggleReaction(ctx, postID, userID, ReactionBookmark)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle bookmark: %w", err)
	}

	return post, nil
}

func (svc *Service) AddComment(ctx context.Context, postID, userID, text string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ValidationError{Message: "text required"}
	}

	userName := fallbackUserName
	userAvatar := fallbackUserAvatar

	if name, avatarURL, ok := svc.identities.ResolveIdentity(ctx, userID); ok {
		userName = name
		userAvatar = avatarURL
	}

	comment := &Comment{
		ID:         uuid.NewString(),
		UserID:     userID,
		UserName:   userName,
		UserAvatar: userAvatar,
		Text:       text,
		CreatedAt:  time.Now(),
	}

	err := svc.postRepo.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

// TagCounts aggregates tag occurrences over all posts, drafts included.
// Order is first appearance while iterating the collection front to back.
func (svc *Service) TagCounts(ctx context.Context) ([]TagCount, error) {
	counts, err := svc.postRepo.TagCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}

	return counts, nil
}

func (svc *Service) CountPublishedByAuthor(ctx context.Context, authorID string) (int, error) {
	count, err := svc.postRepo.CountByAuthor(ctx, authorID, StatePublished)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts by author: %w", err)
	}

	return count, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		out = append(out, tag)
	}

	return out
}
