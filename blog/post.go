package blog

import (
	"context"
	"fmt"
	"time"
)

type PostState string

const (
	StateDraft     PostState = "draft"
	StatePublished PostState = "published"
)

type Post struct {
	ID         string
	Title      string
	Content    string
	Tags       []string
	ImageURL   string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	State      PostState
	Likes      []string
	Bookmarks  []string
	Comments   []Comment
}

type Comment struct {
	ID         string
	UserID     string
	UserName   string
	UserAvatar string
	Text       string
	CreatedAt  time.Time
}

type ReactionKind string

const (
	ReactionLike     ReactionKind = "like"
	ReactionBookmark ReactionKind = "bookmark"
)

type TagCount struct {
	Tag   string
	Count int
}

// ListPostsParams filters the published posts before pagination. Search is a
// case-insensitive substring match over title, content and tags; Tag is an
// exact match against the tag sequence; Author matches the author id.
type ListPostsParams struct {
	Search string
	Tag    string
	Author string
	Page   int
	Limit  int
}

// PostRepository owns the post collection. The collection keeps
// most-recent-first order: Insert places the post at the front.
//
// ToggleReaction and AddComment are atomic read-modify-write operations
// inside the repository. Update persists the post's own fields and tags;
// reactions and comments are managed through their dedicated methods.
type PostRepository interface {
	Insert(ctx context.Context, post *Post) (err error)
	Find(ctx context.Context, postID string) (post *Post, err error)
	List(ctx context.Context, params ListPostsParams) (posts []*Post, total int, err error)
	Update(ctx context.Context, post *Post) (err error)
	Delete(ctx context.Context, postID string) (err error)
	ToggleReaction(ctx context.Context, postID, userID string, kind ReactionKind) (post *Post, err error)
	AddComment(ctx context.Context, postID string, comment *Comment) (err error)
	TagCounts(ctx context.Context) (counts []TagCount, err error)
	CountByAuthor(ctx context.Context, authorID string, state PostState) (count int, err error)
	Count(ctx context.Context) (count int, err error)
}

type PostNotFoundError struct {
	ID string
}

func (err PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %q not found", err.ID)
}

type NotPostAuthorError struct {
	PostID string
	UserID string
}

func (err NotPostAuthorError) Error() string {
	return fmt.Sprintf("user %q is not the author of post %q", err.UserID, err.PostID)
}

type ValidationError struct {
	Message string
}

func (err ValidationError) Error() string {
	return err.Message
}
