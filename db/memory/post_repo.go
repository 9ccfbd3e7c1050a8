// Package memory provides the default in-process repositories. Each
// repository guards its collection with a single mutex so read-modify-write
// sequences like the reaction toggle stay atomic across concurrent requests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/avasquez/inkwell/blog"
)

type PostRepository struct {
	mu    sync.Mutex
	posts []*blog.Post
}

var _ blog.PostRepository = (*PostRepository)(nil)

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: []*blog.Post{}}
}

func (repo *PostRepository) Insert(_ context.Context, post *blog.Post) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	// front-insert: most-recent-first collection order
	repo.posts = append([]*blog.Post{clonePost(post)}, repo.posts...)

	return nil
}

func (repo *PostRepository) Find(_ context.Context, postID string) (*blog.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	post := repo.find(postID)
	if post == nil {
		return nil, blog.PostNotFoundError{ID: postID}
	}

	return clonePost(post), nil
}

func (repo *PostRepository) List(_ context.Context, params blog.ListPostsParams) ([]*blog.Post, int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	matched := make([]*blog.Post, 0, len(repo.posts))

	for _, post := range repo.posts {
		if matches(post, params) {
			matched = append(matched, post)
		}
	}

	total := len(matched)

	start := (params.Page - 1) * params.Limit
	if start > total {
		start = total
	}

	end := start + params.Limit
	if end > total {
		end = total
	}

	page := make([]*blog.Post, 0, end-start)
	for _, post := range matched[start:end] {
		page = append(page, clonePost(post))
	}

	return page, total, nil
}

func (repo *PostRepository) Update(_ context.Context, post *blog.Post) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i, stored := range repo.posts {
		if stored.ID == post.ID {
			updated := clonePost(post)

			// reactions and comments belong to their dedicated methods; keep
			// the stored state, not the caller's snapshot
			updated.Likes = stored.Likes
			updated.Bookmarks = stored.Bookmarks
			updated.Comments = stored.Comments

			repo.posts[i] = updated

			return nil
		}
	}

	return blog.PostNotFoundError{ID: post.ID}
}

func (repo *PostRepository) Delete(_ context.Context, postID string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i := range repo.posts {
		if repo.posts[i].ID == postID {
			repo.posts = append(repo.posts[:i], repo.posts[i+1:]...)

			return nil
		}
	}

	return blog.PostNotFoundError{ID: postID}
}

func (repo *PostRepository) ToggleReaction(
	_ context.Context,
	postID, userID string,
	kind blog.ReactionKind,
) (*blog.Post, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	post := repo.find(postID)
	if post == nil {
		return nil, blog.PostNotFoundError{ID: postID}
	}

	set := &post.Likes
	if kind == blog.ReactionBookmark {
		set = &post.Bookmarks
	}

	if idx := slices.Index(*set, userID); idx >= 0 {
		*set = append((*set)[:idx], (*set)[idx+1:]...)
	} else {
		*set = append(*set, userID)
	}

	return clonePost(post), nil
}

func (repo *PostRepository) AddComment(_ context.Context, postID string, comment *blog.Comment) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	post := repo.find(postID)
	if post == nil {
		return blog.PostNotFoundError{ID: postID}
	}

	post.Comments = append(post.Comments, *comment)

	return nil
}

func (repo *PostRepository) TagCounts(_ context.Context) ([]blog.TagCount, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	counts := make(map[string]int)
	order := make([]string, 0)

	for _, post := range repo.posts {
		for _, tag := range post.Tags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}

			counts[tag]++
		}
	}

	out := make([]blog.TagCount, 0, len(order))
	for _, tag := range order {
		out = append(out, blog.TagCount{Tag: tag, Count: counts[tag]})
	}

	return out, nil
}

func (repo *PostRepository) CountByAuthor(_ context.Context, authorID string, state blog.PostState) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	count := 0

	for _, post := range repo.posts {
		if post.AuthorID == authorID && post.State == state {
			count++
		}
	}

	return count, nil
}

func (repo *PostRepository) Count(_ context.Context) (int, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	return len(repo.posts), nil
}

func (repo *PostRepository) find(postID string) *blog.Post {
	for _, post := range repo.posts {
		if post.ID == postID {
			return post
		}
	}

	return nil
}

func matches(post *blog.Post, params blog.ListPostsParams) bool {
	if post.State != blog.StatePublished {
		return false
	}

	if params.Author != "" && post.AuthorID != params.Author {
		return false
	}

	if params.Tag != "" && !slices.Contains(post.Tags, params.Tag) {
		return false
	}

	if params.Search != "" {
		search := strings.ToLower(params.Search)

		if !strings.Contains(strings.ToLower(post.Title), search) &&
			!strings.Contains(strings.ToLower(post.Content), search) &&
			!slices.ContainsFunc(post.Tags, func(tag string) bool {
				return strings.Contains(strings.ToLower(tag), search)
			}) {
			return false
		}
	}

	return true
}

// clonePost copies the post and its slices so callers never share memory
// with the stored collection.
func clonePost(post *blog.Post) *blog.Post {
	out := *post
	out.Tags = slices.Clone(post.Tags)
	out.Likes = slices.Clone(post.Likes)
	out.Bookmarks = slices.Clone(post.Bookmarks)
	out.Comments = slices.Clone(post.Comments)

	if out.Tags == nil {
		out.Tags = []string{}
	}

	if out.Likes == nil {
		out.Likes = []string{}
	}

	if out.Bookmarks == nil {
		out.Bookmarks = []string{}
	}

	if out.Comments == nil {
		out.Comments = []blog.Comment{}
	}

	return &out
}
