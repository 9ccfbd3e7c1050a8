// Package authors holds the static author directory used to decorate posts
// and comments with display names and avatars.
package authors

import (
	"context"
	"fmt"
)

type Author struct {
	ID        string
	Name      string
	AvatarURL string
	Bio       string
}

type AuthorNotFoundError struct {
	ID string
}

func (err AuthorNotFoundError) Error() string {
	return fmt.Sprintf("author with id %q not found", err.ID)
}

// Directory is a read-only, seeded lookup. The seed set matches the demo
// users the rest of the system references.
type Directory struct {
	authors []Author
}

func NewDirectory() *Directory {
	return &Directory{
		authors: []Author{
			{
				ID:        "u1",
				Name:      "Alex Rivera",
				AvatarURL: "https://i.pravatar.cc/100?img=1",
				Bio:       "Frontend engineer and writer.",
			},
			{
				ID:        "u2",
				Name:      "Morgan Lee",
				AvatarURL: "https://i.pravatar.cc/100?img=2",
				Bio:       "Product designer exploring UX and systems.",
			},
			{
				ID:        "u3",
				Name:      "Riley Chen",
				AvatarURL: "https://i.pravatar.cc/100?img=3",
				Bio:       "Full-stack developer and DevOps tinkerer.",
			},
		},
	}
}

func (dir *Directory) Find(authorID string) (*Author, error) {
	for i := range dir.authors {
		if dir.authors[i].ID == authorID {
			author := dir.authors[i]

			return &author, nil
		}
	}

	return nil, AuthorNotFoundError{ID: authorID}
}

func (dir *Directory) All() []Author {
	out := make([]Author, len(dir.authors))
	copy(out, dir.authors)

	return out
}

// ResolveIdentity implements the identity lookup used when denormalizing
// user info into comments.
func (dir *Directory) ResolveIdentity(_ context.Context, userID string) (string, string, bool) {
	for i := range dir.authors {
		if dir.authors[i].ID == userID {
			return dir.authors[i].Name, dir.authors[i].AvatarURL, true
		}
	}

	return "", "", false
}

// PublishedPostCounter reports how many published posts an author has.
type PublishedPostCounter interface {
	CountPublishedByAuthor(ctx context.Context, authorID string) (count int, err error)
}

type Profile struct {
	Author
	PostsCount int
}

type Service struct {
	dir   *Directory
	posts PublishedPostCounter
}

func NewService(dir *Directory, posts PublishedPostCounter) *Service {
	return &Service{
		dir:   dir,
		posts: posts,
	}
}

// GetProfile returns the author decorated with their published post count.
// Draft posts never contribute to the count.
func (svc *Service) GetProfile(ctx context.Context, authorID string) (*Profile, error) {
	author, err := svc.dir.Find(authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	count, err := svc.posts.CountPublishedByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count author posts: %w", err)
	}

	return &Profile{Author: *author, PostsCount: count}, nil
}

func (svc *Service) ResolveIdentity(ctx context.Context, userID string) (string, string, bool) {
	return svc.dir.ResolveIdentity(ctx, userID)
}
