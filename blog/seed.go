package blog

import (
	"fmt"
	"time"
)

type SeedAuthor struct {
	ID   string
	Name string
}

var seedTags = []string{
	"react",
	"typescript",
	"redux",
	"design",
	"security",
	"devops",
	"css",
	"ui",
	"performance",
}

// SeedPosts generates the demo corpus: count published posts spread one day
// apart, authors assigned round-robin. Posts are returned oldest first so
// that front-inserting them in order leaves the newest at index 0.
func SeedPosts(count int, authors []SeedAuthor) []*Post {
	posts := make([]*Post, 0, count)

	for i := count - 1; i >= 0; i-- {
		author := authors[i%len(authors)]
		createdAt := time.Now().Add(-time.Duration(i) * 24 * time.Hour)

		posts = append(posts, &Post{
			ID:    fmt.Sprintf("p%d", i+1),
			Title: fmt.Sprintf("Building with React %d", i+1),
			Content: "<p>Learn modern React patterns with hooks, performance tips, and production-ready techniques.</p>" +
				"<p>This article covers state management, <strong>accessibility</strong>, and architecture guidance for scalable apps.</p>",
			Tags:       []string{seedTags[i%len(seedTags)], seedTags[(i+3)%len(seedTags)]},
			ImageURL:   fmt.Sprintf("https://picsum.photos/seed/react-%d/800/400", i),
			AuthorID:   author.ID,
			AuthorName: author.Name,
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
			State:      StatePublished,
			Likes:      []string{},
			Bookmarks:  []string{},
			Comments:   []Comment{},
		})
	}

	return posts
}
