// Package api holds the wire types of the REST surface. Field names are part
// of the public contract consumed by the browser client.
package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	State      string    `json:"state"`
	Likes      []string  `json:"likes"`
	Bookmarks  []string  `json:"bookmarks"`
	Comments   []Comment `json:"comments"`
}

type Comment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PostPage struct {
	Items []Post `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type TagCountList struct {
	Items []TagCount `json:"items"`
}

type Author struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatarUrl"`
	Bio        string `json:"bio"`
	PostsCount int    `json:"postsCount"`
}

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TagList accepts either a JSON array of strings or a single comma-separated
// string, the two shapes clients send for tags.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var asList []string

	err := json.Unmarshal(data, &asList)
	if err == nil {
		*t = asList

		return nil
	}

	var asString string

	err = json.Unmarshal(data, &asString)
	if err != nil {
		return errors.New("tags must be an array or a comma-separated string")
	}

	out := make(TagList, 0)

	for _, part := range strings.Split(asString, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		out = append(out, part)
	}

	*t = out

	return nil
}

type CreatePostRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Tags     TagList `json:"tags"`
	ImageURL string  `json:"imageUrl"`
	State    string  `json:"state"`
}

type UpdatePostRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Tags     TagList `json:"tags"`
	ImageURL *string `json:"imageUrl"`
	State    string  `json:"state"`
}

type AddCommentRequest struct {
	Text string `json:"text"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
