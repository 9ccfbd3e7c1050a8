package blog

// authorize is the single ownership check: only the post's author may mutate
// or delete it.
func authorize(post *Post, requesterID string) error {
	if post.AuthorID != requesterID {
		return NotPostAuthorError{PostID: post.ID, UserID: requesterID}
	}

	return nil
}
