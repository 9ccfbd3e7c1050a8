package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/avasquez/inkwell/blog"
)

const (
	tablePosts     = "posts"
	tablePostTags  = "post_tags"
	tableReactions = "reactions"
	tableComments  = "comments"
)

type PostRepository struct {
	db *sql.DB
}

var _ blog.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID         = "id"
	postFieldSeq        = "seq"
	postFieldTitle      = "title"
	postFieldContent    = "content"
	postFieldImageURL   = "image_url"
	postFieldAuthorID   = "author_id"
	postFieldAuthorName = "author_name"
	postFieldState      = "state"
	postFieldCreatedAt  = "created_at"
	postFieldUpdatedAt  = "updated_at"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldTitle,
		postFieldContent,
		postFieldImageURL,
		postFieldAuthorID,
		postFieldAuthorName,
		postFieldState,
		postFieldCreatedAt,
		postFieldUpdatedAt,
	}
}

func scanPost(row sq.RowScanner) (*blog.Post, error) {
	var post blog.Post

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.ImageURL,
		&post.AuthorID,
		&post.AuthorName,
		&post.State,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	post.Tags = []string{}
	post.Likes = []string{}
	post.Bookmarks = []string{}
	post.Comments = []blog.Comment{}

	return &post, nil
}

func (repo *PostRepository) Insert(ctx context.Context, post *blog.Post) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	defer rollback(ctx, tx)

	// new posts go to the front of the collection
	var seq int64

	row := sq.Select("COALESCE(MAX(" + postFieldSeq + "), 0) + 1").
		From(tablePosts).
		RunWith(tx).
		QueryRowContext(ctx)

	err = row.Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to compute next seq: %w", err)
	}

	q := sq.Insert(tablePosts).
		Columns(append([]string{postFieldSeq}, postColumns()...)...).
		Values(
			seq,
			post.ID,
			post.Title,
			post.Content,
			post.ImageURL,
			post.AuthorID,
			post.AuthorName,
			post.State,
			post.CreatedAt,
			post.UpdatedAt,
		)

	_, err = q.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	err = insertTags(ctx, tx, post.ID, post.Tags)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (repo *PostRepository) Find(ctx context.Context, postID string) (*blog.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID})

	row := q.RunWith(repo.db).QueryRowContext(ctx)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blog.PostNotFoundError{ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	err = repo.loadRelations(ctx, []*blog.Post{post})
	if err != nil {
		return nil, err
	}

	return post, nil
}

func listConditions(params blog.ListPostsParams) []sq.Sqlizer {
	conds := []sq.Sqlizer{sq.Eq{postFieldState: blog.StatePublished}}

	if params.Author != "" {
		conds = append(conds, sq.Eq{postFieldAuthorID: params.Author})
	}

	if params.Tag != "" {
		conds = append(conds, sq.Expr(
			"EXISTS (SELECT 1 FROM post_tags WHERE post_tags.post_id = posts.id AND post_tags.tag = ?)",
			params.Tag,
		))
	}

	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"

		conds = append(conds, sq.Or{
			sq.Expr("LOWER(title) LIKE ?", pattern),
			sq.Expr("LOWER(content) LIKE ?", pattern),
			sq.Expr(
				"EXISTS (SELECT 1 FROM post_tags WHERE post_tags.post_id = posts.id AND LOWER(post_tags.tag) LIKE ?)",
				pattern,
			),
		})
	}

	return conds
}

func (repo *PostRepository) List(ctx context.Context, params blog.ListPostsParams) ([]*blog.Post, int, error) {
	conds := listConditions(params)

	countQuery := sq.Select("COUNT(*)").From(tablePosts)
	for _, cond := range conds {
		countQuery = countQuery.Where(cond)
	}

	var total int

	err := countQuery.RunWith(repo.db).QueryRowContext(ctx).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	q := sq.Select(postColumns()...).
		From(tablePosts).
		OrderBy(postFieldSeq + " DESC").
		Limit(uint64(params.Limit)).
		Offset(uint64((params.Page - 1) * params.Limit))

	for _, cond := range conds {
		q = q.Where(cond)
	}

	rows, err := q.RunWith(repo.db).QueryContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query: %w", err)
	}

	defer closeRows(ctx, rows)

	posts := make([]*blog.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to iterate rows: %w", err)
	}

	err = repo.loadRelations(ctx, posts)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (repo *PostRepository) Update(ctx context.Context, post *blog.Post) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	defer rollback(ctx, tx)

	q := sq.Update(tablePosts).
		Set(postFieldTitle, post.Title).
		Set(postFieldContent, post.Content).
		Set(postFieldImageURL, post.ImageURL).
		Set(postFieldState, post.State).
		Set(postFieldUpdatedAt, post.UpdatedAt).
		Where(sq.Eq{postFieldID: post.ID})

	res, err := q.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return blog.PostNotFoundError{ID: post.ID}
	}

	_, err = sq.Delete(tablePostTags).
		Where(sq.Eq{"post_id": post.ID}).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete tags: %w", err)
	}

	err = insertTags(ctx, tx, post.ID, post.Tags)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (repo *PostRepository) Delete(ctx context.Context, postID string) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	defer rollback(ctx, tx)

	for _, table := range []string{tablePostTags, tableReactions, tableComments} {
		_, err = sq.Delete(table).
			Where(sq.Eq{"post_id": postID}).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	res, err := sq.Delete(tablePosts).
		Where(sq.Eq{postFieldID: postID}).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return blog.PostNotFoundError{ID: postID}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (repo *PostRepository) ToggleReaction(
	ctx context.Context,
	postID, userID string,
	kind blog.ReactionKind,
) (*blog.Post, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}

	defer rollback(ctx, tx)

	var exists int

	err = sq.Select("COUNT(*)").
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID}).
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}

	if exists == 0 {
		return nil, blog.PostNotFoundError{ID: postID}
	}

	res, err := sq.Delete(tableReactions).
		Where(sq.Eq{"post_id": postID, "user_id": userID, "kind": kind}).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete reaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		_, err = sq.Insert(tableReactions).
			Columns("post_id", "user_id", "kind", "created_at").
			Values(postID, userID, kind, sq.Expr("CURRENT_TIMESTAMP")).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to insert reaction: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit tx: %w", err)
	}

	return repo.Find(ctx, postID)
}

func (repo *PostRepository) AddComment(ctx context.Context, postID string, comment *blog.Comment) error {
	_, err := repo.Find(ctx, postID)
	if err != nil {
		return err
	}

	q := sq.Insert(tableComments).
		Columns("id", "post_id", "user_id", "user_name", "user_avatar", "text", "created_at").
		Values(
			comment.ID,
			postID,
			comment.UserID,
			comment.UserName,
			comment.UserAvatar,
			comment.Text,
			comment.CreatedAt,
		)

	_, err = q.RunWith(repo.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

// TagCounts walks tags in collection order (newest post first, tag sequence
// order within a post) so first-appearance ordering matches the in-memory
// store. Drafts are included.
func (repo *PostRepository) TagCounts(ctx context.Context) ([]blog.TagCount, error) {
	q := sq.Select("post_tags.tag").
		From(tablePostTags).
		Join("posts ON posts.id = post_tags.post_id").
		OrderBy("posts.seq DESC", "post_tags.position ASC")

	rows, err := q.RunWith(repo.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer closeRows(ctx, rows)

	counts := make(map[string]int)
	order := make([]string, 0)

	for rows.Next() {
		var tag string

		err = rows.Scan(&tag)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}

		if _, seen := counts[tag]; !seen {
			order = append(order, tag)
		}

		counts[tag]++
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	out := make([]blog.TagCount, 0, len(order))
	for _, tag := range order {
		out = append(out, blog.TagCount{Tag: tag, Count: counts[tag]})
	}

	return out, nil
}

func (repo *PostRepository) CountByAuthor(ctx context.Context, authorID string, state blog.PostState) (int, error) {
	var count int

	err := sq.Select("COUNT(*)").
		From(tablePosts).
		Where(sq.Eq{postFieldAuthorID: authorID, postFieldState: state}).
		RunWith(repo.db).
		QueryRowContext(ctx).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

func (repo *PostRepository) Count(ctx context.Context) (int, error) {
	var count int

	err := sq.Select("COUNT(*)").
		From(tablePosts).
		RunWith(repo.db).
		QueryRowContext(ctx).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

// loadRelations fills tags, likes, bookmarks and comments for the given
// posts with one query per relation.
func (repo *PostRepository) loadRelations(ctx context.Context, posts []*blog.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[string]*blog.Post, len(posts))
	ids := make([]string, 0, len(posts))

	for _, post := range posts {
		byID[post.ID] = post
		ids = append(ids, post.ID)
	}

	{
		q := sq.Select("post_id", "tag").
			From(tablePostTags).
			Where(sq.Eq{"post_id": ids}).
			OrderBy("position ASC")

		rows, err := q.RunWith(repo.db).QueryContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to query tags: %w", err)
		}

		defer closeRows(ctx, rows)

		for rows.Next() {
			var postID, tag string

			err = rows.Scan(&postID, &tag)
			if err != nil {
				return fmt.Errorf("failed to scan tag: %w", err)
			}

			byID[postID].Tags = append(byID[postID].Tags, tag)
		}

		err = rows.Err()
		if err != nil {
			return fmt.Errorf("failed to iterate rows: %w", err)
		}
	}

	{
		q := sq.Select("post_id", "user_id", "kind").
			From(tableReactions).
			Where(sq.Eq{"post_id": ids}).
			OrderBy("rowid ASC")

		rows, err := q.RunWith(repo.db).QueryContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to query reactions: %w", err)
		}

		defer closeRows(ctx, rows)

		for rows.Next() {
			var postID, userID, kind string

			err = rows.Scan(&postID, &userID, &kind)
			if err != nil {
				return fmt.Errorf("failed to scan reaction: %w", err)
			}

			post := byID[postID]

			switch blog.ReactionKind(kind) {
			case blog.ReactionLike:
				post.Likes = append(post.Likes, userID)
			case blog.ReactionBookmark:
				post.Bookmarks = append(post.Bookmarks, userID)
			}
		}

		err = rows.Err()
		if err != nil {
			return fmt.Errorf("failed to iterate rows: %w", err)
		}
	}

	{
		q := sq.Select("id", "post_id", "user_id", "user_name", "user_avatar", "text", "created_at").
			From(tableComments).
			Where(sq.Eq{"post_id": ids}).
			OrderBy("rowid ASC")

		rows, err := q.RunWith(repo.db).QueryContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to query comments: %w", err)
		}

		defer closeRows(ctx, rows)

		for rows.Next() {
			var (
				comment blog.Comment
				postID  string
			)

			err = rows.Scan(
				&comment.ID,
				&postID,
				&comment.UserID,
				&comment.UserName,
				&comment.UserAvatar,
				&comment.Text,
				&comment.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to scan comment: %w", err)
			}

			byID[postID].Comments = append(byID[postID].Comments, comment)
		}

		err = rows.Err()
		if err != nil {
			return fmt.Errorf("failed to iterate rows: %w", err)
		}
	}

	return nil
}

func insertTags(ctx context.Context, tx *sql.Tx, postID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	q := sq.Insert(tablePostTags).Columns("post_id", "position", "tag")

	for i, tag := range tags {
		q = q.Values(postID, i, tag)
	}

	_, err := q.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert tags: %w", err)
	}

	return nil
}

func rollback(ctx context.Context, tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.ErrorContext(ctx, "failed to rollback tx", "error", err)
	}
}

func closeRows(ctx context.Context, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		slog.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
