package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fortunes-backend/internal/domains/fortune"
	"fortunes-backend/pkg/tsid"
)

// postgresRepository implements fortune.Repository on pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) fortune.Repository {
	return &postgresRepository{pool: pool}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so reads can run
// inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// translateUnique converts a unique-constraint violation into the typed
// exists sentinel for the entity whose constraint tripped. Any other
// error returns nil so the caller propagates it unchanged.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.TableName {
	case "authors":
		return fortune.ErrAuthorExists
	case "tags":
		return fortune.ErrTagExists
	case "fortunes":
		return fortune.ErrFortuneExists
	}
	return nil
}

// ========================================
// FORTUNES
// ========================================

const fortuneWithAuthorQuery = `
	SELECT f.id, f.content, f.created_at, f.updated_at,
	       a.id, a.name, a.created_at, a.updated_at
	FROM fortunes f
	JOIN authors a ON a.id = f.author_id
`

func scanFortuneWithAuthor(row pgx.Row) (*fortune.Fortune, error) {
	var f fortune.Fortune
	var a fortune.Author
	err := row.Scan(
		&f.ID, &f.Content, &f.CreatedAt, &f.UpdatedAt,
		&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.AuthorID = a.ID
	f.Author = &a
	return &f, nil
}

func (r *postgresRepository) GetFortune(ctx context.Context, id int64) (*fortune.Fortune, error) {
	row := r.pool.QueryRow(ctx, fortuneWithAuthorQuery+" WHERE f.id = $1", id)
	f, err := scanFortuneWithAuthor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fortune.ErrFortuneNotFound
		}
		return nil, fmt.Errorf("failed to get fortune: %w", err)
	}

	tags, err := r.tagsForFortunes(ctx, r.pool, []int64{f.ID})
	if err != nil {
		return nil, err
	}
	f.Tags = tags[f.ID]
	return f, nil
}

func (r *postgresRepository) ListFortunes(ctx context.Context) ([]fortune.Fortune, error) {
	rows, err := r.pool.Query(ctx, fortuneWithAuthorQuery+" ORDER BY f.id")
	if err != nil {
		return nil, fmt.Errorf("failed to query fortunes: %w", err)
	}
	defer rows.Close()

	fortunes := []fortune.Fortune{}
	ids := []int64{}
	for rows.Next() {
		f, err := scanFortuneWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fortune: %w", err)
		}
		fortunes = append(fortunes, *f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fortunes: %w", err)
	}

	tags, err := r.tagsForFortunes(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range fortunes {
		fortunes[i].Tags = tags[fortunes[i].ID]
	}
	return fortunes, nil
}

func (r *postgresRepository) CreateFortune(ctx context.Context, content, authorName string, tags []string) (*fortune.Fortune, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	author, err := r.getOrCreateAuthor(ctx, tx, authorName)
	if err != nil {
		return nil, err
	}

	resolved, err := r.getOrCreateTags(ctx, tx, tags)
	if err != nil {
		return nil, err
	}

	f := &fortune.Fortune{
		ID:       tsid.Generate(),
		Content:  content,
		AuthorID: author.ID,
		Author:   author,
		Tags:     resolved,
	}
	err = tx.QueryRow(ctx,
		"INSERT INTO fortunes (id, content, author_id) VALUES ($1, $2, $3) RETURNING created_at",
		f.ID, f.Content, f.AuthorID,
	).Scan(&f.CreatedAt)
	if err != nil {
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to create fortune: %w", err)
	}

	if err := r.attachTags(ctx, tx, f.ID, resolved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to commit fortune: %w", err)
	}
	return f, nil
}

func (r *postgresRepository) UpdateFortune(ctx context.Context, id int64, patch fortune.FortunePatch) (*fortune.Fortune, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// A patch always touches updated_at, even when only tags change.
	setClauses := []string{"updated_at = now()"}
	args := []any{id}
	idx := 2

	if patch.Author != nil {
		author, err := r.getOrCreateAuthor(ctx, tx, *patch.Author)
		if err != nil {
			return nil, err
		}
		setClauses = append(setClauses, fmt.Sprintf("author_id = $%d", idx))
		args = append(args, author.ID)
		idx++
	}
	if patch.Content != nil {
		setClauses = append(setClauses, fmt.Sprintf("content = $%d", idx))
		args = append(args, *patch.Content)
		idx++
	}

	query := fmt.Sprintf("UPDATE fortunes SET %s WHERE id = $1", strings.Join(setClauses, ", "))
	cmdTag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to update fortune: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fortune.ErrFortuneNotFound
	}

	if patch.Tags != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM fortunes_tags WHERE fortune_id = $1", id); err != nil {
			return nil, fmt.Errorf("failed to detach tags: %w", err)
		}
		resolved, err := r.getOrCreateTags(ctx, tx, patch.Tags)
		if err != nil {
			return nil, err
		}
		if err := r.attachTags(ctx, tx, id, resolved); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to commit fortune update: %w", err)
	}

	return r.GetFortune(ctx, id)
}

// getOrCreateAuthor returns the author with the given name, inserting it
// when absent. Two concurrent inserts of the same name race; the unique
// constraint turns the loser into a conflict instead of a duplicate row.
func (r *postgresRepository) getOrCreateAuthor(ctx context.Context, q querier, name string) (*fortune.Author, error) {
	var a fortune.Author
	err := q.QueryRow(ctx,
		"SELECT id, name, created_at, updated_at FROM authors WHERE name = $1",
		name,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up author: %w", err)
	}

	a = fortune.Author{ID: tsid.Generate(), Name: name}
	err = q.QueryRow(ctx,
		"INSERT INTO authors (id, name) VALUES ($1, $2) RETURNING created_at",
		a.ID, a.Name,
	).Scan(&a.CreatedAt)
	if err != nil {
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) getOrCreateTag(ctx context.Context, q querier, value string) (*fortune.Tag, error) {
	var t fortune.Tag
	err := q.QueryRow(ctx,
		"SELECT id, tag, created_at, updated_at FROM tags WHERE tag = $1",
		value,
	).Scan(&t.ID, &t.Value, &t.CreatedAt, &t.UpdatedAt)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up tag: %w", err)
	}

	t = fortune.Tag{ID: tsid.Generate(), Value: value}
	err = q.QueryRow(ctx,
		"INSERT INTO tags (id, tag) VALUES ($1, $2) RETURNING created_at",
		t.ID, t.Value,
	).Scan(&t.CreatedAt)
	if err != nil {
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return &t, nil
}

// getOrCreateTags resolves each distinct value once, preserving request
// order, so a request repeating a tag cannot create duplicate rows.
func (r *postgresRepository) getOrCreateTags(ctx context.Context, q querier, values []string) ([]fortune.Tag, error) {
	resolved := make([]fortune.Tag, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		t, err := r.getOrCreateTag(ctx, q, value)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *t)
	}
	return resolved, nil
}

func (r *postgresRepository) attachTags(ctx context.Context, q querier, fortuneID int64, tags []fortune.Tag) error {
	for _, t := range tags {
		_, err := q.Exec(ctx,
			"INSERT INTO fortunes_tags (fortune_id, tag_id) VALUES ($1, $2)",
			fortuneID, t.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}
	return nil
}

// tagsForFortunes loads tags for a set of fortunes in one query.
func (r *postgresRepository) tagsForFortunes(ctx context.Context, q querier, fortuneIDs []int64) (map[int64][]fortune.Tag, error) {
	out := make(map[int64][]fortune.Tag, len(fortuneIDs))
	if len(fortuneIDs) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, `
		SELECT ft.fortune_id, t.id, t.tag, t.created_at, t.updated_at
		FROM fortunes_tags ft
		JOIN tags t ON t.id = ft.tag_id
		WHERE ft.fortune_id = ANY($1)
		ORDER BY ft.fortune_id, t.id`,
		fortuneIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fortune tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fortuneID int64
		var t fortune.Tag
		if err := rows.Scan(&fortuneID, &t.ID, &t.Value, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fortune tag: %w", err)
		}
		out[fortuneID] = append(out[fortuneID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fortune tags: %w", err)
	}
	return out, nil
}

// ========================================
// AUTHORS
// ========================================

func (r *postgresRepository) GetAuthor(ctx context.Context, id int64) (*fortune.Author, error) {
	var a fortune.Author
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, created_at, updated_at FROM authors WHERE id = $1",
		id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fortune.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) ListAuthors(ctx context.Context) ([]fortune.Author, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, name, created_at, updated_at FROM authors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := []fortune.Author{}
	for rows.Next() {
		var a fortune.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}
	return authors, nil
}

func (r *postgresRepository) UpdateAuthor(ctx context.Context, id int64, name string) (*fortune.Author, error) {
	var a fortune.Author
	err := r.pool.QueryRow(ctx,
		"UPDATE authors SET name = $2, updated_at = now() WHERE id = $1 RETURNING id, name, created_at, updated_at",
		id, name,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fortune.ErrAuthorNotFound
		}
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) FortunesByAuthor(ctx context.Context, authorID int64) ([]fortune.Fortune, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, content, created_at, updated_at FROM fortunes WHERE author_id = $1 ORDER BY id",
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query author fortunes: %w", err)
	}
	defer rows.Close()

	fortunes := []fortune.Fortune{}
	ids := []int64{}
	for rows.Next() {
		f := fortune.Fortune{AuthorID: authorID}
		if err := rows.Scan(&f.ID, &f.Content, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fortune: %w", err)
		}
		fortunes = append(fortunes, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author fortunes: %w", err)
	}

	tags, err := r.tagsForFortunes(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range fortunes {
		fortunes[i].Tags = tags[fortunes[i].ID]
	}
	return fortunes, nil
}

// ========================================
// TAGS
// ========================================

func (r *postgresRepository) GetTag(ctx context.Context, id int64) (*fortune.Tag, error) {
	var t fortune.Tag
	err := r.pool.QueryRow(ctx,
		"SELECT id, tag, created_at, updated_at FROM tags WHERE id = $1",
		id,
	).Scan(&t.ID, &t.Value, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fortune.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &t, nil
}

func (r *postgresRepository) ListTags(ctx context.Context) ([]fortune.Tag, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, tag, created_at, updated_at FROM tags ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []fortune.Tag{}
	for rows.Next() {
		var t fortune.Tag
		if err := rows.Scan(&t.ID, &t.Value, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

func (r *postgresRepository) UpdateTag(ctx context.Context, id int64, value string) (*fortune.Tag, error) {
	var t fortune.Tag
	err := r.pool.QueryRow(ctx,
		"UPDATE tags SET tag = $2, updated_at = now() WHERE id = $1 RETURNING id, tag, created_at, updated_at",
		id, value,
	).Scan(&t.ID, &t.Value, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fortune.ErrTagNotFound
		}
		if typed := translateUnique(err); typed != nil {
			return nil, typed
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return &t, nil
}

func (r *postgresRepository) FortunesByTag(ctx context.Context, tagID int64) ([]fortune.Fortune, error) {
	rows, err := r.pool.Query(ctx,
		fortuneWithAuthorQuery+`
		JOIN fortunes_tags ft ON ft.fortune_id = f.id
		WHERE ft.tag_id = $1
		ORDER BY f.id`,
		tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag fortunes: %w", err)
	}
	defer rows.Close()

	fortunes := []fortune.Fortune{}
	for rows.Next() {
		f, err := scanFortuneWithAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fortune: %w", err)
		}
		fortunes = append(fortunes, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag fortunes: %w", err)
	}
	return fortunes, nil
}
