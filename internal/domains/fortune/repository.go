package fortune

import "context"

// FortunePatch is the store-level partial update. Nil fields are left
// untouched; a non-nil empty Tags slice detaches every tag.
type FortunePatch struct {
	Author  *string
	Content *string
	Tags    []string
}

// Repository persists the three entity types with uniqueness and
// referential integrity enforced by the storage layer. Multi-step writes
// run in a single transaction; uniqueness violations come back as the
// typed exists sentinels, all other storage failures propagate wrapped
// but otherwise unchanged.
type Repository interface {
	GetFortune(ctx context.Context, id int64) (*Fortune, error)
	ListFortunes(ctx context.Context) ([]Fortune, error)
	// CreateFortune resolves the author and tags via get-or-create and
	// inserts the fortune plus its join rows in one transaction.
	CreateFortune(ctx context.Context, content, authorName string, tags []string) (*Fortune, error)
	// UpdateFortune applies a partial update and always touches updated_at.
	UpdateFortune(ctx context.Context, id int64, patch FortunePatch) (*Fortune, error)

	GetAuthor(ctx context.Context, id int64) (*Author, error)
	ListAuthors(ctx context.Context) ([]Author, error)
	UpdateAuthor(ctx context.Context, id int64, name string) (*Author, error)
	// FortunesByAuthor loads an author's reverse relation, tags included.
	FortunesByAuthor(ctx context.Context, authorID int64) ([]Fortune, error)

	GetTag(ctx context.Context, id int64) (*Tag, error)
	ListTags(ctx context.Context) ([]Tag, error)
	UpdateTag(ctx context.Context, id int64, value string) (*Tag, error)
	// FortunesByTag loads a tag's reverse relation, authors included.
	FortunesByTag(ctx context.Context, tagID int64) ([]Fortune, error)
}
