package fortune

import "context"

// Service is the business-logic boundary the HTTP handlers talk to.
// Write operations involving get-or-create run under bounded retry for
// transient storage failures; conflicts surface immediately.
type Service interface {
	ListFortunes(ctx context.Context) ([]FortuneResponse, error)
	GetFortune(ctx context.Context, id int64) (*FortuneResponse, error)
	CreateFortune(ctx context.Context, req CreateFortuneRequest) (*FortuneResponse, error)
	PatchFortune(ctx context.Context, id int64, req PatchFortuneRequest) (*FortuneResponse, error)

	ListAuthors(ctx context.Context) ([]AuthorDetailResponse, error)
	GetAuthor(ctx context.Context, id int64) (*AuthorDetailResponse, error)
	PatchAuthor(ctx context.Context, id int64, req PatchAuthorRequest) (*AuthorDetailResponse, error)

	ListTags(ctx context.Context) ([]TagDetailResponse, error)
	GetTag(ctx context.Context, id int64) (*TagDetailResponse, error)
	PatchTag(ctx context.Context, id int64, req PatchTagRequest) (*TagDetailResponse, error)
}
