package service

import (
	"context"

	"fortunes-backend/internal/domains/fortune"
	"fortunes-backend/internal/shared/retry"
)

// fortuneService implements fortune.Service. Multi-entity writes (fortune
// create and patch resolve authors and tags via get-or-create) run under
// bounded retry: a retried attempt re-queries the related entities inside
// a fresh transaction, so retries cannot create duplicates. Conflicts are
// permanent and surface immediately.
type fortuneService struct {
	repo fortune.Repository
}

func NewFortuneService(repo fortune.Repository) fortune.Service {
	return &fortuneService{repo: repo}
}

// retryTransient wraps a write in the bounded exponential backoff.
func retryTransient(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, retry.DefaultAttempts, retry.DefaultBaseDelay, retry.Transient, fn)
}

// ========================================
// FORTUNES
// ========================================

func (s *fortuneService) ListFortunes(ctx context.Context) ([]fortune.FortuneResponse, error) {
	fortunes, err := s.repo.ListFortunes(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]fortune.FortuneResponse, 0, len(fortunes))
	for i := range fortunes {
		items = append(items, fortunes[i].ToResponse())
	}
	return items, nil
}

func (s *fortuneService) GetFortune(ctx context.Context, id int64) (*fortune.FortuneResponse, error) {
	f, err := s.repo.GetFortune(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := f.ToResponse()
	return &resp, nil
}

func (s *fortuneService) CreateFortune(ctx context.Context, req fortune.CreateFortuneRequest) (*fortune.FortuneResponse, error) {
	var f *fortune.Fortune
	err := retryTransient(ctx, func() error {
		var err error
		f, err = s.repo.CreateFortune(ctx, req.Content, req.Author, req.Tags)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := f.ToResponse()
	return &resp, nil
}

func (s *fortuneService) PatchFortune(ctx context.Context, id int64, req fortune.PatchFortuneRequest) (*fortune.FortuneResponse, error) {
	patch := fortune.FortunePatch{
		Author:  req.Author,
		Content: req.Content,
		Tags:    req.Tags,
	}
	var f *fortune.Fortune
	err := retryTransient(ctx, func() error {
		var err error
		f, err = s.repo.UpdateFortune(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := f.ToResponse()
	return &resp, nil
}

// ========================================
// AUTHORS
// ========================================

func (s *fortuneService) ListAuthors(ctx context.Context) ([]fortune.AuthorDetailResponse, error) {
	authors, err := s.repo.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]fortune.AuthorDetailResponse, 0, len(authors))
	for i := range authors {
		if err := s.loadAuthorFortunes(ctx, &authors[i]); err != nil {
			return nil, err
		}
		items = append(items, authors[i].ToDetailResponse())
	}
	return items, nil
}

func (s *fortuneService) GetAuthor(ctx context.Context, id int64) (*fortune.AuthorDetailResponse, error) {
	a, err := s.repo.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadAuthorFortunes(ctx, a); err != nil {
		return nil, err
	}
	resp := a.ToDetailResponse()
	return &resp, nil
}

func (s *fortuneService) PatchAuthor(ctx context.Context, id int64, req fortune.PatchAuthorRequest) (*fortune.AuthorDetailResponse, error) {
	a, err := s.repo.UpdateAuthor(ctx, id, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.loadAuthorFortunes(ctx, a); err != nil {
		return nil, err
	}
	resp := a.ToDetailResponse()
	return &resp, nil
}

// loadAuthorFortunes populates the reverse relation once, before shaping.
func (s *fortuneService) loadAuthorFortunes(ctx context.Context, a *fortune.Author) error {
	fortunes, err := s.repo.FortunesByAuthor(ctx, a.ID)
	if err != nil {
		return err
	}
	a.Fortunes = fortunes
	return nil
}

// ========================================
// TAGS
// ========================================

func (s *fortuneService) ListTags(ctx context.Context) ([]fortune.TagDetailResponse, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]fortune.TagDetailResponse, 0, len(tags))
	for i := range tags {
		if err := s.loadTagFortunes(ctx, &tags[i]); err != nil {
			return nil, err
		}
		items = append(items, tags[i].ToDetailResponse())
	}
	return items, nil
}

func (s *fortuneService) GetTag(ctx context.Context, id int64) (*fortune.TagDetailResponse, error) {
	t, err := s.repo.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadTagFortunes(ctx, t); err != nil {
		return nil, err
	}
	resp := t.ToDetailResponse()
	return &resp, nil
}

func (s *fortuneService) PatchTag(ctx context.Context, id int64, req fortune.PatchTagRequest) (*fortune.TagDetailResponse, error) {
	t, err := s.repo.UpdateTag(ctx, id, req.Tag)
	if err != nil {
		return nil, err
	}
	if err := s.loadTagFortunes(ctx, t); err != nil {
		return nil, err
	}
	resp := t.ToDetailResponse()
	return &resp, nil
}

func (s *fortuneService) loadTagFortunes(ctx context.Context, t *fortune.Tag) error {
	fortunes, err := s.repo.FortunesByTag(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Fortunes = fortunes
	return nil
}
