package fortune

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"fortunes-backend/pkg/tsid"
)

// Field constraints shared by create and patch payloads.
const (
	MaxNameLength    = 128
	MaxTagLength     = 32
	MaxContentLength = 512
)

// ========================================
// REQUEST DTOs
// ========================================

type CreateFortuneRequest struct {
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

func (r CreateFortuneRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&r.Tags,
			validation.Each(validation.Required, validation.Length(1, MaxTagLength)),
		),
		validation.Field(&r.Content,
			validation.Required.Error("content is required"),
			validation.Length(1, MaxContentLength),
		),
	)
}

// PatchFortuneRequest is a partial update: nil means "leave untouched".
// Tags distinguishes absent (nil) from provided-empty (detach all tags).
type PatchFortuneRequest struct {
	Author  *string  `json:"author"`
	Tags    []string `json:"tags"`
	Content *string  `json:"content"`
}

func (r PatchFortuneRequest) Validate() error {
	if r.Author == nil && r.Tags == nil && r.Content == nil {
		return validation.NewError("validation_required", "all attributes are missing")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Author, validation.NilOrNotEmpty, validation.Length(1, MaxNameLength)),
		validation.Field(&r.Tags,
			validation.Each(validation.Required, validation.Length(1, MaxTagLength)),
		),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.Length(1, MaxContentLength)),
	)
}

type PatchAuthorRequest struct {
	Name string `json:"name"`
}

func (r PatchAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
	)
}

type PatchTagRequest struct {
	Tag string `json:"tag"`
}

func (r PatchTagRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Tag,
			validation.Required.Error("tag is required"),
			validation.Length(1, MaxTagLength),
		),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================
//
// Relation depth is bounded by construction: a fortune embeds its author
// and tags without their fortunes; author and tag detail views embed
// fortunes without the back-reference. Absent updated_at is omitted.

type AuthorResponse struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Name      string     `json:"name"`
}

type TagResponse struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Tag       string     `json:"tag"`
}

type FortuneResponse struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
	Content   string         `json:"content"`
	Author    AuthorResponse `json:"author"`
	Tags      []TagResponse  `json:"tags"`
}

type FortuneWithoutAuthorResponse struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
	Content   string        `json:"content"`
	Tags      []TagResponse `json:"tags"`
}

type FortuneWithoutTagsResponse struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
	Content   string         `json:"content"`
	Author    AuthorResponse `json:"author"`
}

type AuthorDetailResponse struct {
	ID        string                         `json:"id"`
	CreatedAt time.Time                      `json:"created_at"`
	UpdatedAt *time.Time                     `json:"updated_at,omitempty"`
	Name      string                         `json:"name"`
	Fortunes  []FortuneWithoutAuthorResponse `json:"fortunes"`
}

type TagDetailResponse struct {
	ID        string                       `json:"id"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt *time.Time                   `json:"updated_at,omitempty"`
	Tag       string                       `json:"tag"`
	Fortunes  []FortuneWithoutTagsResponse `json:"fortunes"`
}

func (a *Author) ToResponse() AuthorResponse {
	return AuthorResponse{
		ID:        tsid.Encode(a.ID),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Name:      a.Name,
	}
}

// ToDetailResponse shapes an author with its fortunes. The caller must
// have loaded the reverse relation first.
func (a *Author) ToDetailResponse() AuthorDetailResponse {
	fortunes := make([]FortuneWithoutAuthorResponse, 0, len(a.Fortunes))
	for i := range a.Fortunes {
		f := &a.Fortunes[i]
		fortunes = append(fortunes, FortuneWithoutAuthorResponse{
			ID:        tsid.Encode(f.ID),
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
			Content:   f.Content,
			Tags:      tagResponses(f.Tags),
		})
	}
	return AuthorDetailResponse{
		ID:        tsid.Encode(a.ID),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Name:      a.Name,
		Fortunes:  fortunes,
	}
}

func (t *Tag) ToResponse() TagResponse {
	return TagResponse{
		ID:        tsid.Encode(t.ID),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Tag:       t.Value,
	}
}

// ToDetailResponse shapes a tag with its fortunes. The caller must have
// loaded the reverse relation first.
func (t *Tag) ToDetailResponse() TagDetailResponse {
	fortunes := make([]FortuneWithoutTagsResponse, 0, len(t.Fortunes))
	for i := range t.Fortunes {
		f := &t.Fortunes[i]
		fortunes = append(fortunes, FortuneWithoutTagsResponse{
			ID:        tsid.Encode(f.ID),
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
			Content:   f.Content,
			Author:    f.Author.ToResponse(),
		})
	}
	return TagDetailResponse{
		ID:        tsid.Encode(t.ID),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Tag:       t.Value,
		Fortunes:  fortunes,
	}
}

func (f *Fortune) ToResponse() FortuneResponse {
	return FortuneResponse{
		ID:        tsid.Encode(f.ID),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		Content:   f.Content,
		Author:    f.Author.ToResponse(),
		Tags:      tagResponses(f.Tags),
	}
}

func tagResponses(tags []Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, tags[i].ToResponse())
	}
	return out
}
