package fortune

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortunes-backend/pkg/tsid"
)

func strPtr(s string) *string { return &s }

func TestCreateFortuneRequestValidation(t *testing.T) {
	valid := CreateFortuneRequest{
		Author:  "Mark Twain",
		Tags:    []string{"wit"},
		Content: "Truth is stranger than fiction.",
	}
	assert.NoError(t, valid.Validate())

	noTags := valid
	noTags.Tags = nil
	assert.NoError(t, noTags.Validate())

	missingAuthor := valid
	missingAuthor.Author = ""
	assert.Error(t, missingAuthor.Validate())

	missingContent := valid
	missingContent.Content = ""
	assert.Error(t, missingContent.Validate())

	longAuthor := valid
	longAuthor.Author = strings.Repeat("a", MaxNameLength+1)
	assert.Error(t, longAuthor.Validate())

	longContent := valid
	longContent.Content = strings.Repeat("a", MaxContentLength+1)
	assert.Error(t, longContent.Validate())

	longTag := valid
	longTag.Tags = []string{strings.Repeat("a", MaxTagLength+1)}
	assert.Error(t, longTag.Validate())

	emptyTag := valid
	emptyTag.Tags = []string{""}
	assert.Error(t, emptyTag.Validate())
}

func TestPatchFortuneRequestRejectsEmptyPayload(t *testing.T) {
	err := PatchFortuneRequest{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all attributes are missing")
}

func TestPatchFortuneRequestSingleFieldSuffices(t *testing.T) {
	assert.NoError(t, PatchFortuneRequest{Author: strPtr("Mark Twain")}.Validate())
	assert.NoError(t, PatchFortuneRequest{Content: strPtr("new content")}.Validate())
	// Provided-but-empty tags means "detach all", which is a valid patch.
	assert.NoError(t, PatchFortuneRequest{Tags: []string{}}.Validate())
}

func TestPatchFortuneRequestFieldConstraints(t *testing.T) {
	assert.Error(t, PatchFortuneRequest{Author: strPtr("")}.Validate())
	assert.Error(t, PatchFortuneRequest{Author: strPtr(strings.Repeat("a", MaxNameLength+1))}.Validate())
	assert.Error(t, PatchFortuneRequest{Content: strPtr(strings.Repeat("a", MaxContentLength+1))}.Validate())
	assert.Error(t, PatchFortuneRequest{Tags: []string{strings.Repeat("a", MaxTagLength+1)}}.Validate())
}

func TestPatchAuthorAndTagRequestValidation(t *testing.T) {
	assert.NoError(t, PatchAuthorRequest{Name: "Mark Twain"}.Validate())
	assert.Error(t, PatchAuthorRequest{}.Validate())
	assert.Error(t, PatchAuthorRequest{Name: strings.Repeat("a", MaxNameLength+1)}.Validate())

	assert.NoError(t, PatchTagRequest{Tag: "wit"}.Validate())
	assert.Error(t, PatchTagRequest{}.Validate())
	assert.Error(t, PatchTagRequest{Tag: strings.Repeat("a", MaxTagLength+1)}.Validate())
}

func sampleFortune() *Fortune {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	author := &Author{ID: 1001, Name: "Mark Twain", CreatedAt: created}
	return &Fortune{
		ID:        2002,
		Content:   "Truth is stranger than fiction.",
		AuthorID:  author.ID,
		Author:    author,
		Tags:      []Tag{{ID: 3003, Value: "wit", CreatedAt: created}},
		CreatedAt: created,
	}
}

func TestFortuneToResponseShaping(t *testing.T) {
	f := sampleFortune()
	resp := f.ToResponse()

	assert.Equal(t, tsid.Encode(f.ID), resp.ID)
	assert.Len(t, resp.ID, 13)
	assert.Equal(t, f.Content, resp.Content)
	assert.Equal(t, "Mark Twain", resp.Author.Name)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "wit", resp.Tags[0].Tag)
}

func TestResponseOmitsAbsentUpdatedAt(t *testing.T) {
	f := sampleFortune()

	data, err := json.Marshal(f.ToResponse())
	require.NoError(t, err)
	body := string(data)
	assert.NotContains(t, body, "updated_at")
	assert.Contains(t, body, "created_at")

	updated := f.CreatedAt.Add(time.Minute)
	f.UpdatedAt = &updated
	data, err = json.Marshal(f.ToResponse())
	require.NoError(t, err)
	assert.Contains(t, string(data), "updated_at")
}

func TestAuthorDetailResponseOmitsBackReference(t *testing.T) {
	f := sampleFortune()
	author := *f.Author
	author.Fortunes = []Fortune{*f}

	resp := author.ToDetailResponse()
	require.Len(t, resp.Fortunes, 1)
	assert.Equal(t, f.Content, resp.Fortunes[0].Content)
	require.Len(t, resp.Fortunes[0].Tags, 1)

	// The embedded fortune must not carry its author back-reference.
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	embedded := decoded["fortunes"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, embedded, "author")
}

func TestTagDetailResponseOmitsBackReference(t *testing.T) {
	f := sampleFortune()
	tag := f.Tags[0]
	tag.Fortunes = []Fortune{*f}

	resp := tag.ToDetailResponse()
	require.Len(t, resp.Fortunes, 1)
	assert.Equal(t, "Mark Twain", resp.Fortunes[0].Author.Name)

	// The embedded fortune must not list its tags.
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	embedded := decoded["fortunes"].([]interface{})[0].(map[string]interface{})
	assert.NotContains(t, embedded, "tags")
}

func TestErrorStatusMapping(t *testing.T) {
	assert.Equal(t, 404, ToHTTPStatus(ErrFortuneNotFound))
	assert.Equal(t, 404, ToHTTPStatus(ErrAuthorNotFound))
	assert.Equal(t, 404, ToHTTPStatus(ErrTagNotFound))
	assert.Equal(t, 409, ToHTTPStatus(ErrFortuneExists))
	assert.Equal(t, 409, ToHTTPStatus(ErrAuthorExists))
	assert.Equal(t, 409, ToHTTPStatus(ErrTagExists))
	assert.Equal(t, 500, ToHTTPStatus(assert.AnError))
}
