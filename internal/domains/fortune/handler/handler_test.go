package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortunes-backend/internal/domains/fortune"
	"fortunes-backend/pkg/tsid"
)

// stubService cans one answer per operation; unset operations return the
// zero value so list endpoints still produce empty collections.
type stubService struct {
	fortuneResp *fortune.FortuneResponse
	authorResp  *fortune.AuthorDetailResponse
	tagResp     *fortune.TagDetailResponse
	fortunes    []fortune.FortuneResponse
	authors     []fortune.AuthorDetailResponse
	tags        []fortune.TagDetailResponse
	err         error

	createCalled bool
	patchCalled  bool
}

func (s *stubService) ListFortunes(ctx context.Context) ([]fortune.FortuneResponse, error) {
	return s.fortunes, s.err
}

func (s *stubService) GetFortune(ctx context.Context, id int64) (*fortune.FortuneResponse, error) {
	return s.fortuneResp, s.err
}

func (s *stubService) CreateFortune(ctx context.Context, req fortune.CreateFortuneRequest) (*fortune.FortuneResponse, error) {
	s.createCalled = true
	return s.fortuneResp, s.err
}

func (s *stubService) PatchFortune(ctx context.Context, id int64, req fortune.PatchFortuneRequest) (*fortune.FortuneResponse, error) {
	s.patchCalled = true
	return s.fortuneResp, s.err
}

func (s *stubService) ListAuthors(ctx context.Context) ([]fortune.AuthorDetailResponse, error) {
	return s.authors, s.err
}

func (s *stubService) GetAuthor(ctx context.Context, id int64) (*fortune.AuthorDetailResponse, error) {
	return s.authorResp, s.err
}

func (s *stubService) PatchAuthor(ctx context.Context, id int64, req fortune.PatchAuthorRequest) (*fortune.AuthorDetailResponse, error) {
	s.patchCalled = true
	return s.authorResp, s.err
}

func (s *stubService) ListTags(ctx context.Context) ([]fortune.TagDetailResponse, error) {
	return s.tags, s.err
}

func (s *stubService) GetTag(ctx context.Context, id int64) (*fortune.TagDetailResponse, error) {
	return s.tagResp, s.err
}

func (s *stubService) PatchTag(ctx context.Context, id int64, req fortune.PatchTagRequest) (*fortune.TagDetailResponse, error) {
	s.patchCalled = true
	return s.tagResp, s.err
}

func setupRouter(svc fortune.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")

	fortunes := NewFortuneHandler(svc)
	api.GET("/fortunes", fortunes.List)
	api.POST("/fortunes", fortunes.Create)
	api.GET("/fortunes/:id", fortunes.Get)
	api.PATCH("/fortunes/:id", fortunes.Patch)

	authors := NewAuthorHandler(svc)
	api.GET("/authors", authors.List)
	api.GET("/authors/:id", authors.Get)
	api.PATCH("/authors/:id", authors.Patch)

	tags := NewTagHandler(svc)
	api.GET("/tags", tags.List)
	api.GET("/tags/:id", tags.Get)
	api.PATCH("/tags/:id", tags.Patch)

	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleFortuneResponse() *fortune.FortuneResponse {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &fortune.FortuneResponse{
		ID:        tsid.Encode(2002),
		CreatedAt: created,
		Content:   "Truth is stranger than fiction.",
		Author: fortune.AuthorResponse{
			ID:        tsid.Encode(1001),
			CreatedAt: created,
			Name:      "Mark Twain",
		},
		Tags: []fortune.TagResponse{
			{ID: tsid.Encode(3003), CreatedAt: created, Tag: "wit"},
		},
	}
}

func validID() string { return tsid.Encode(2002) }

func TestListFortunesEmptyStore(t *testing.T) {
	router := setupRouter(&stubService{fortunes: []fortune.FortuneResponse{}})
	w := doRequest(router, http.MethodGet, "/api/fortunes", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items": []}`, w.Body.String())
}

func TestListCollectionsEmptyStore(t *testing.T) {
	router := setupRouter(&stubService{
		authors: []fortune.AuthorDetailResponse{},
		tags:    []fortune.TagDetailResponse{},
	})
	for _, path := range []string{"/api/authors", "/api/tags"} {
		w := doRequest(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{"items": []}`, w.Body.String(), path)
	}
}

func TestCreateFortuneShapesNestedResponse(t *testing.T) {
	svc := &stubService{fortuneResp: sampleFortuneResponse()}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodPost, "/api/fortunes",
		`{"author": "Mark Twain", "tags": ["wit"], "content": "Truth is stranger than fiction."}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.createCalled)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Len(t, body["id"], 13)
	assert.Equal(t, "Truth is stranger than fiction.", body["content"])
	assert.NotEmpty(t, body["created_at"])
	assert.NotContains(t, body, "updated_at")

	author := body["author"].(map[string]interface{})
	assert.Equal(t, "Mark Twain", author["name"])
	tags := body["tags"].([]interface{})
	require.Len(t, tags, 1)
	assert.Equal(t, "wit", tags[0].(map[string]interface{})["tag"])
}

func TestCreateFortuneDuplicateContentConflict(t *testing.T) {
	router := setupRouter(&stubService{err: fortune.ErrFortuneExists})
	w := doRequest(router, http.MethodPost, "/api/fortunes",
		`{"author": "Mark Twain", "content": "Truth is stranger than fiction."}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"detail": "fortune exists"}`, w.Body.String())
}

func TestCreateFortuneValidationRejectedBeforeService(t *testing.T) {
	svc := &stubService{}
	router := setupRouter(svc)

	longContent := strings.Repeat("a", fortune.MaxContentLength+1)
	w := doRequest(router, http.MethodPost, "/api/fortunes",
		`{"author": "Mark Twain", "content": "`+longContent+`"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, svc.createCalled, "validation failures must not reach the store")
	assert.Contains(t, w.Body.String(), "content")
}

func TestCreateFortuneMalformedBody(t *testing.T) {
	router := setupRouter(&stubService{})
	w := doRequest(router, http.MethodPost, "/api/fortunes", `{"author": `)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetFortuneInvalidID(t *testing.T) {
	router := setupRouter(&stubService{})
	for _, id := range []string{"abc", "0123456789!AB", strings.Repeat("Z", 13)} {
		w := doRequest(router, http.MethodGet, "/api/fortunes/"+id, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, id)
		assert.JSONEq(t, `{"detail": "invalid identifier"}`, w.Body.String())
	}
}

func TestGetFortuneNotFound(t *testing.T) {
	router := setupRouter(&stubService{err: fortune.ErrFortuneNotFound})
	w := doRequest(router, http.MethodGet, "/api/fortunes/"+validID(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail": "fortune not found"}`, w.Body.String())
}

func TestPatchFortuneEmptyPayload(t *testing.T) {
	svc := &stubService{}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodPatch, "/api/fortunes/"+validID(), `{}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "all attributes are missing")
	assert.False(t, svc.patchCalled)
}

func TestPatchFortuneNotFound(t *testing.T) {
	router := setupRouter(&stubService{err: fortune.ErrFortuneNotFound})
	w := doRequest(router, http.MethodPatch, "/api/fortunes/"+validID(),
		`{"content": "new content"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail": "fortune not found"}`, w.Body.String())
}

func TestPatchFortuneDetachAllTags(t *testing.T) {
	resp := sampleFortuneResponse()
	resp.Tags = []fortune.TagResponse{}
	updated := resp.CreatedAt.Add(time.Minute)
	resp.UpdatedAt = &updated

	router := setupRouter(&stubService{fortuneResp: resp})
	w := doRequest(router, http.MethodPatch, "/api/fortunes/"+validID(), `{"tags": []}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body["tags"])
	assert.NotEmpty(t, body["updated_at"])
}

func TestPatchAuthorValidationAndNotFound(t *testing.T) {
	svc := &stubService{err: fortune.ErrAuthorNotFound}
	router := setupRouter(svc)

	w := doRequest(router, http.MethodPatch, "/api/authors/"+validID(), `{"name": ""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, svc.patchCalled)

	w = doRequest(router, http.MethodPatch, "/api/authors/"+validID(), `{"name": "Mark Twain"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail": "author not found"}`, w.Body.String())
}

func TestPatchTagConflict(t *testing.T) {
	router := setupRouter(&stubService{err: fortune.ErrTagExists})
	w := doRequest(router, http.MethodPatch, "/api/tags/"+validID(), `{"tag": "wit"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"detail": "tag exists"}`, w.Body.String())
}

func TestUnexpectedErrorsDoNotLeakDetails(t *testing.T) {
	router := setupRouter(&stubService{err: assert.AnError})
	w := doRequest(router, http.MethodGet, "/api/fortunes/"+validID(), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "internal server error"}`, w.Body.String())
}
