package book

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bookcatalog/internal/apperr"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/testutil"
)

func newTestRouter(scope Scope, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	NewHTTPHandler(scope).Routes(mux, "", httpx.NewErrorHandler(log))
	return mux
}

var validBody = map[string]any{
	"title":          "Structure and Interpretation of Computer Programs",
	"author":         "Harold Abelson",
	"publisher":      "MIT Press",
	"published_date": "1985",
	"page_count":     657,
	"language":       "en",
}

func TestHTTPHandler_Lifecycle(t *testing.T) {
	router := newTestRouter(NewStaticScope(NewMemoryRepo()), zap.NewNop())

	resp := testutil.Serve(router, testutil.NewRequest(http.MethodPost, "/books", validBody))
	require.Equal(t, http.StatusCreated, resp.Code)
	var created Book
	require.NoError(t, testutil.DecodeInto(resp, &created))
	_, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, validBody["title"], created.Title)

	resp = testutil.Serve(router, testutil.NewRequest(http.MethodGet, "/books/"+created.ID, nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var fetched Book
	require.NoError(t, testutil.DecodeInto(resp, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, created.Author, fetched.Author)
	assert.Equal(t, created.Publisher, fetched.Publisher)
	assert.Equal(t, created.PublishedDate, fetched.PublishedDate)
	assert.Equal(t, created.PageCount, fetched.PageCount)
	assert.Equal(t, created.Language, fetched.Language)
	assert.True(t, created.CreatedAt.Equal(fetched.CreatedAt))

	resp = testutil.Serve(router, testutil.NewRequest(http.MethodDelete, "/books/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = testutil.Serve(router, testutil.NewRequest(http.MethodGet, "/books/"+created.ID, nil))
	testutil.AssertErrorEnvelope(t, resp, http.StatusNotFound)

	resp = testutil.Serve(router, testutil.NewRequest(http.MethodDelete, "/books/"+created.ID, nil))
	testutil.AssertErrorEnvelope(t, resp, http.StatusNotFound)
}

func TestHTTPHandler_List(t *testing.T) {
	router := newTestRouter(NewStaticScope(NewMemoryRepo()), zap.NewNop())

	resp := testutil.Serve(router, testutil.NewRequest(http.MethodGet, "/books", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", string(resp.Raw))

	for i := 0; i < 3; i++ {
		resp = testutil.Serve(router, testutil.NewRequest(http.MethodPost, "/books", validBody))
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	resp = testutil.Serve(router, testutil.NewRequest(http.MethodGet, "/books", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var books []Book
	require.NoError(t, testutil.DecodeInto(resp, &books))
	assert.Len(t, books, 3)
}

func TestHTTPHandler_Create(t *testing.T) {
	router := newTestRouter(NewStaticScope(NewMemoryRepo()), zap.NewNop())

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{name: "valid", body: validBody, expectedStatus: http.StatusCreated},
		{name: "three character title", body: map[string]any{"title": "ABC"}, expectedStatus: http.StatusCreated},
		{name: "two character title", body: map[string]any{"title": "AB"}, expectedStatus: http.StatusBadRequest},
		{name: "padded short title", body: map[string]any{"title": "  AB  "}, expectedStatus: http.StatusBadRequest},
		{name: "missing title", body: map[string]any{"author": "Nobody"}, expectedStatus: http.StatusBadRequest},
		{name: "negative page count", body: map[string]any{"title": "Dune", "page_count": -1}, expectedStatus: http.StatusBadRequest},
		{name: "page count at column maximum", body: map[string]any{"title": "Dune", "page_count": 2147483647}, expectedStatus: http.StatusCreated},
		{name: "page count beyond column range", body: map[string]any{"title": "Dune", "page_count": 3000000000}, expectedStatus: http.StatusBadRequest},
		{name: "NUL in title", body: map[string]any{"title": "AB\x00"}, expectedStatus: http.StatusBadRequest},
		{name: "NUL in author", body: map[string]any{"title": "Dune", "author": "Frank\x00"}, expectedStatus: http.StatusBadRequest},
		{name: "trailing json value", body: `{"title": "Dune"} {"junk": true}`, expectedStatus: http.StatusBadRequest},
		{name: "trailing whitespace", body: "{\"title\": \"Dune\"}\n", expectedStatus: http.StatusCreated},
		{name: "unknown field", body: map[string]any{"title": "Dune", "isbn": "123"}, expectedStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"title": "Dune"`, expectedStatus: http.StatusBadRequest},
		{name: "empty body", body: nil, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Serve(router, testutil.NewRequest(http.MethodPost, "/books", tt.body))

			if tt.expectedStatus >= 400 {
				testutil.AssertErrorEnvelope(t, resp, tt.expectedStatus)
				return
			}
			assert.Equal(t, tt.expectedStatus, resp.Code)
		})
	}
}

func TestHTTPHandler_Update(t *testing.T) {
	repo := NewMemoryRepo()
	router := newTestRouter(NewStaticScope(repo), zap.NewNop())
	original, err := repo.Create(context.Background(), CreateInput{
		Title: "Original Title", Author: "Old Author", Publisher: "Pub", PageCount: 10, Language: "en",
	})
	require.NoError(t, err)

	t.Run("patch changes only the given field", func(t *testing.T) {
		resp := testutil.Serve(router, testutil.NewRequest(http.MethodPatch, "/books/"+original.ID, map[string]any{"author": "New Author"}))
		require.Equal(t, http.StatusOK, resp.Code)

		var updated Book
		require.NoError(t, testutil.DecodeInto(resp, &updated))
		assert.Equal(t, "New Author", updated.Author)
		assert.Equal(t, original.Title, updated.Title)
		assert.Equal(t, original.Publisher, updated.Publisher)
		assert.Equal(t, original.PageCount, updated.PageCount)
		assert.Equal(t, original.Language, updated.Language)
		assert.True(t, original.CreatedAt.Equal(updated.CreatedAt))
		assert.False(t, updated.UpdatedAt.Before(original.UpdatedAt))
	})

	t.Run("put accepts partial body", func(t *testing.T) {
		resp := testutil.Serve(router, testutil.NewRequest(http.MethodPut, "/books/"+original.ID, map[string]any{"page_count": 0}))
		require.Equal(t, http.StatusOK, resp.Code)

		var updated Book
		require.NoError(t, testutil.DecodeInto(resp, &updated))
		assert.Equal(t, 0, updated.PageCount)
		assert.Equal(t, "New Author", updated.Author)
	})

	t.Run("null field is ignored", func(t *testing.T) {
		resp := testutil.Serve(router, testutil.NewRequest(http.MethodPatch, "/books/"+original.ID, `{"title": null}`))
		require.Equal(t, http.StatusOK, resp.Code)

		var updated Book
		require.NoError(t, testutil.DecodeInto(resp, &updated))
		assert.Equal(t, original.Title, updated.Title)
	})

	t.Run("short title", func(t *testing.T) {
		resp := testutil.Serve(router, testutil.NewRequest(http.MethodPatch, "/books/"+original.ID, map[string]any{"title": "AB"}))
		testutil.AssertErrorEnvelope(t, resp, http.StatusBadRequest)
	})

	t.Run("page count beyond column range", func(t *testing.T) {
		resp := testutil.Serve(router, testutil.NewRequest(http.MethodPatch, "/books/"+original.ID, map[string]any{"page_count": 3000000000}))
		testutil.AssertErrorEnvelope(t, resp, http.StatusBadRequest)
	})

	t.Run("NUL in language", func(t *testing.T) {
		resp := testutil.Serve(router, testutil.NewRequest(http.MethodPatch, "/books/"+original.ID, map[string]any{"language": "e\x00n"}))
		testutil.AssertErrorEnvelope(t, resp, http.StatusBadRequest)
	})

	t.Run("missing book", func(t *testing.T) {
		resp := testutil.Serve(router, testutil.NewRequest(http.MethodPatch, "/books/"+uuid.NewString(), map[string]any{"author": "X"}))
		testutil.AssertErrorEnvelope(t, resp, http.StatusNotFound)
	})
}

func TestHTTPHandler_InternalFailureIsNotLeaked(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	core, logs := observer.New(zapcore.ErrorLevel)
	router := newTestRouter(NewStaticScope(mockRepo), zap.New(core))

	const secret = "password authentication failed for user \"catalog\""

	tests := []struct {
		name      string
		setupMock func()
		request   *http.Request
	}{
		{
			name: "list",
			setupMock: func() {
				mockRepo.EXPECT().List(gomock.Any()).Return(nil, apperr.Persistence("list books", errors.New(secret)))
			},
			request: testutil.NewRequest(http.MethodGet, "/books", nil),
		},
		{
			name: "get",
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), testBookID).Return(Book{}, false, errors.New(secret))
			},
			request: testutil.NewRequest(http.MethodGet, "/books/"+testBookID, nil),
		},
		{
			name: "create",
			setupMock: func() {
				mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(Book{}, apperr.Persistence("create book", errors.New(secret)))
			},
			request: testutil.NewRequest(http.MethodPost, "/books", validBody),
		},
		{
			name: "update",
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), testBookID).Return(testBook, true, nil)
				mockRepo.EXPECT().Update(gomock.Any(), testBookID, gomock.Any()).Return(Book{}, false, errors.New(secret))
			},
			request: testutil.NewRequest(http.MethodPatch, "/books/"+testBookID, map[string]any{"author": "Someone Else"}),
		},
		{
			name: "delete",
			setupMock: func() {
				mockRepo.EXPECT().Get(gomock.Any(), testBookID).Return(testBook, true, nil)
				mockRepo.EXPECT().Delete(gomock.Any(), testBookID).Return(false, errors.New(secret))
			},
			request: testutil.NewRequest(http.MethodDelete, "/books/"+testBookID, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			before := logs.Len()

			resp := testutil.Serve(router, tt.request)

			testutil.AssertErrorEnvelope(t, resp, http.StatusInternalServerError)
			assert.Equal(t, httpx.InternalErrorMessage, resp.Body["message"])
			assert.False(t, strings.Contains(string(resp.Raw), "password"))
			assert.Equal(t, before+1, logs.Len())
		})
	}
}

func TestHTTPHandler_ScopeReleasedOnEveryPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	mockScope := NewMockScope(ctrl)
	router := newTestRouter(mockScope, zap.NewNop())

	released := 0
	release := func() { released++ }
	mockScope.EXPECT().Open(gomock.Any()).Return(NewService(mockRepo), release, nil).Times(2)

	mockRepo.EXPECT().Get(gomock.Any(), testBookID).Return(testBook, true, nil)
	resp := testutil.Serve(router, testutil.NewRequest(http.MethodGet, "/books/"+testBookID, nil))
	assert.Equal(t, http.StatusOK, resp.Code)

	mockRepo.EXPECT().Get(gomock.Any(), testBookID).Return(Book{}, false, nil)
	resp = testutil.Serve(router, testutil.NewRequest(http.MethodGet, "/books/"+testBookID, nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	assert.Equal(t, 2, released)
}

func TestHTTPHandler_ScopeOpenFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockScope := NewMockScope(ctrl)
	router := newTestRouter(mockScope, zap.NewNop())

	mockScope.EXPECT().Open(gomock.Any()).Return(nil, nil, apperr.Persistence("acquire connection", errors.New("pool closed")))

	resp := testutil.Serve(router, testutil.NewRequest(http.MethodGet, "/books", nil))

	testutil.AssertErrorEnvelope(t, resp, http.StatusInternalServerError)
	assert.Equal(t, httpx.InternalErrorMessage, resp.Body["message"])
}
