package feeds

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	feedErrors "github.com/qolzam/telar/apps/feeds/feeds/errors"
	"github.com/qolzam/telar/apps/feeds/feeds/handlers"
	"github.com/qolzam/telar/apps/feeds/feeds/models"
	"github.com/qolzam/telar/apps/feeds/feeds/services"
	"github.com/qolzam/telar/apps/feeds/internal/cache"
	"github.com/qolzam/telar/apps/feeds/internal/middleware/requestid"
	"github.com/qolzam/telar/apps/feeds/internal/platform/config"
	"github.com/qolzam/telar/apps/feeds/internal/testutil"
	"github.com/qolzam/telar/apps/feeds/internal/types"
)

type routeFixture struct {
	app     *fiber.App
	service *services.MockFeedService
	userID  uuid.UUID
	token   string
}

func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()

	pubPEM, privPEM := testutil.GenerateECDSAKeyPairPEM(t)
	userID := uuid.Must(uuid.NewV4())

	service := new(services.MockFeedService)
	app := fiber.New()
	app.Use(requestid.New())
	RegisterRoutes(app, &FeedsHandlers{FeedHandler: handlers.NewFeedHandler(service)}, &config.Config{
		JWT: config.JWTConfig{PublicKey: pubPEM},
	})

	return &routeFixture{
		app:     app,
		service: service,
		userID:  userID,
		token:   testutil.MintToken(t, privPEM, userID),
	}
}

func (f *routeFixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(types.HeaderAuthorization, testutil.BearerHeader(f.token))
	if body != "" {
		req.Header.Set(types.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var payload feedErrors.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.Code
}

func TestFeedRoutes_Auth(t *testing.T) {
	f := newRouteFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/feeds", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.service.AssertNotCalled(t, "GetAllFeeds", mock.Anything)
}

func TestFeedRoutes_Health(t *testing.T) {
	f := newRouteFixture(t)
	f.service.On("Ping", mock.Anything).Return(nil).Once()
	f.service.On("CacheStats", mock.Anything).Return(&cache.CacheStats{Hits: 3, Misses: 1, HitRatio: 0.75, Keys: 2}).Once()

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestid.HeaderRequestID))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","cache":{"hits":3,"misses":1,"hit_ratio":0.75,"keys":2,"evictions":0}}`, string(body))

	f.service.On("Ping", mock.Anything).Return(nil).Once()
	f.service.On("CacheStats", mock.Anything).Return(nil).Once()
	resp, body = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	f.service.On("Ping", mock.Anything).Return(feedErrors.ErrPersistence).Once()
	resp, err = f.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFeedRoutes_CreateFeed(t *testing.T) {
	f := newRouteFixture(t)
	feedID := uuid.Must(uuid.NewV4())

	f.service.On("CreateFeed", mock.Anything, f.userID, &models.CreateFeedRequest{
		Description: "hello",
		Images:      []string{"a.jpg", "b.jpg"},
	}).Return(feedID, nil)

	resp, body := f.do(t, http.MethodPost, "/feeds", `{"description":"hello","images":["a.jpg","b.jpg"]}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.CreateFeedResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, feedID.String(), created.ObjectId)

	resp, body = f.do(t, http.MethodPost, "/feeds", `{"description":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, feedErrors.CodeValidationFailed, errorCode(t, body))
}

func TestFeedRoutes_QueryFeeds(t *testing.T) {
	f := newRouteFixture(t)
	owner := uuid.Must(uuid.NewV4())
	feed := &models.Feed{ObjectId: uuid.Must(uuid.NewV4()), OwnerUserId: owner, Description: "hello"}

	f.service.On("GetAllFeeds", mock.Anything).Return([]*models.Feed{feed}, nil).Once()
	f.service.On("QueryFeeds", mock.Anything, mock.MatchedBy(func(filter *models.FeedQueryFilter) bool {
		return filter.OwnerUserId != nil && *filter.OwnerUserId == owner
	})).Return([]*models.Feed{}, nil).Once()

	resp, body := f.do(t, http.MethodGet, "/feeds", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var feeds []models.FeedResponse
	require.NoError(t, json.Unmarshal(body, &feeds))
	require.Len(t, feeds, 1)
	assert.Equal(t, "hello", feeds[0].Description)

	resp, body = f.do(t, http.MethodGet, "/feeds?owner="+owner.String(), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = f.do(t, http.MethodGet, "/feeds?owner=nobody", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	f.service.AssertExpectations(t)
}

func TestFeedRoutes_ErrorMapping(t *testing.T) {
	feedID := uuid.Must(uuid.NewV4()).String()

	tests := []struct {
		name   string
		setup  func(f *routeFixture)
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{
			name: "get missing feed",
			setup: func(f *routeFixture) {
				f.service.On("GetFeed", mock.Anything, feedID).Return(nil, feedErrors.ErrFeedNotFound)
			},
			method: http.MethodGet, path: "/feeds/" + feedID,
			status: http.StatusNotFound, code: feedErrors.CodeFeedNotFound,
		},
		{
			name:   "malformed feed id",
			setup:  func(f *routeFixture) {},
			method: http.MethodGet, path: "/feeds/not-a-uuid",
			status: http.StatusNotFound, code: feedErrors.CodeFeedNotFound,
		},
		{
			name: "update by non-owner",
			setup: func(f *routeFixture) {
				f.service.On("UpdateFeed", mock.Anything, feedID, f.userID, "x").Return(nil, feedErrors.ErrPermissionDenied)
			},
			method: http.MethodPut, path: "/feeds/" + feedID, body: `{"description":"x"}`,
			status: http.StatusForbidden, code: feedErrors.CodePermissionDenied,
		},
		{
			name: "delete last image",
			setup: func(f *routeFixture) {
				f.service.On("DeleteFeedImage", mock.Anything, f.userID, feedID, mock.Anything).Return(feedErrors.ErrLastImage)
			},
			method: http.MethodDelete, path: "/feeds/" + feedID + "/images/" + uuid.Must(uuid.NewV4()).String(),
			status: http.StatusConflict, code: feedErrors.CodeInvariantViolation,
		},
		{
			name:   "malformed image id",
			setup:  func(f *routeFixture) {},
			method: http.MethodDelete, path: "/feeds/" + feedID + "/images/a.jpg",
			status: http.StatusNotFound, code: feedErrors.CodeImageNotFound,
		},
		{
			name: "double like",
			setup: func(f *routeFixture) {
				f.service.On("LikeFeed", mock.Anything, f.userID, feedID).Return(feedErrors.ErrAlreadyLiked)
			},
			method: http.MethodPost, path: "/feeds/" + feedID + "/likes",
			status: http.StatusConflict, code: feedErrors.CodeAlreadyLiked,
		},
		{
			name: "double unlike",
			setup: func(f *routeFixture) {
				f.service.On("UnlikeFeed", mock.Anything, f.userID, feedID).Return(feedErrors.ErrNotLiked)
			},
			method: http.MethodDelete, path: "/feeds/" + feedID + "/likes",
			status: http.StatusConflict, code: feedErrors.CodeNotLiked,
		},
		{
			name: "store unavailable",
			setup: func(f *routeFixture) {
				f.service.On("GetCommentCount", mock.Anything, feedID).
					Return(int64(0), feedErrors.NewPersistenceError("getCommentCount", io.ErrUnexpectedEOF))
			},
			method: http.MethodGet, path: "/feeds/" + feedID + "/comments/count",
			status: http.StatusServiceUnavailable, code: feedErrors.CodePersistenceError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouteFixture(t)
			tt.setup(f)

			resp, body := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, body))

			var payload feedErrors.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &payload))
			assert.NotEmpty(t, payload.RequestID)
			assert.Equal(t, resp.Header.Get(requestid.HeaderRequestID), payload.RequestID)
		})
	}
}

func TestFeedRoutes_Success(t *testing.T) {
	f := newRouteFixture(t)
	feedID := uuid.Must(uuid.NewV4()).String()
	imageID := uuid.Must(uuid.NewV4())

	f.service.On("DeleteFeed", mock.Anything, feedID, f.userID).Return(nil)
	f.service.On("LikeFeed", mock.Anything, f.userID, feedID).Return(nil)
	f.service.On("UnlikeFeed", mock.Anything, f.userID, feedID).Return(nil)
	f.service.On("CheckLikeStatus", mock.Anything, f.userID, feedID).Return(true, nil)
	f.service.On("GetLikeCount", mock.Anything, feedID).Return(int64(5), nil)
	f.service.On("AddFeedImages", mock.Anything, f.userID, feedID, []string{"c.jpg"}).
		Return([]models.FeedImage{{ObjectId: imageID, URL: "c.jpg", Position: 2}}, nil)
	f.service.On("UpdateFeedImage", mock.Anything, f.userID, feedID, imageID.String(), "d.jpg").
		Return(&models.FeedImage{ObjectId: imageID, URL: "d.jpg", Position: 2}, nil)

	resp, _ := f.do(t, http.MethodDelete, "/feeds/"+feedID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/feeds/"+feedID+"/likes", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/feeds/"+feedID+"/likes", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := f.do(t, http.MethodGet, "/feeds/"+feedID+"/likes/me", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"feedId":"`+feedID+`","liked":true}`, string(body))

	resp, body = f.do(t, http.MethodGet, "/feeds/"+feedID+"/likes/count", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"feedId":"`+feedID+`","count":5}`, string(body))

	resp, body = f.do(t, http.MethodPost, "/feeds/"+feedID+"/images", `{"images":["c.jpg"]}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(body), "c.jpg")

	resp, body = f.do(t, http.MethodPut, "/feeds/"+feedID+"/images/"+imageID.String(), `{"url":"d.jpg"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "d.jpg")

	f.service.AssertExpectations(t)
}

func TestFeedRoutes_NormalizesFeedID(t *testing.T) {
	f := newRouteFixture(t)
	feedID := uuid.Must(uuid.NewV4()).String()
	upper := strings.ToUpper(feedID)

	f.service.On("LikeFeed", mock.Anything, f.userID, upper).Return(nil)
	f.service.On("CheckLikeStatus", mock.Anything, f.userID, upper).Return(false, nil)
	f.service.On("GetLikeCount", mock.Anything, upper).Return(int64(2), nil)
	f.service.On("GetCommentCount", mock.Anything, upper).Return(int64(7), nil)

	resp, body := f.do(t, http.MethodPost, "/feeds/"+upper+"/likes", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"feedId":"`+feedID+`","liked":true}`, string(body))

	resp, body = f.do(t, http.MethodGet, "/feeds/"+upper+"/likes/me", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"feedId":"`+feedID+`","liked":false}`, string(body))

	resp, body = f.do(t, http.MethodGet, "/feeds/"+upper+"/likes/count", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"feedId":"`+feedID+`","count":2}`, string(body))

	resp, body = f.do(t, http.MethodGet, "/feeds/"+upper+"/comments/count", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"feedId":"`+feedID+`","count":7}`, string(body))

	f.service.AssertExpectations(t)
}
