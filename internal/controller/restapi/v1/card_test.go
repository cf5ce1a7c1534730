package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/andreyxaxa/Print-Detection/pkg/logger"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeCards struct {
	card    *entity.Card
	cardErr error

	listCards  []*entity.Card
	listCursor string
	listErr    error

	image    []byte
	imageErr error

	gotReplaceCardID string
}

func (f *fakeCards) Create(ctx context.Context, data []byte, contentType string, size int64) (*entity.Card, error) {
	if f.cardErr != nil {
		return nil, f.cardErr
	}
	return f.card, nil
}

func (f *fakeCards) Replace(ctx context.Context, cardID string, data []byte, contentType string, size int64) (*entity.Card, error) {
	f.gotReplaceCardID = cardID
	if f.cardErr != nil {
		return nil, f.cardErr
	}
	return f.card, nil
}

func (f *fakeCards) Get(ctx context.Context, cardID string) (*entity.Card, error) {
	if f.cardErr != nil {
		return nil, f.cardErr
	}
	return f.card, nil
}

func (f *fakeCards) List(ctx context.Context, limit int, cursor string) ([]*entity.Card, string, error) {
	if f.listErr != nil {
		return nil, "", f.listErr
	}
	return f.listCards, f.listCursor, nil
}

func (f *fakeCards) DownloadDetectedImage(ctx context.Context, cardID string) (io.ReadCloser, string, error) {
	if f.imageErr != nil {
		return nil, "", f.imageErr
	}
	return io.NopCloser(bytes.NewReader(f.image)), "image/jpeg", nil
}

func (f *fakeCards) GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeCards) MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	return nil
}
func (f *fakeCards) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	return nil
}
func (f *fakeCards) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	return nil
}
func (f *fakeCards) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error { return nil }
func (f *fakeCards) CleanupOutbox(ctx context.Context) error                          { return nil }

type fakeKeys struct {
	key      *entity.AccessKey
	issueErr error

	verifyOK  bool
	verifyErr error

	gotAPIKey string
	gotTTL    time.Duration
}

func (f *fakeKeys) Issue(ctx context.Context, cardID string, ttl time.Duration) (*entity.AccessKey, error) {
	f.gotTTL = ttl
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return f.key, nil
}

func (f *fakeKeys) Verify(ctx context.Context, apiKey, cardID string) (bool, error) {
	f.gotAPIKey = apiKey
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return f.verifyOK, nil
}

func (f *fakeKeys) MarkUsed(ctx context.Context, apiKey string) error { return nil }

// --- helpers ---

const testMaxUploadSize = 1024

func newTestApp(t *testing.T, cards *fakeCards, keys *fakeKeys) *fiber.App {
	t.Helper()

	app := fiber.New()
	NewCardRoutes(app.Group("/v1"), cards, keys, Options{
		KeyTTL:        60 * time.Second,
		MaxUploadSize: testMaxUploadSize,
	}, logger.New("error"))

	return app
}

func multipartUpload(t *testing.T, contentType string, data []byte) (io.Reader, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="print.jpg"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func testCard() *entity.Card {
	return &entity.Card{
		CardID:           "abc12345",
		DetectedImageURL: "/v1/cards/abc12345/image",
		Status:           entity.StatusGood,
		Scores:           entity.Scores{"crack": 0.12},
		UpdatedAt:        time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		Model:            "yolov8n-print",
	}
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	resp.Body.Close()
}

// --- tests ---

func TestCreateCard(t *testing.T) {
	cards := &fakeCards{card: testCard()}
	app := newTestApp(t, cards, &fakeKeys{})

	body, contentType := multipartUpload(t, "image/jpeg", []byte("raw-image"))
	req := httptest.NewRequest(http.MethodPost, "/v1/cards", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got map[string]interface{}
	decodeBody(t, resp, &got)
	assert.Equal(t, "abc12345", got["card_id"])
	assert.Equal(t, "GOOD", got["status"])
	assert.Equal(t, "/v1/cards/abc12345/image", got["detected_image_url"])
}

func TestCreateCard_Validation(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		data        []byte
	}{
		{"unsupported content type", "image/gif", []byte("gif-bytes")},
		{"empty file", "image/jpeg", nil},
		{"over the size limit", "image/jpeg", bytes.Repeat([]byte("x"), testMaxUploadSize+1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &fakeCards{card: testCard()}, &fakeKeys{})

			body, contentType := multipartUpload(t, tc.contentType, tc.data)
			req := httptest.NewRequest(http.MethodPost, "/v1/cards", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateCard_SizeBoundaryInclusive(t *testing.T) {
	app := newTestApp(t, &fakeCards{card: testCard()}, &fakeKeys{})

	body, contentType := multipartUpload(t, "image/png", bytes.Repeat([]byte("x"), testMaxUploadSize))
	req := httptest.NewRequest(http.MethodPost, "/v1/cards", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "a file of exactly the maximum size is accepted")
}

func TestCreateCard_MissingFile(t *testing.T) {
	app := newTestApp(t, &fakeCards{card: testCard()}, &fakeKeys{})

	req := httptest.NewRequest(http.MethodPost, "/v1/cards", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReplaceCard(t *testing.T) {
	cards := &fakeCards{card: testCard()}
	keys := &fakeKeys{verifyOK: true}
	app := newTestApp(t, cards, keys)

	body, contentType := multipartUpload(t, "image/jpeg", []byte("new-image"))
	req := httptest.NewRequest(http.MethodPost, "/v1/cards/abc12345/replace", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", "deadbeef")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "deadbeef", keys.gotAPIKey)
	assert.Equal(t, "abc12345", cards.gotReplaceCardID)
}

func TestReplaceCard_MissingKey(t *testing.T) {
	app := newTestApp(t, &fakeCards{card: testCard()}, &fakeKeys{verifyOK: true})

	body, contentType := multipartUpload(t, "image/jpeg", []byte("new-image"))
	req := httptest.NewRequest(http.MethodPost, "/v1/cards/abc12345/replace", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReplaceCard_InvalidKey(t *testing.T) {
	cards := &fakeCards{card: testCard()}
	app := newTestApp(t, cards, &fakeKeys{verifyOK: false})

	body, contentType := multipartUpload(t, "image/jpeg", []byte("new-image"))
	req := httptest.NewRequest(http.MethodPost, "/v1/cards/abc12345/replace", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", "expired0")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, cards.gotReplaceCardID, "replace must not run without a valid key")
}

func TestReplaceCard_VerifyStorageError(t *testing.T) {
	app := newTestApp(t, &fakeCards{card: testCard()}, &fakeKeys{verifyErr: errors.New("connection refused")})

	body, contentType := multipartUpload(t, "image/jpeg", []byte("new-image"))
	req := httptest.NewRequest(http.MethodPost, "/v1/cards/abc12345/replace", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", "deadbeef")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestGetCard(t *testing.T) {
	app := newTestApp(t, &fakeCards{card: testCard()}, &fakeKeys{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards/abc12345", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]interface{}
	decodeBody(t, resp, &got)
	assert.Equal(t, "abc12345", got["card_id"])
}

func TestGetCard_NotFound(t *testing.T) {
	app := newTestApp(t, &fakeCards{cardErr: errs.ErrRecordNotFound}, &fakeKeys{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards/missing1", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListCards(t *testing.T) {
	cards := &fakeCards{
		listCards:  []*entity.Card{testCard()},
		listCursor: "next-page",
	}
	app := newTestApp(t, cards, &fakeKeys{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards?limit=1", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Items      []map[string]interface{} `json:"items"`
		NextCursor *string                  `json:"next_cursor"`
	}
	decodeBody(t, resp, &got)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.NextCursor)
	assert.Equal(t, "next-page", *got.NextCursor)
}

func TestListCards_LastPage(t *testing.T) {
	app := newTestApp(t, &fakeCards{listCards: []*entity.Card{testCard()}}, &fakeKeys{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		NextCursor *string `json:"next_cursor"`
	}
	decodeBody(t, resp, &got)
	assert.Nil(t, got.NextCursor)
}

func TestListCards_InvalidCursor(t *testing.T) {
	app := newTestApp(t, &fakeCards{listErr: errs.ErrInvalidCursor}, &fakeKeys{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards?cursor=garbage", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIssueAPIKey(t *testing.T) {
	keys := &fakeKeys{key: &entity.AccessKey{
		APIKey:    "deadbeefdeadbeefdeadbeefdeadbeef",
		CardID:    "abc12345",
		ExpiresAt: time.Date(2026, 8, 28, 10, 1, 0, 0, time.UTC),
	}}
	app := newTestApp(t, &fakeCards{}, keys)

	req := httptest.NewRequest(http.MethodPost, "/v1/cards/abc12345/apikey", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 60*time.Second, keys.gotTTL)

	var got map[string]interface{}
	decodeBody(t, resp, &got)
	assert.Equal(t, "deadbeefdeadbeefdeadbeefdeadbeef", got["api_key"])
	assert.Equal(t, "abc12345", got["card_id"])
}

func TestIssueAPIKey_UnknownCard(t *testing.T) {
	app := newTestApp(t, &fakeCards{}, &fakeKeys{issueErr: errs.ErrRecordNotFound})

	req := httptest.NewRequest(http.MethodPost, "/v1/cards/missing1/apikey", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetDetectedImage(t *testing.T) {
	app := newTestApp(t, &fakeCards{image: []byte("annotated-bytes")}, &fakeKeys{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards/abc12345/image", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []byte("annotated-bytes"), data)
}

func TestGetDetectedImage_NotFound(t *testing.T) {
	app := newTestApp(t, &fakeCards{imageErr: errs.ErrRecordNotFound}, &fakeKeys{})

	req := httptest.NewRequest(http.MethodGet, "/v1/cards/missing1/image", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
