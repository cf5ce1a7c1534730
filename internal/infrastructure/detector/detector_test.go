package detector

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detectJSON(status string, scores map[string]float64, annotated []byte) string {
	scoresJSON := "{"
	first := true
	for label, conf := range scores {
		if !first {
			scoresJSON += ","
		}
		scoresJSON += fmt.Sprintf("%q:%v", label, conf)
		first = false
	}
	scoresJSON += "}"

	return fmt.Sprintf(`{"status":%q,"scores":%s,"model":"yolov8n-print","annotated_image":%q}`,
		status, scoresJSON, base64.StdEncoding.EncodeToString(annotated))
}

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/detect", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(32<<20))
		assert.Equal(t, "abc12345", r.FormValue("card_id"))
		assert.Equal(t, "0.25", r.FormValue("conf_threshold"))

		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, detectJSON("FAIL", map[string]float64{"crack": 0.91}, []byte("annotated")))
	}))
	defer srv.Close()

	c := New(srv.URL, 0.25, 5*time.Second)

	res, err := c.Detect(context.Background(), []byte("raw-image"), "abc12345")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFail, res.Status)
	assert.Equal(t, entity.Scores{"crack": 0.91}, res.Scores)
	assert.Equal(t, "yolov8n-print", res.Model)
	assert.Equal(t, []byte("annotated"), res.Annotated)
}

func TestDetect_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 0.25, 5*time.Second)

	_, err := c.Detect(context.Background(), []byte("raw"), "abc12345")
	assert.ErrorIs(t, err, errs.ErrDetectionFailed)
}

func TestDetect_BadResponse(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown status", detectJSON("MAYBE", nil, []byte("annotated"))},
		{"score above one", detectJSON("GOOD", map[string]float64{"crack": 1.5}, []byte("annotated"))},
		{"negative score", detectJSON("GOOD", map[string]float64{"crack": -0.1}, []byte("annotated"))},
		{"empty annotated image", detectJSON("GOOD", nil, nil)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			c := New(srv.URL, 0.25, 5*time.Second)

			_, err := c.Detect(context.Background(), []byte("raw"), "abc12345")
			assert.ErrorIs(t, err, errs.ErrDetectionFailed)
		})
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, 0.25, 5*time.Second)
	assert.NoError(t, c.Health(context.Background()))
}

func TestHealth_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, 0.25, 5*time.Second)
	assert.Error(t, c.Health(context.Background()))
}
