package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeImageRequestShape(t *testing.T) {
	image := []byte{0x89, 0x50, 0x4e, 0x47}

	var gotPath, gotKey string
	var gotReq generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "Total Carbon Emissions: 5 kg"}}}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "test-model", APIKey: "secret"}, zerolog.Nop())

	reply, err := client.DescribeImage(context.Background(), "describe this", image, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "Total Carbon Emissions: 5 kg", reply)

	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 2)
	assert.Equal(t, "describe this", gotReq.Contents[0].Parts[0].Text)

	inline := gotReq.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "image/png", inline.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), inline.Data)
}

func TestDescribeImageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zerolog.Nop())

	_, err := client.DescribeImage(context.Background(), "describe", []byte{1}, "image/png")
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestDescribeImageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, zerolog.Nop())

	_, err := client.DescribeImage(context.Background(), "describe", []byte{1}, "image/png")
	assert.ErrorIs(t, err, ErrCallFailed)
}

func TestDescribeImageEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zerolog.Nop())

	reply, err := client.DescribeImage(context.Background(), "describe", []byte{1}, "image/png")
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{}, zerolog.Nop())
	assert.Equal(t, defaultBaseURL, client.cfg.BaseURL)
	assert.Equal(t, defaultModel, client.cfg.Model)
	assert.Equal(t, defaultHTTPTimeout, client.cfg.Timeout)
}
