package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer my-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"id":"e-1","status":"PENDING"}`)
	}))
	defer server.Close()

	out := struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}{}
	err := NewClient(time.Second).GetJSON(context.Background(), server.URL, "my-token", &out)
	require.NoError(t, err)
	assert.Equal(t, "e-1", out.ID)
	assert.Equal(t, "PENDING", out.Status)
}

func TestPostJSON_SendsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Acme"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"org-1"}`)
	}))
	defer server.Close()

	out := struct {
		ID string `json:"id"`
	}{}
	err := NewClient(time.Second).PostJSON(context.Background(), server.URL, "t",
		map[string]string{"name": "Acme"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "org-1", out.ID)
}

func TestNon2xxReturnsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"seat already locked"}`)
	}))
	defer server.Close()

	err := NewClient(time.Second).PostJSON(context.Background(), server.URL, "t", nil, nil)
	require.Error(t, err)
	var requestError *RequestError
	require.ErrorAs(t, err, &requestError)
	assert.Equal(t, http.StatusConflict, requestError.Status)
	assert.Contains(t, requestError.Body, "seat already locked")
}

func TestRequestError_TruncatesLongBodies(t *testing.T) {
	err := &RequestError{Method: "POST", URL: "http://x", Status: 500, Body: strings.Repeat("z", 2000)}
	assert.Less(t, len(err.Error()), 700)
	assert.Contains(t, err.Error(), "...")
}

func TestPostForStatus_ReturnsRejectionsWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message":"lost the race"}`)
	}))
	defer server.Close()

	status, body, err := NewClient(time.Second).PostForStatus(context.Background(), server.URL, "t",
		map[string]string{"seat": "s-1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "lost the race")
}

func TestPostForStatus_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, _, err := NewClient(time.Second).PostForStatus(context.Background(), server.URL, "t", nil)
	assert.Error(t, err)
}

func TestMultipart_FieldsAndAttachment(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "poster.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("jpeg-bytes"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.JSONEq(t, `{"title":"Jazz Night"}`, r.FormValue("request"))

		file, header, err := r.FormFile("coverImages")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "poster.jpg", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(content))

		fmt.Fprint(w, `{"id":"e-1"}`)
	}))
	defer server.Close()

	data, err := NewClient(time.Second).Multipart(context.Background(), server.URL, "t",
		map[string]string{"title": "Jazz Night"}, imagePath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"e-1"}`, string(data))
}

func TestMultipart_NoAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.NotEmpty(t, r.FormValue("request"))
		_, _, err := r.FormFile("coverImages")
		assert.Error(t, err)
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	_, err := NewClient(time.Second).Multipart(context.Background(), server.URL, "t",
		map[string]string{"title": "x"}, "")
	require.NoError(t, err)
}
