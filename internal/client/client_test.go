package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingetuto/ingetuto-api/internal/domain"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(srv.URL + "/")
}

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
	assert.Equal(t, "http://api.local", New("http://api.local/").BaseURL())
}

func TestClient_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tutorias/reservar", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"conflict","error":"the block is no longer available"}`)
	})
	mux.HandleFunc("/api/materias/9", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `subject not found`)
	})
	mux.HandleFunc("/api/materias/8", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(t, mux)

	_, err := c.Tutoring.Reserve(context.Background(), 1, 2, "Integrales")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "the block is no longer available", apiErr.Message)

	_, err = c.Subjects.Get(context.Background(), 9)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "subject not found", apiErr.Message)

	_, err = c.Subjects.Get(context.Background(), 8)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "502 Bad Gateway", apiErr.Message)
}

func TestClient_SessionExpiredBroadcast(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"unauthorized","error":"session closed for inactivity"}`)
	}))

	var first, second int32
	c.OnSessionExpired(func() { atomic.AddInt32(&first, 1) })
	stop := c.OnSessionExpired(func() { atomic.AddInt32(&second, 1) })

	_, err := c.Auth.Me(context.Background())
	require.Error(t, err)
	stop()
	_, err = c.Subjects.List(context.Background())
	require.Error(t, err)

	assert.EqualValues(t, 2, atomic.LoadInt32(&first))
	assert.EqualValues(t, 1, atomic.LoadInt32(&second))
}

func TestClient_BearerAndStatusFilter(t *testing.T) {
	var gotAuth, gotStates string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotStates = r.URL.Query().Get("estados")
		assert.Equal(t, "/api/tutorias/estudiante", r.URL.Path)
		_, _ = io.WriteString(w, `[{"idTutoria":4,"estado":"PROGRAMADA","nombreTema":"Límites"}]`)
	}))
	c.SetToken("abc")

	sessions, err := c.Tutoring.Mine(context.Background(), domain.SessionReserved, domain.SessionScheduled)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, uint(4), sessions[0].ID)
	assert.Equal(t, domain.SessionScheduled, sessions[0].Status)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "RESERVADA,PROGRAMADA", gotStates)

	c.SetToken("")
	_, err = c.Tutoring.Mine(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Empty(t, gotStates)
}

func TestTutorRequestService_Submit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "5", r.FormValue("idMateria"))

		f, hdr, err := r.FormFile("historiaAcademica")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "historia.pdf", hdr.Filename)
		assert.Equal(t, "record", string(body))

		_, hdr, err = r.FormFile("archivoSoporte")
		require.NoError(t, err)
		assert.Equal(t, "soporte.pdf", hdr.Filename)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"idSolicitud":1,"estado":"EN_REVISION"}`)
	}))

	created, err := c.TutorRequests.Submit(context.Background(), 5,
		Attachment{Name: "historia.pdf", Content: strings.NewReader("record")},
		Attachment{Name: "soporte.pdf", Content: strings.NewReader("support")},
	)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestInReview, created.Status)
}

func TestTutorRequestService_Download(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tutor-requests/download/a.pdf", r.URL.Path)
		_, _ = io.WriteString(w, "%PDF-1.4")
	}))

	var buf bytes.Buffer
	require.NoError(t, c.TutorRequests.Download(context.Background(), "a.pdf", &buf))
	assert.Equal(t, "%PDF-1.4", buf.String())
}
