package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nl", r.URL.Query().Get("sl"))
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		assert.Equal(t, "Komedie", r.URL.Query().Get("q"))
		w.Write([]byte(`[[["Comedy","Komedie",null,null,10]],null,"nl"]`))
	}))
	defer srv.Close()

	c := New(language.Dutch, language.English, zap.NewNop(), WithEndpoint(srv.URL))
	assert.Equal(t, "Comedy", c.Translate(context.Background(), "Komedie"))
}

func TestTranslateJoinsChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[["Winter ","Oorlogs",null,null,10],["in Wartime","winter",null,null,10]],null,"nl"]`))
	}))
	defer srv.Close()

	c := New(language.Dutch, language.English, zap.NewNop(), WithEndpoint(srv.URL))
	assert.Equal(t, "Winter in Wartime", c.Translate(context.Background(), "Oorlogswinter"))
}

func TestTranslateDegradesOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(language.Dutch, language.English, zap.NewNop(), WithEndpoint(srv.URL))
	assert.Equal(t, "Komedie", c.Translate(context.Background(), "Komedie"))
}

func TestTranslateDegradesOnUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(language.Dutch, language.English, zap.NewNop(), WithEndpoint(srv.URL))
	assert.Equal(t, "Drama", c.Translate(context.Background(), "Drama"))
}

func TestTranslateDegradesOnGarbageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>captcha</html>`))
	}))
	defer srv.Close()

	c := New(language.Dutch, language.English, zap.NewNop(), WithEndpoint(srv.URL))
	assert.Equal(t, "Drama", c.Translate(context.Background(), "Drama"))
}

func TestNoop(t *testing.T) {
	assert.Equal(t, "Drama", Noop{}.Translate(context.Background(), "Drama"))
}
