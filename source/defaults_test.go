package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageblock/rules"
)

func TestDefaultBlockSourceRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id":"remote_1","trigger":"remote-ads.com","severity":"high","enabled":true}]`))
	}))
	defer srv.Close()

	loader := NewLoader(t.TempDir(), nil)
	defer loader.Close()

	src := NewDefaultBlockSource(srv.URL, loader, rules.IDRange{Start: 1, End: 999}, 0, nil)
	payload, err := src.FetchRules(context.Background())
	require.NoError(t, err)
	require.Len(t, payload.Rules, 1)
	assert.Equal(t, "remote_1", payload.Rules[0].ID)
}

func TestDefaultBlockSourceFallsBackOnFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader := NewLoader(t.TempDir(), nil)
	defer loader.Close()

	src := NewDefaultBlockSource(srv.URL, loader, rules.IDRange{Start: 1, End: 999}, 0, nil)
	payload, err := src.FetchRules(context.Background())
	require.NoError(t, err, "bundled fallback must absorb the remote failure")
	assert.NotEmpty(t, payload.Rules)
}

func TestDefaultBlockSourceFallsBackOnParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"this is": "not an array"`))
	}))
	defer srv.Close()

	loader := NewLoader(t.TempDir(), nil)
	defer loader.Close()

	src := NewDefaultBlockSource(srv.URL, loader, rules.IDRange{Start: 1, End: 999}, 0, nil)
	payload, err := src.FetchRules(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Rules)
}

func TestDefaultBlockSourceHonorsEmptyRemoteList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	loader := NewLoader(t.TempDir(), nil)
	defer loader.Close()

	src := NewDefaultBlockSource(srv.URL, loader, rules.IDRange{Start: 1, End: 999}, 0, nil)
	payload, err := src.FetchRules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payload.Rules, "an emptied remote list is honored, not replaced by the bundle")
}

func TestDefaultBlockSourceBundledOnly(t *testing.T) {
	loader := NewLoader(t.TempDir(), nil)
	defer loader.Close()

	src := NewDefaultBlockSource("", loader, rules.IDRange{Start: 1, End: 999}, 0, nil)
	payload, err := src.FetchRules(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Rules)

	// The bundled set carries both network and cosmetic material.
	var hasSelector, hasTrigger bool
	for _, r := range payload.Rules {
		if r.HasSelector() {
			hasSelector = true
		}
		if r.Trigger != "" {
			hasTrigger = true
		}
	}
	assert.True(t, hasSelector)
	assert.True(t, hasTrigger)
}
