package terminology

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

func TestClient_Available(t *testing.T) {
	assert.False(t, NewClient("").Available())
	assert.True(t, NewClient("key").Available())
}

func TestClient_Search(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/search/current", r.URL.Path)
		assert.Equal(t, "sinusitis", r.URL.Query().Get("string"))
		assert.Equal(t, "exact", r.URL.Query().Get("searchType"))
		assert.Equal(t, "SNOMEDCT_US,ICD10CM", r.URL.Query().Get("sabs"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))

		fmt.Fprint(w, `{"result":{"results":[
			{"ui":"C0037199","name":"Sinusitis","rootSource":"SNOMEDCT_US"}
		]}}`)
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	hits, err := client.Search(context.Background(), "sinusitis", driven.SearchExact)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "C0037199", hits[0].UI)
	assert.Equal(t, "Sinusitis", hits[0].Name)

	// Second identical lookup is served from cache.
	_, err = client.Search(context.Background(), "sinusitis", driven.SearchExact)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_Search_EmptyTerm(t *testing.T) {
	client := NewClient("test-key")
	hits, err := client.Search(context.Background(), "   ", driven.SearchExact)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestClient_Atoms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/current/CUI/C0037199/atoms", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("pageSize"))
		fmt.Fprint(w, `{"result":[{"name":"Sinusitis"},{"name":""},{"name":"Sinus infection"}]}`)
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	atoms, err := client.Atoms(context.Background(), "C0037199", 25)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sinusitis", "Sinus infection"}, atoms, "empty atom names dropped")
}

func TestClient_Definitions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/current/CUI/C0037199/definitions", r.URL.Path)
		assert.Equal(t, "MSH,SNOMEDCT_US,ICD10CM", r.URL.Query().Get("sabs"))
		fmt.Fprint(w, `{"result":[{"value":"Inflammation of the sinuses.","rootSource":"MSH"}]}`)
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	defs, err := client.Definitions(context.Background(), "C0037199")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Inflammation of the sinuses.", defs[0].Value)
}

// Degraded-service statuses are absorbed as empty results, never errors.
func TestClient_DegradedStatusesAbsorbed(t *testing.T) {
	for _, status := range []int{
		http.StatusNotFound,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
	} {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			client := NewClient("test-key")
			client.SetBaseURL(srv.URL)

			hits, err := client.Search(context.Background(), "term", driven.SearchWords)
			require.NoError(t, err)
			assert.Empty(t, hits)
		})
	}
}

func TestClient_UnexpectedStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.SetBaseURL(srv.URL)

	_, err := client.Search(context.Background(), "term", driven.SearchExact)
	assert.Error(t, err)
}
