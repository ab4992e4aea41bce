// Package terminology resolves candidate phrases against the UMLS
// terminology service and scores the resulting concepts. The tagger is
// an optional pipeline stage: without a configured API key it returns
// an empty result set without attempting any call.
package terminology

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/reportlens/internal/cache"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.TerminologyClient = (*Client)(nil)

const (
	// DefaultBaseURL is the UMLS Terminology Services REST endpoint.
	DefaultBaseURL = "https://uts-ws.nlm.nih.gov/rest"

	// apiVersion selects the current UMLS release.
	apiVersion = "current"

	// searchVocabularies restrict search hits to clinical vocabularies.
	searchVocabularies = "SNOMEDCT_US,ICD10CM"

	// definitionVocabularies order definition sources by preference.
	definitionVocabularies = "MSH,SNOMEDCT_US,ICD10CM"

	// requestTimeout bounds a single terminology call.
	requestTimeout = 15 * time.Second

	// cacheTTL keeps lookups warm within a session window.
	cacheTTL = 20 * time.Minute

	// cacheSize bounds each lookup cache.
	cacheSize = 1024

	// throttleRate is the proactive requests-per-second limit.
	throttleRate = 5
)

// Client is a UMLS REST client with read-through caching and proactive
// throttling. Not-found and rate-limit responses are absorbed as empty
// results so a degraded service never fails the pipeline.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	searchCache *cache.Cache[string, []driven.ConceptHit]
	atomsCache  *cache.Cache[string, []string]
	defsCache   *cache.Cache[string, []driven.ConceptDefinition]
}

// NewClient creates a terminology client. An empty apiKey produces a
// client whose Available method reports false.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		http:        &http.Client{Timeout: requestTimeout},
		limiter:     rate.NewLimiter(rate.Limit(throttleRate), 1),
		searchCache: cache.New[string, []driven.ConceptHit](cacheSize, cacheTTL),
		atomsCache:  cache.New[string, []string](cacheSize, cacheTTL),
		defsCache:   cache.New[string, []driven.ConceptDefinition](cacheSize, cacheTTL),
	}
}

// SetBaseURL overrides the service endpoint. Useful for testing.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

// Available reports whether the service credential is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// searchResponse mirrors the /search result envelope.
type searchResponse struct {
	Result struct {
		Results []struct {
			UI         string `json:"ui"`
			Name       string `json:"name"`
			RootSource string `json:"rootSource"`
		} `json:"results"`
	} `json:"result"`
}

// Search looks a term up in the given mode, restricted to the clinical
// search vocabularies, returning at most ten hits.
func (c *Client) Search(ctx context.Context, term string, mode driven.SearchMode) ([]driven.ConceptHit, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	key := fmt.Sprintf("search:%s:%s:%s", mode, searchVocabularies, strings.ToLower(term))
	if hits, ok := c.searchCache.Get(key); ok {
		return hits, nil
	}

	var resp searchResponse
	err := c.get(ctx, "/search/"+apiVersion, url.Values{
		"string":     {term},
		"searchType": {string(mode)},
		"sabs":       {searchVocabularies},
		"pageSize":   {"10"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	hits := make([]driven.ConceptHit, 0, len(resp.Result.Results))
	for _, r := range resp.Result.Results {
		hits = append(hits, driven.ConceptHit{UI: r.UI, Name: r.Name, RootSource: r.RootSource})
	}

	c.searchCache.Set(key, hits)
	return hits, nil
}

// atomsResponse mirrors the /content/.../atoms envelope.
type atomsResponse struct {
	Result []struct {
		Name string `json:"name"`
	} `json:"result"`
}

// Atoms returns up to limit synonym atom names for a concept.
func (c *Client) Atoms(ctx context.Context, cui string, limit int) ([]string, error) {
	key := fmt.Sprintf("atoms:%s:%s:%d", cui, searchVocabularies, limit)
	if atoms, ok := c.atomsCache.Get(key); ok {
		return atoms, nil
	}

	var resp atomsResponse
	err := c.get(ctx, "/content/"+apiVersion+"/CUI/"+cui+"/atoms", url.Values{
		"sabs":     {searchVocabularies},
		"pageSize": {strconv.Itoa(limit)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	atoms := make([]string, 0, len(resp.Result))
	for _, a := range resp.Result {
		if a.Name != "" {
			atoms = append(atoms, a.Name)
		}
	}

	c.atomsCache.Set(key, atoms)
	return atoms, nil
}

// definitionsResponse mirrors the /content/.../definitions envelope.
type definitionsResponse struct {
	Result []struct {
		Value      string `json:"value"`
		RootSource string `json:"rootSource"`
	} `json:"result"`
}

// Definitions returns up to ten definitions for a concept from the
// preferred definition vocabularies.
func (c *Client) Definitions(ctx context.Context, cui string) ([]driven.ConceptDefinition, error) {
	key := fmt.Sprintf("defs:%s:%s", cui, definitionVocabularies)
	if defs, ok := c.defsCache.Get(key); ok {
		return defs, nil
	}

	var resp definitionsResponse
	err := c.get(ctx, "/content/"+apiVersion+"/CUI/"+cui+"/definitions", url.Values{
		"sabs":     {definitionVocabularies},
		"pageSize": {"10"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	defs := make([]driven.ConceptDefinition, 0, len(resp.Result))
	for _, d := range resp.Result {
		defs = append(defs, driven.ConceptDefinition{Value: d.Value, RootSource: d.RootSource})
	}

	c.defsCache.Set(key, defs)
	return defs, nil
}

// get performs a throttled GET and decodes the JSON body into out.
// 404 means "no data" and 401/403/429/5xx mean "service degraded"; both
// leave out at its zero value with a nil error.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests:
		logger.Warn("terminology service degraded: HTTP %d on %s", resp.StatusCode, path)
		return nil
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		logger.Warn("terminology service error: HTTP %d on %s", resp.StatusCode, path)
		return nil
	default:
		return fmt.Errorf("terminology service: unexpected HTTP %d on %s", resp.StatusCode, path)
	}
}
