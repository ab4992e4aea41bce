// Package foods is a client for the FoodData Central food-composition
// service: food name resolution and per-nutrient amount lookup, cached
// for the process lifetime.
package foods

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/reportlens/internal/cache"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.FoodDataClient = (*Client)(nil)

const (
	// DefaultBaseURL is the FoodData Central REST endpoint.
	DefaultBaseURL = "https://api.nal.usda.gov/fdc/v1"

	// requestTimeout is the transport backstop; per-call deadlines come
	// from the orchestrator's context.
	requestTimeout = 10 * time.Second

	// searchPageSize is how many search hits to request; only the top
	// hit is used.
	searchPageSize = 5

	// cacheSize bounds each lookup cache. TTL is disabled: entries are
	// valid for the process lifetime, evicted only by LRU pressure.
	cacheSize = 2048

	// throttleRate is the proactive requests-per-second limit.
	throttleRate = 3
)

// searchDataTypes prefer curated, non-branded records.
var searchDataTypes = []string{"Foundation", "SR Legacy", "Survey (FNDDS)"}

// Client is a FoodData Central client with process-lifetime caches.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	searchCache *cache.Cache[string, int64]
	detailCache *cache.Cache[int64, foodDetail]
}

// NewClient creates a food-composition client. An empty apiKey produces
// a client whose Available method reports false.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		http:        &http.Client{Timeout: requestTimeout},
		limiter:     rate.NewLimiter(rate.Limit(throttleRate), 1),
		searchCache: cache.New[string, int64](cacheSize, 0),
		detailCache: cache.New[int64, foodDetail](cacheSize, 0),
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

// searchResponse mirrors POST /foods/search.
type searchResponse struct {
	Foods []struct {
		FDCID       int64  `json:"fdcId"`
		Description string `json:"description"`
	} `json:"foods"`
}

// BestMatchID resolves a food name to the top search hit's record id.
// Returns 0 with a nil error when nothing matches.
func (c *Client) BestMatchID(ctx context.Context, food string) (int64, error) {
	key := fmt.Sprintf("%s::%s::%d", strings.ToLower(food), strings.Join(searchDataTypes, ","), searchPageSize)
	if id, ok := c.searchCache.Get(key); ok {
		return id, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	body, err := json.Marshal(map[string]any{
		"query":    food,
		"dataType": searchDataTypes,
		"pageSize": searchPageSize,
	})
	if err != nil {
		return 0, err
	}

	endpoint := c.baseURL + "/foods/search?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp searchResponse
	if err := c.do(req, &resp); err != nil {
		return 0, err
	}
	if len(resp.Foods) == 0 {
		c.searchCache.Set(key, 0)
		return 0, nil
	}

	id := resp.Foods[0].FDCID
	c.searchCache.Set(key, id)
	return id, nil
}

// foodDetail mirrors GET /food/{id}. The nutrient entries vary by data
// type: some carry nutrient.name/amount, others nutrientName/value.
type foodDetail struct {
	FoodNutrients []struct {
		Nutrient struct {
			Name     string `json:"name"`
			UnitName string `json:"unitName"`
		} `json:"nutrient"`
		NutrientName string   `json:"nutrientName"`
		UnitName     string   `json:"unitName"`
		Amount       *float64 `json:"amount"`
		Value        *float64 `json:"value"`
	} `json:"foodNutrients"`
}

// NutrientAmount fetches the detail record for id and extracts the
// amount for nutrientName. Returns nil with a nil error when the record
// has no numeric amount under that name.
func (c *Client) NutrientAmount(ctx context.Context, id int64, nutrientName string) (*driven.NutrientAmount, error) {
	detail, ok := c.detailCache.Get(id)
	if !ok {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		endpoint := fmt.Sprintf("%s/food/%d?api_key=%s", c.baseURL, id, url.QueryEscape(c.apiKey))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if err := c.do(req, &detail); err != nil {
			return nil, err
		}
		c.detailCache.Set(id, detail)
	}

	target := strings.ToLower(strings.TrimSpace(nutrientName))
	for _, n := range detail.FoodNutrients {
		name := n.Nutrient.Name
		if name == "" {
			name = n.NutrientName
		}
		if strings.ToLower(strings.TrimSpace(name)) != target {
			continue
		}

		value := n.Amount
		if value == nil {
			value = n.Value
		}
		if value == nil {
			continue
		}

		unit := n.Nutrient.UnitName
		if unit == "" {
			unit = n.UnitName
		}
		return &driven.NutrientAmount{Value: *value, Unit: unit}, nil
	}
	return nil, nil
}

// do executes the request and decodes the JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("food data service: HTTP %d for %s", resp.StatusCode, req.URL.Path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
