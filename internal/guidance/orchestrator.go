package guidance

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
	"github.com/custodia-labs/reportlens/internal/logger"
)

// limits groups the fan-out sizes and per-call deadlines. Constrained
// deployments get the reduced set.
type limits struct {
	sourceTimeout    time.Duration
	factSheetTimeout time.Duration
	foodSearchTO     time.Duration
	foodDetailTO     time.Duration
	nutrientCap      int
	foodCap          int
	deepLinkCap      int
}

var standardLimits = limits{
	sourceTimeout:    5 * time.Second,
	factSheetTimeout: 3500 * time.Millisecond,
	foodSearchTO:     2500 * time.Millisecond,
	foodDetailTO:     3 * time.Second,
	nutrientCap:      4,
	foodCap:          12,
	deepLinkCap:      2,
}

var lowResourceLimits = limits{
	sourceTimeout:    3 * time.Second,
	factSheetTimeout: 2 * time.Second,
	foodSearchTO:     1500 * time.Millisecond,
	foodDetailTO:     2 * time.Second,
	nutrientCap:      2,
	foodCap:          6,
	deepLinkCap:      1,
}

const (
	// maxSources caps the assembled source list.
	maxSources = 10

	// maxBaseTerms is how many condition terms seed the query.
	maxBaseTerms = 2

	// topFoodsKeep is the ranked-food list cap per nutrient.
	topFoodsKeep = 5

	// snippetLen is the per-source snippet length.
	snippetLen = 400

	// nhsHost is the base host for search deep links.
	nhsHost = "www.nhs.uk"
)

// Orchestrator builds the live nutrition guidance payload by fanning
// out to trusted content hosts and the food-composition service, each
// call bounded by its own deadline. Any failed or timed-out call yields
// no result for that source; the payload is always well-formed.
type Orchestrator struct {
	foods   driven.FoodDataClient
	fetcher driven.PageFetcher
	lim     limits
}

// New creates an orchestrator. lowResource selects reduced fan-out
// sizes and deadlines.
func New(foods driven.FoodDataClient, fetcher driven.PageFetcher, lowResource bool) *Orchestrator {
	lim := standardLimits
	if lowResource {
		lim = lowResourceLimits
	}
	return &Orchestrator{foods: foods, fetcher: fetcher, lim: lim}
}

// sourcePage is a fetched trusted page with its stripped text.
type sourcePage struct {
	link domain.SourceLink
	text string
	html string
}

// Guide assembles the guidance payload for the reconciled conditions.
// Without a food-composition credential it returns an empty payload
// with a note, attempting no external calls.
func (o *Orchestrator) Guide(ctx context.Context, conditions []string, concepts []domain.TerminologyConcept) domain.GuidancePayload {
	if o.foods == nil || !o.foods.Available() {
		return domain.EmptyGuidance("food-composition API key missing; live guidance skipped")
	}

	baseTerms := conditions
	if len(baseTerms) > maxBaseTerms {
		baseTerms = baseTerms[:maxBaseTerms]
	}
	if len(baseTerms) == 0 {
		baseTerms = []string{"health"}
	}

	category := PickCategory(conditions, concepts)
	query := BuildQuery(category, baseTerms)
	logger.Debug("guidance: category=%s query=%q", category, query)

	direct, primary, fallback := o.fetchTrustedSources(ctx, baseTerms[0], query)

	search := primary
	if search == nil {
		search = fallback
	}

	sources := []domain.SourceLink{}
	var combined []string
	if direct != nil {
		sources = append(sources, direct.link)
		combined = append(combined, direct.text)
	}
	if search != nil {
		sources = append(sources, search.link)
		combined = append(combined, search.text)
	}

	combined = append(combined, o.fetchDeepLinks(ctx, search, baseTerms[0])...)

	nutrients := ExtractNutrients(strings.Join(combined, "\n"))
	if len(nutrients) > o.lim.nutrientCap {
		nutrients = nutrients[:o.lim.nutrientCap]
	}
	logger.Debug("guidance: %d nutrients mentioned", len(nutrients))

	sources = append(sources, o.fetchFactSheets(ctx, nutrients)...)
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	foodsByKey := o.rankAllNutrients(ctx, nutrients)

	keys := make([]string, 0, len(nutrients))
	packets := make([]domain.NutrientPacket, 0, len(nutrients))
	for _, n := range nutrients {
		keys = append(keys, n.Key)
		packets = append(packets, domain.NutrientPacket{
			Key:      n.Key,
			Label:    n.Label,
			UnitHint: n.FDCName,
			TopFoods: foodsByKey[n.Key],
		})
	}

	return domain.GuidancePayload{
		Message:        "live nutrition guidance assembled",
		Category:       category,
		Query:          query,
		Sources:        sources,
		NutrientsFound: keys,
		FoodsByKey:     foodsByKey,
		Nutrients:      packets,
	}
}

// fetchTrustedSources runs the three source fetches concurrently: the
// direct informational page, the search query and the simpler fallback
// query. Each is independently deadline-bounded; a miss yields nil.
func (o *Orchestrator) fetchTrustedSources(ctx context.Context, firstTerm, query string) (direct, primary, fallback *sourcePage) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		direct = o.tryDirectPage(gctx, firstTerm)
		return nil
	})
	g.Go(func() error {
		primary = o.trySearch(gctx, query)
		return nil
	})
	g.Go(func() error {
		fallback = o.trySearch(gctx, firstTerm+" diet nutrition")
		return nil
	})

	// Fetchers absorb their own failures, so Wait only joins.
	_ = g.Wait()
	return direct, primary, fallback
}

// tryDirectPage fetches the condition's informational page keyed by a
// slugified term.
func (o *Orchestrator) tryDirectPage(ctx context.Context, term string) *sourcePage {
	pageURL := "https://medlineplus.gov/" + slugify(term) + ".html"

	text, ok := within(ctx, o.lim.sourceTimeout, func(ctx context.Context) string {
		t, err := o.fetcher.FetchText(ctx, pageURL)
		if err != nil {
			logger.Debug("direct page miss %s: %v", pageURL, err)
			return ""
		}
		return t
	})
	if !ok || text == "" {
		return nil
	}

	return &sourcePage{
		link: domain.SourceLink{Title: "MedlinePlus: " + term, URL: pageURL, Snippet: snippet(text)},
		text: text,
	}
}

// trySearch fetches the health search page for q. The raw markup is
// kept for deep-link extraction alongside the stripped text.
func (o *Orchestrator) trySearch(ctx context.Context, q string) *sourcePage {
	searchURL := "https://" + nhsHost + "/search/results?q=" + url.QueryEscape(q)

	html, ok := within(ctx, o.lim.sourceTimeout, func(ctx context.Context) string {
		h, err := o.fetcher.FetchHTML(ctx, searchURL)
		if err != nil {
			logger.Debug("search miss %s: %v", searchURL, err)
			return ""
		}
		return h
	})
	if !ok || html == "" {
		return nil
	}

	text := StripHTML(html)
	return &sourcePage{
		link: domain.SourceLink{Title: "NHS search: " + q, URL: searchURL, Snippet: snippet(text)},
		text: text,
		html: html,
	}
}

// fetchDeepLinks follows the best-scored condition links from the
// search result page and returns their stripped text for nutrient
// mention scanning.
func (o *Orchestrator) fetchDeepLinks(ctx context.Context, search *sourcePage, baseWord string) []string {
	if search == nil || search.html == "" {
		return nil
	}

	links := ExtractSearchLinks(search.html, nhsHost)
	sort.SliceStable(links, func(i, j int) bool {
		return scoreLink(links[i], baseWord) > scoreLink(links[j], baseWord)
	})
	if len(links) > o.lim.deepLinkCap {
		links = links[:o.lim.deepLinkCap]
	}

	texts := make([]string, len(links))
	g, gctx := errgroup.WithContext(ctx)
	for i, link := range links {
		g.Go(func() error {
			text, ok := within(gctx, o.lim.sourceTimeout, func(ctx context.Context) string {
				t, err := o.fetcher.FetchText(ctx, link)
				if err != nil {
					logger.Debug("deep link miss %s: %v", link, err)
					return ""
				}
				return t
			})
			if ok {
				texts[i] = text
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []string
	for _, t := range texts {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// fetchFactSheets fetches one nutrient fact sheet per found nutrient,
// each independently deadline-bounded. Failures are dropped.
func (o *Orchestrator) fetchFactSheets(ctx context.Context, nutrients []Nutrient) []domain.SourceLink {
	results := make([]*domain.SourceLink, len(nutrients))

	g, gctx := errgroup.WithContext(ctx)
	for i, n := range nutrients {
		g.Go(func() error {
			slug := strings.ReplaceAll(n.Label, " ", "")
			sheetURL := "https://ods.od.nih.gov/factsheets/" + url.PathEscape(slug) + "-HealthProfessional/"

			text, ok := within(gctx, o.lim.factSheetTimeout, func(ctx context.Context) string {
				t, err := o.fetcher.FetchText(ctx, sheetURL)
				if err != nil {
					logger.Debug("fact sheet miss %s: %v", sheetURL, err)
					return ""
				}
				return t
			})
			if ok && text != "" {
				results[i] = &domain.SourceLink{Title: "NIH ODS: " + slug, URL: sheetURL, Snippet: snippet(text)}
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.SourceLink
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// rankAllNutrients ranks the generic food list for every found
// nutrient concurrently. Output order within each list is imposed by
// sorting, not by completion order.
func (o *Orchestrator) rankAllNutrients(ctx context.Context, nutrients []Nutrient) map[string][]domain.FoodAmount {
	foodsByKey := make(map[string][]domain.FoodAmount, len(nutrients))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, n := range nutrients {
		g.Go(func() error {
			ranked := o.rankFoods(gctx, n.FDCName)
			mu.Lock()
			foodsByKey[n.Key] = ranked
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return foodsByKey
}

// rankFoods scores the generic food list against the food-composition
// service for one nutrient. Per-food failures and non-numeric amounts
// are dropped silently; the result is the top foods by amount.
func (o *Orchestrator) rankFoods(ctx context.Context, fdcNutrientName string) []domain.FoodAmount {
	candidates := genericFoods
	if len(candidates) > o.lim.foodCap {
		candidates = candidates[:o.lim.foodCap]
	}

	results := []domain.FoodAmount{}
	for _, food := range candidates {
		id, ok := within(ctx, o.lim.foodSearchTO, func(ctx context.Context) int64 {
			fdcID, err := o.foods.BestMatchID(ctx, food)
			if err != nil {
				logger.Debug("food search miss %q: %v", food, err)
				return 0
			}
			return fdcID
		})
		if !ok || id == 0 {
			continue
		}

		amount, ok := within(ctx, o.lim.foodDetailTO, func(ctx context.Context) *driven.NutrientAmount {
			amt, err := o.foods.NutrientAmount(ctx, id, fdcNutrientName)
			if err != nil {
				logger.Debug("food detail miss %q (%d): %v", food, id, err)
				return nil
			}
			return amt
		})
		if !ok || amount == nil {
			continue
		}

		results = append(results, domain.FoodAmount{
			Food:   food,
			FDCID:  id,
			Amount: amount.Value,
			Unit:   amount.Unit,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Amount > results[j].Amount
	})
	if len(results) > topFoodsKeep {
		results = results[:topFoodsKeep]
	}
	return results
}

// scoreLink favours deep links about the detected condition and about
// diet generally.
func scoreLink(link, baseWord string) int {
	u := strings.ToLower(link)
	score := 0
	if strings.Contains(u, "strong-bones") {
		score += 6
	}
	if baseWord != "" && strings.Contains(u, strings.ToLower(baseWord)) {
		score += 3
	}
	if strings.Contains(u, "bone") {
		score += 2
	}
	if strings.Contains(u, "fracture") {
		score += 2
	}
	if strings.Contains(u, "diet") || strings.Contains(u, "food") || strings.Contains(u, "nutrition") {
		score += 2
	}
	return score
}

var slugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`\s+`)

// slugify turns a condition term into a URL slug.
func slugify(term string) string {
	s := strings.ToLower(strings.TrimSpace(term))
	s = slugChars.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return s
}

// snippet truncates stripped page text for display.
func snippet(text string) string {
	if len(text) <= snippetLen {
		return text
	}
	return text[:snippetLen]
}
