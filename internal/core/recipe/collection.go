package recipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"meal-planner/internal/core/creator"
	"meal-planner/internal/core/source"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNoRecipesFound means every platform search came back empty or failed.
var ErrNoRecipesFound = errors.New("no recipes found from any source")

const (
	totalSteps = 6

	// minConfidence gates parsed content into the recipe pool (inclusive).
	minConfidence = 0.5
	// minCoverage gates scored recipes into the final results (exclusive).
	minCoverage = 0.1

	instagramTitleChars = 100
)

// Collection pipeline dependencies, narrowed to what it calls.
type queryGenerator interface {
	Generate(ctx context.Context, ingredients []string) (SearchQueries, error)
}

type descriptionParser interface {
	Parse(ctx context.Context, title, description string) (ParsedIngredients, error)
}

type matchScorer interface {
	ScoreBatch(ctx context.Context, userIngredients []string, recipes []RecipeIngredients) map[string]MatchScore
}

type creatorLister interface {
	ListByUser(userID string) []*creator.PreferredCreator
}

// CollectionService runs the full recipe search pipeline: query
// generation, platform fan-out, dedup, ingredient extraction, scoring, and
// ranking.
type CollectionService struct {
	cfg      *config.CollectionConfig
	queryGen queryGenerator
	parser   descriptionParser
	matcher  matchScorer
	creators creatorLister
	cache    *Cache
	sources  []source.Client
}

// NewCollectionService wires the pipeline. sources holds one client per
// enabled platform; their order fixes the result ordering before ranking.
func NewCollectionService(
	cfg *config.CollectionConfig,
	queryGen queryGenerator,
	parser descriptionParser,
	matcher matchScorer,
	creators creatorLister,
	cache *Cache,
	sources []source.Client,
) *CollectionService {
	return &CollectionService{
		cfg:      cfg,
		queryGen: queryGen,
		parser:   parser,
		matcher:  matcher,
		creators: creators,
		cache:    cache,
		sources:  sources,
	}
}

// SearchRecipes finds recipes cookable from the given ingredients, ranked
// by ingredient coverage and truncated to maxResults. onProgress, when
// non-nil, receives ordered phase notifications; a misbehaving callback
// never aborts the pipeline.
//
// A platform that fails entirely contributes no results; only when every
// platform comes back empty does the search fail with ErrNoRecipesFound.
func (s *CollectionService) SearchRecipes(
	ctx context.Context,
	userID string,
	ingredients []string,
	maxResults int,
	onProgress func(ProgressEvent),
) ([]ScoredRecipe, error) {
	emit := progressEmitter(onProgress)

	// Step 1: queries.
	emit(1, "queries", "Generating search queries")
	queries, err := s.queryGen.Generate(ctx, ingredients)
	if err != nil {
		return nil, fmt.Errorf("query generation failed: %w", err)
	}
	allQueries := append(append([]string{}, queries.DirectQueries...), queries.DishSuggestions...)
	if len(allQueries) == 0 {
		return []ScoredRecipe{}, nil
	}

	// Step 2: preferred creators.
	emit(2, "creators", "Loading preferred creators")
	accountsBySource := make(map[source.Source][]string)
	for _, c := range s.creators.ListByUser(userID) {
		accountsBySource[c.Source] = append(accountsBySource[c.Source], c.CreatorID)
	}

	// Step 3: platform fan-out. Each platform runs in isolation; a panic
	// or failure there costs only that platform's results.
	emit(3, "search", "Searching content platforms")
	perPlatform := make([][]source.SearchResult, len(s.sources))
	var wg sync.WaitGroup
	for i, client := range s.sources {
		wg.Add(1)
		go func(i int, client source.Client) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					common.LogError("platform search panicked",
						zap.String("source", string(client.Source())),
						zap.Any("panic", r),
					)
					perPlatform[i] = nil
				}
			}()
			perPlatform[i] = s.searchPlatform(ctx, client, allQueries, accountsBySource[client.Source()])
		}(i, client)
	}
	wg.Wait()

	total := 0
	for _, results := range perPlatform {
		total += len(results)
	}
	if total == 0 {
		return nil, ErrNoRecipesFound
	}

	// Step 4: resolve results into recipes, via cache or fresh parse.
	emit(4, "extract", "Extracting ingredients from results")
	recipes := s.resolveRecipes(ctx, perPlatform)
	if len(recipes) == 0 {
		return []ScoredRecipe{}, nil
	}

	// Step 5: score against the pantry.
	emit(5, "score", "Scoring recipes against your ingredients")
	toScore := make([]RecipeIngredients, len(recipes))
	for i, r := range recipes {
		toScore[i] = RecipeIngredients{ID: r.ID, Ingredients: r.ExtractedIngredients}
	}
	scores := s.matcher.ScoreBatch(ctx, ingredients, toScore)

	scored := make([]ScoredRecipe, 0, len(recipes))
	for _, r := range recipes {
		score, ok := scores[r.ID]
		if !ok || score.CoverageScore <= minCoverage {
			continue
		}
		scored = append(scored, ScoredRecipe{Recipe: r, Score: score})
	}

	// Step 6: rank. Stable sort keeps platform order among ties.
	emit(6, "rank", "Ranking results")
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.CoverageScore > scored[j].Score.CoverageScore
	})
	if maxResults > 0 && len(scored) > maxResults {
		scored = scored[:maxResults]
	}

	common.LogInfo("recipe search completed",
		zap.String("user_id", userID),
		zap.Int("candidates", total),
		zap.Int("recipes", len(recipes)),
		zap.Int("results", len(scored)),
	)
	return scored, nil
}

// searchPlatform runs all queries against one platform: preferred creator
// accounts first, then general queries, deduplicated first-seen and capped.
// Per-query failures are logged and skipped; a configuration failure stops
// the platform immediately.
func (s *CollectionService) searchPlatform(
	ctx context.Context,
	client source.Client,
	queries []string,
	accounts []string,
) []source.SearchResult {
	src := client.Source()
	var collected []source.SearchResult

	creatorQueries := boundQueries(queries, s.cfg.QueriesPerCreator)
	// When account search ignores the query, every query fetches the same
	// page; one fetch per account suffices.
	if qa, ok := client.(source.QueryAgnosticAccountSearch); ok && qa.AccountSearchIgnoresQuery() && len(creatorQueries) > 1 {
		creatorQueries = creatorQueries[:1]
	}
	for _, account := range accounts {
		for _, q := range creatorQueries {
			results, err := client.Search(ctx, q, s.cfg.CreatorResults, account)
			if err != nil {
				common.LogWarn("creator search failed",
					zap.String("source", string(src)),
					zap.String("account", account),
					zap.Error(err),
				)
				if source.IsConfigError(err) {
					return dedupe(collected, s.cfg.PlatformCap)
				}
				continue
			}
			collected = append(collected, results...)
		}
	}

	for _, q := range boundQueries(queries, s.cfg.GeneralQueries) {
		results, err := client.Search(ctx, q, s.cfg.QueryResults, "")
		if err != nil {
			common.LogWarn("platform search failed",
				zap.String("source", string(src)),
				zap.String("query", q),
				zap.Error(err),
			)
			if source.IsConfigError(err) {
				break
			}
			continue
		}
		collected = append(collected, results...)
	}

	return dedupe(collected, s.cfg.PlatformCap)
}

// resolveRecipes turns search results into recipes, reusing unexpired
// cached parses and dropping low-confidence or empty extractions. A failed
// parse skips that result only.
func (s *CollectionService) resolveRecipes(ctx context.Context, perPlatform [][]source.SearchResult) []*Recipe {
	var recipes []*Recipe
	for i, results := range perPlatform {
		src := s.sources[i].Source()
		for _, res := range results {
			if cached := s.cache.GetBySource(src, res.ID); cached != nil {
				recipes = append(recipes, cached)
				continue
			}

			parsed, err := s.parser.Parse(ctx, res.Title, res.Description)
			if err != nil {
				common.LogWarn("ingredient extraction failed",
					zap.String("source", string(src)),
					zap.String("source_id", res.ID),
					zap.Error(err),
				)
				continue
			}
			if parsed.Confidence < minConfidence || len(parsed.Ingredients) == 0 {
				continue
			}

			r := &Recipe{
				ID:                   common.GenerateUUID(),
				Source:               src,
				SourceID:             res.ID,
				URL:                  res.URL,
				ThumbnailURL:         res.ThumbnailURL,
				Title:                recipeTitle(res),
				CreatorName:          res.CreatorName,
				CreatorID:            res.CreatorID,
				ExtractedIngredients: parsed.Ingredients,
				RawDescription:       res.Description,
				Duration:             res.Duration,
				PostedAt:             res.PublishedAt,
			}
			s.cache.Put(r)
			recipes = append(recipes, r)
		}
	}
	return recipes
}

// recipeTitle falls back to the caption head for platforms without titles.
func recipeTitle(res source.SearchResult) string {
	if res.Title != "" {
		return res.Title
	}
	return common.Truncate(res.Description, instagramTitleChars)
}

// dedupe keeps the first occurrence of each platform-native ID, capped.
func dedupe(results []source.SearchResult, limit int) []source.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]source.SearchResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func boundQueries(queries []string, n int) []string {
	if n > 0 && len(queries) > n {
		return queries[:n]
	}
	return queries
}

// progressEmitter wraps the callback so a panic inside it is contained.
func progressEmitter(onProgress func(ProgressEvent)) func(int, string, string) {
	return func(step int, phase, message string) {
		if onProgress == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				common.LogWarn("progress callback panicked", zap.Any("panic", r))
			}
		}()
		onProgress(ProgressEvent{
			Step:       step,
			TotalSteps: totalSteps,
			Phase:      phase,
			Message:    message,
		})
	}
}
