// Package impact walks the precomputed call graph to find the callers of a
// changed file or symbol, correlates them with test coverage, and scores
// how risky the change is.
package impact

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/memograph/memograph-go/internal/models"
	"github.com/memograph/memograph-go/internal/risk"
	"github.com/memograph/memograph-go/internal/storage"
)

const (
	// maxCallDepth bounds transitive caller traversal
	maxCallDepth = 4
	// maxFileCallers caps the file-level (any symbol) caller query
	maxFileCallers = 50
	// maxExpansionEdges caps each transitive expansion query
	maxExpansionEdges = 20
	// fileLevelDiscount penalizes file-level matches vs symbol-level ones
	fileLevelDiscount = 0.8
	// neighborTestDiscount penalizes tests inherited from a direct caller's file
	neighborTestDiscount = 0.7
	// neighborTestLimit caps test mappings pulled per direct-caller file
	neighborTestLimit = 3
	// symbolBoost rewards a test mapping that names the changed symbol
	symbolBoost = 0.1

	// DefaultMaxExpansions is the traversal ceiling: dense call graphs can
	// otherwise keep the BFS busy far longer than any caller wants to wait
	DefaultMaxExpansions = 10000
)

// Analyzer answers "what breaks if this changes" against the call graph
type Analyzer struct {
	store         storage.Store
	logger        *logrus.Logger
	maxDepth      int
	maxExpansions int
}

// NewAnalyzer creates a new impact analyzer
func NewAnalyzer(store storage.Store, logger *logrus.Logger) *Analyzer {
	return &Analyzer{store: store, logger: logger, maxDepth: maxCallDepth, maxExpansions: DefaultMaxExpansions}
}

// SetMaxDepth overrides the transitive traversal depth; zero or negative
// keeps the current value.
func (a *Analyzer) SetMaxDepth(depth int) {
	if depth > 0 {
		a.maxDepth = depth
	}
}

func callerKey(file, symbol string) string {
	return file + "\x00" + symbol
}

// AnalyzeImpact finds direct and transitive callers of (file, symbol) and
// the tests covering them. A nil symbol analyzes the whole file. Missing
// graph tables degrade to an empty result, never an error.
func (a *Analyzer) AnalyzeImpact(ctx context.Context, project, file string, symbol *string) *models.ImpactResult {
	result := &models.ImpactResult{
		File:              file,
		Symbol:            symbol,
		DirectCallers:     []models.CallerInfo{},
		TransitiveCallers: []models.CallerInfo{},
		AffectedTests:     []models.TestInfo{},
	}

	// Step 1: direct callers. Symbol-level edges land first and are never
	// overwritten by the discounted file-level entries.
	merged := make(map[string]bool)
	if symbol != nil {
		edges, err := a.store.DirectCallers(ctx, project, file, *symbol)
		if err != nil {
			a.logger.WithError(err).Debug("direct caller query failed, continuing with empty set")
		}
		for _, e := range edges {
			key := callerKey(e.CallerFile, e.CallerSymbol)
			if merged[key] {
				continue
			}
			merged[key] = true
			result.DirectCallers = append(result.DirectCallers, models.CallerInfo{
				File:       e.CallerFile,
				Symbol:     e.CallerSymbol,
				Distance:   1,
				Confidence: risk.ClampConfidence(e.Confidence),
			})
		}
	}

	fileEdges, err := a.store.FileCallers(ctx, project, file, maxFileCallers)
	if err != nil {
		a.logger.WithError(err).Debug("file caller query failed, continuing with empty set")
	}
	for _, e := range fileEdges {
		key := callerKey(e.CallerFile, e.CallerSymbol)
		if merged[key] {
			continue
		}
		merged[key] = true
		result.DirectCallers = append(result.DirectCallers, models.CallerInfo{
			File:       e.CallerFile,
			Symbol:     e.CallerSymbol,
			Distance:   1,
			Confidence: risk.ClampConfidence(e.Confidence * fileLevelDiscount),
		})
	}

	// Step 2: transitive callers, breadth-first with compounding confidence
	result.TransitiveCallers = a.expandTransitive(ctx, project, file, symbol, result.DirectCallers)

	// Step 3: affected tests
	result.AffectedTests = a.collectTests(ctx, project, file, symbol, result.DirectCallers)

	// Step 4: risk score
	result.RiskScore = a.scoreRisk(result)
	result.RiskLevel = risk.Classify(result.RiskScore).String()

	return result
}

func (a *Analyzer) expandTransitive(ctx context.Context, project, file string, symbol *string, direct []models.CallerInfo) []models.CallerInfo {
	visited := make(map[string]bool)
	if symbol != nil {
		visited[callerKey(file, *symbol)] = true
	} else {
		visited[callerKey(file, "")] = true
	}

	queue := make([]models.CallerInfo, 0, len(direct))
	for _, c := range direct {
		visited[callerKey(c.File, c.Symbol)] = true
		queue = append(queue, c)
	}

	transitive := []models.CallerInfo{}
	expansions := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.Distance >= a.maxDepth {
			continue
		}
		if expansions >= a.maxExpansions {
			a.logger.WithField("file", file).Warn("transitive caller traversal hit expansion ceiling")
			break
		}
		expansions++

		edges, err := a.store.CallersOf(ctx, project, current.File, current.Symbol, maxExpansionEdges)
		if err != nil {
			a.logger.WithError(err).Debug("transitive caller query failed, stopping expansion for this node")
			continue
		}
		for _, e := range edges {
			key := callerKey(e.CallerFile, e.CallerSymbol)
			if visited[key] {
				continue
			}
			visited[key] = true
			child := models.CallerInfo{
				File:       e.CallerFile,
				Symbol:     e.CallerSymbol,
				Distance:   current.Distance + 1,
				Confidence: risk.ClampConfidence(current.Confidence * e.Confidence),
			}
			transitive = append(transitive, child)
			queue = append(queue, child)
		}
	}

	return transitive
}

func (a *Analyzer) collectTests(ctx context.Context, project, file string, symbol *string, direct []models.CallerInfo) []models.TestInfo {
	tests := []models.TestInfo{}
	seen := make(map[string]bool)

	rows, err := a.store.TestsForSource(ctx, project, file, 0)
	if err != nil {
		a.logger.WithError(err).Debug("test map query failed, continuing with empty set")
	}
	for _, r := range rows {
		if seen[r.TestFile] {
			continue
		}
		seen[r.TestFile] = true
		confidence := r.Confidence
		if symbol != nil && r.SourceSymbol != nil && *r.SourceSymbol == *symbol {
			confidence = risk.ClampConfidence(confidence + symbolBoost)
		}
		tests = append(tests, models.TestInfo{
			TestFile:     r.TestFile,
			SourceSymbol: r.SourceSymbol,
			MatchType:    r.MatchType,
			Confidence:   confidence,
		})
	}

	// Tests covering a direct caller's file also give some signal
	seenFiles := make(map[string]bool)
	for _, c := range direct {
		if c.Distance != 1 || c.File == file || seenFiles[c.File] {
			continue
		}
		seenFiles[c.File] = true

		neighborRows, err := a.store.TestsForSource(ctx, project, c.File, neighborTestLimit)
		if err != nil {
			a.logger.WithError(err).Debug("neighbor test map query failed, skipping")
			continue
		}
		for _, r := range neighborRows {
			if seen[r.TestFile] {
				continue
			}
			seen[r.TestFile] = true
			tests = append(tests, models.TestInfo{
				TestFile:     r.TestFile,
				SourceSymbol: r.SourceSymbol,
				MatchType:    r.MatchType,
				Confidence:   risk.ClampConfidence(r.Confidence * neighborTestDiscount),
			})
		}
	}

	sort.SliceStable(tests, func(i, j int) bool {
		return tests[i].Confidence > tests[j].Confidence
	})
	return tests
}

func (a *Analyzer) scoreRisk(result *models.ImpactResult) float64 {
	directScore := math.Min(40, float64(len(result.DirectCallers))*8)
	transitiveScore := math.Min(25, math.Log2(float64(len(result.TransitiveCallers)+1))*8)

	testScore := 25.0
	if len(result.AffectedTests) > 0 {
		testScore = math.Max(0, 25-float64(len(result.AffectedTests))*5)
	}

	files := make(map[string]bool)
	for _, c := range result.DirectCallers {
		files[c.File] = true
	}
	for _, c := range result.TransitiveCallers {
		files[c.File] = true
	}
	spreadScore := math.Min(10, float64(len(files))*2)

	return risk.ClampScore(directScore + transitiveScore + testScore + spreadScore)
}

// AnalyzeMultiFileImpact analyzes each file (no symbol) and returns the
// results riskiest first - a triage view for multi-file changes.
func (a *Analyzer) AnalyzeMultiFileImpact(ctx context.Context, project string, files []string) []*models.ImpactResult {
	results := make([]*models.ImpactResult, 0, len(files))
	for _, file := range files {
		results = append(results, a.AnalyzeImpact(ctx, project, file, nil))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RiskScore > results[j].RiskScore
	})
	return results
}
