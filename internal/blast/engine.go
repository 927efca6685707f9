// Package blast computes, persists, and serves file-level blast radii: the
// set of files transitively dependent on a given file, classified and
// scored for risk.
package blast

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/memograph/memograph-go/internal/depgraph"
	"github.com/memograph/memograph-go/internal/models"
	"github.com/memograph/memograph-go/internal/risk"
	"github.com/memograph/memograph-go/internal/storage"
)

const (
	// DefaultMaxDepth bounds the dependency BFS
	DefaultMaxDepth = 10
	// DefaultMaxFiles is the scan window for a full batch recomputation
	DefaultMaxFiles = 2000
	// DefaultOnDemandMaxFiles is the smaller window used for a cache miss
	DefaultOnDemandMaxFiles = 500

	// highImpactThreshold counts a file as high impact in batch stats
	highImpactThreshold = 50
)

// Engine computes and caches blast radii for one project
type Engine struct {
	store       storage.Store
	builder     depgraph.Builder
	logger      *logrus.Logger
	projectPath string

	maxDepth         int
	maxFiles         int
	onDemandMaxFiles int
}

// NewEngine creates a blast radius engine rooted at projectPath
func NewEngine(store storage.Store, builder depgraph.Builder, projectPath string, logger *logrus.Logger) *Engine {
	return &Engine{
		store:            store,
		builder:          builder,
		logger:           logger,
		projectPath:      projectPath,
		maxDepth:         DefaultMaxDepth,
		maxFiles:         DefaultMaxFiles,
		onDemandMaxFiles: DefaultOnDemandMaxFiles,
	}
}

// SetLimits overrides the traversal depth and scan windows; zero or
// negative values keep the current ones.
func (e *Engine) SetLimits(maxDepth, maxFiles, onDemandMaxFiles int) {
	if maxDepth > 0 {
		e.maxDepth = maxDepth
	}
	if maxFiles > 0 {
		e.maxFiles = maxFiles
	}
	if onDemandMaxFiles > 0 {
		e.onDemandMaxFiles = onDemandMaxFiles
	}
}

// CalculateBlastScore folds the traversal aggregates into a 0-100 score
func CalculateBlastScore(totalAffected, affectedTests, affectedRoutes, maxDepth int) float64 {
	baseScore := math.Min(50, math.Log2(float64(totalAffected+1))*10)

	testScore := 0.0
	if affectedTests > 0 {
		testScore = 20
	}
	routeScore := 0.0
	if affectedRoutes > 0 {
		routeScore = 20
	}
	depthScore := 0.0
	if maxDepth > 3 {
		depthScore = 10
	}

	return risk.ClampScore(baseScore + testScore + routeScore + depthScore)
}

// ComputeBlastRadius recomputes and persists the blast radius of every
// file in the project that has at least one reachable dependent. Per-file
// failures are logged and counted, never fatal to the batch.
func (e *Engine) ComputeBlastRadius(ctx context.Context, project string) (*models.BlastBatchResult, error) {
	runID := uuid.New().String()
	log := e.logger.WithFields(logrus.Fields{"project": project, "run_id": runID})

	graph, err := e.builder.BuildDependencyGraph(ctx, e.projectPath, e.maxFiles)
	if err != nil {
		return nil, err
	}
	adjacency := toAdjacency(graph)

	files := make([]string, 0, len(adjacency))
	for file := range adjacency {
		files = append(files, file)
	}
	sort.Strings(files)

	result := &models.BlastBatchResult{}
	for _, file := range files {
		traversal := ComputeTransitiveDependents(file, adjacency, e.maxDepth)
		if len(traversal.Records) == 0 {
			continue
		}

		edges, summary := e.buildRows(project, file, traversal)
		if err := e.store.ReplaceBlastRadius(ctx, project, file, edges, summary); err != nil {
			log.WithError(err).WithField("file", file).Error("blast radius persist failed")
			result.Errors++
			continue
		}

		result.Processed++
		if summary.BlastScore >= highImpactThreshold {
			result.HighImpact++
		}
	}

	log.WithFields(logrus.Fields{
		"processed":   result.Processed,
		"high_impact": result.HighImpact,
		"errors":      result.Errors,
	}).Info("blast radius recomputed")

	return result, nil
}

// GetBlastRadius serves a file's blast radius cache-first: a stored
// summary is reconstructed from its persisted edges unless forceRefresh is
// set, in which case (or on a cache miss) it is recomputed against the
// on-demand scan window and persisted. A file nothing depends on yields a
// zeroed low-risk result, never nil.
func (e *Engine) GetBlastRadius(ctx context.Context, project, file string, forceRefresh bool) (*models.BlastResult, error) {
	if !forceRefresh {
		summary, err := e.store.GetBlastSummary(ctx, project, file)
		if err == nil {
			return e.reconstruct(ctx, project, summary)
		}
		if err != storage.ErrNotFound {
			e.logger.WithError(err).Debug("blast summary lookup failed, treating as cache miss")
		}
	}

	graph, err := e.builder.BuildDependencyGraph(ctx, e.projectPath, e.onDemandMaxFiles)
	if err != nil {
		return nil, err
	}
	traversal := ComputeTransitiveDependents(file, toAdjacency(graph), e.maxDepth)

	edges, summary := e.buildRows(project, file, traversal)
	if err := e.store.ReplaceBlastRadius(ctx, project, file, edges, summary); err != nil {
		return nil, err
	}

	return resultFromRows(summary, edges), nil
}

// GetHighImpactFiles lists cached summaries at or above minScore, highest
// first. A missing table degrades to an empty list.
func (e *Engine) GetHighImpactFiles(ctx context.Context, project string, minScore float64) []models.BlastSummary {
	summaries, err := e.store.HighImpactFiles(ctx, project, minScore)
	if err != nil {
		e.logger.WithError(err).Debug("high impact query failed, returning empty")
		return nil
	}
	return summaries
}

func (e *Engine) reconstruct(ctx context.Context, project string, summary *models.BlastSummary) (*models.BlastResult, error) {
	edges, err := e.store.GetBlastEdges(ctx, project, summary.FilePath)
	if err != nil {
		e.logger.WithError(err).Debug("blast edge lookup failed, serving summary counts only")
		edges = nil
	}
	return resultFromRows(summary, edges), nil
}

func (e *Engine) buildRows(project, file string, traversal *TransitiveResult) ([]models.BlastRadiusEdge, *models.BlastSummary) {
	now := time.Now().UTC()

	affected := make([]string, 0, len(traversal.Records))
	for f := range traversal.Records {
		affected = append(affected, f)
	}
	sort.Strings(affected)

	summary := &models.BlastSummary{
		Project:    project,
		FilePath:   file,
		MaxDepth:   traversal.MaxDepth,
		ComputedAt: now,
	}

	edges := make([]models.BlastRadiusEdge, 0, len(affected))
	for _, f := range affected {
		record := traversal.Records[f]
		edge := models.BlastRadiusEdge{
			Project:        project,
			SourceFile:     file,
			AffectedFile:   f,
			Distance:       record.Distance,
			DependencyPath: record.Path,
			IsTest:         IsTestFile(f),
			IsRoute:        IsRouteFile(f),
			ComputedAt:     now,
		}
		edges = append(edges, edge)

		summary.TotalAffected++
		if edge.Distance == 1 {
			summary.DirectDependents++
		} else {
			summary.TransitiveDependents++
		}
		if edge.IsTest {
			summary.AffectedTests++
		}
		if edge.IsRoute {
			summary.AffectedRoutes++
		}
	}

	summary.BlastScore = CalculateBlastScore(summary.TotalAffected, summary.AffectedTests, summary.AffectedRoutes, summary.MaxDepth)
	return edges, summary
}

func resultFromRows(summary *models.BlastSummary, edges []models.BlastRadiusEdge) *models.BlastResult {
	result := &models.BlastResult{
		FilePath:             summary.FilePath,
		DirectDependents:     []string{},
		TransitiveDependents: []string{},
		AffectedTests:        []string{},
		AffectedRoutes:       []string{},
		TotalAffected:        summary.TotalAffected,
		MaxDepth:             summary.MaxDepth,
		BlastScore:           summary.BlastScore,
		RiskLevel:            risk.Classify(summary.BlastScore).String(),
	}
	for _, edge := range edges {
		if edge.Distance == 1 {
			result.DirectDependents = append(result.DirectDependents, edge.AffectedFile)
		} else {
			result.TransitiveDependents = append(result.TransitiveDependents, edge.AffectedFile)
		}
		if edge.IsTest {
			result.AffectedTests = append(result.AffectedTests, edge.AffectedFile)
		}
		if edge.IsRoute {
			result.AffectedRoutes = append(result.AffectedRoutes, edge.AffectedFile)
		}
	}
	return result
}

func toAdjacency(graph map[string]*depgraph.FileNode) map[string][]string {
	adjacency := make(map[string][]string, len(graph))
	for file, node := range graph {
		if node == nil {
			continue
		}
		adjacency[file] = node.Dependents
	}
	return adjacency
}
