package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maeshaii/backend-wny/internal/models"
	"golang.org/x/sync/errgroup"
)

// Source fetches one statistics snapshot. The API client and the statistics
// service both satisfy it.
type Source interface {
	Statistics(ctx context.Context, year, course string, statsType models.StatsType) (*models.StatsSnapshot, error)
}

// DetailSource fetches the per-alumnus rows shown under each summary.
type DetailSource interface {
	DetailedAlumniData(ctx context.Context, year, course string) (*models.DetailedData, error)
}

type Builder struct {
	source Source
	logger *slog.Logger
}

func NewBuilder(source Source, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{source: source, logger: logger}
}

// Generate fetches the snapshot for statsType. ALL fans out to the four fixed
// types; if any of them fails the whole call fails and nothing is returned.
func (b *Builder) Generate(ctx context.Context, year, course string, statsType models.StatsType) (map[models.StatsType]*models.StatsSnapshot, error) {
	if statsType != models.StatsAll {
		snap, err := b.source.Statistics(ctx, year, course, statsType)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s statistics: %w", statsType, err)
		}
		return map[models.StatsType]*models.StatsSnapshot{statsType: snap}, nil
	}

	results := make([]*models.StatsSnapshot, len(models.FixedStatsTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range models.FixedStatsTypes {
		g.Go(func() error {
			snap, err := b.source.Statistics(gctx, year, course, t)
			if err != nil {
				return fmt.Errorf("failed to fetch %s statistics: %w", t, err)
			}
			results[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		b.logger.Error("Statistics generation failed", "year", year, "course", course, "error", err)
		return nil, err
	}

	merged := make(map[models.StatsType]*models.StatsSnapshot, len(results))
	for i, t := range models.FixedStatsTypes {
		merged[t] = results[i]
	}
	b.logger.Info("Statistics generated", "type", statsType, "year", year, "course", course)
	return merged, nil
}

// Details loads detailed rows once and shares them across every generated
// type, since the detail query does not depend on the statistics type.
func Details(ctx context.Context, src DetailSource, year, course string, types []models.StatsType) (map[models.StatsType]*models.DetailedData, error) {
	data, err := src.DetailedAlumniData(ctx, year, course)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detailed data: %w", err)
	}
	out := make(map[models.StatsType]*models.DetailedData, len(types))
	for _, t := range types {
		out[t] = data
	}
	return out, nil
}
