package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/mwac-vis/internal/domain"
	"github.com/couchcryptid/mwac-vis/internal/observability"
)

// SeasonTransformer implements Transformer using the domain normalizer for a
// fixed season.
type SeasonTransformer struct {
	seasonStartYear int
	opts            []domain.Option
	logger          *slog.Logger
	metrics         *observability.Metrics
}

// NewTransformer creates a SeasonTransformer. Row issues are logged at warn
// level and counted by kind.
func NewTransformer(seasonStartYear int, opts []domain.Option, logger *slog.Logger, metrics *observability.Metrics) *SeasonTransformer {
	return &SeasonTransformer{
		seasonStartYear: seasonStartYear,
		opts:            opts,
		logger:          logger,
		metrics:         metrics,
	}
}

func (t *SeasonTransformer) Transform(_ context.Context, raw domain.RawTable) (domain.NormalizedTable, error) {
	table, err := domain.NormalizeTable(raw, t.seasonStartYear, t.opts...)
	if err != nil {
		return domain.NormalizedTable{}, err
	}

	for _, is := range table.Issues {
		t.logger.Warn("row issue",
			"row", is.Row,
			"kind", is.Kind,
			"column", is.Column,
			"value", is.Value,
		)
		t.metrics.RowIssues.WithLabelValues(string(is.Kind)).Inc()
	}

	return table, nil
}
