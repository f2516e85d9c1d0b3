package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/erazemk/kmetija/internal/csvcodec"
	"github.com/erazemk/kmetija/internal/model"
)

// ImportFailure is an item that decoded but could not be stored.
type ImportFailure struct {
	Item model.Item
	Err  error
}

// ImportResult summarises one ImportCSV run.
type ImportResult struct {
	RunID   uuid.UUID
	Created []model.Item
	Failed  []ImportFailure
	// Skipped are lines that could not be parsed.
	Skipped []csvcodec.LineError
	// Dropped counts lines ignored for missing name or quantity.
	Dropped int
}

// ImportCSV decodes the file at path and creates every decoded item, one at a
// time. A failing item is recorded and the rest are still attempted; only a
// failure to open or read the file is returned as an error.
func (svc *Service) ImportCSV(ctx context.Context, path string) (*ImportResult, error) {
	runID := uuid.New()
	logger := slog.With("run_id", runID.String(), "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	decoded, err := csvcodec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	logger.InfoContext(ctx, "import started",
		"items", len(decoded.Items), "skipped_lines", len(decoded.Skipped), "dropped_lines", decoded.Dropped)
	for _, le := range decoded.Skipped {
		logger.WarnContext(ctx, "skipped csv line", "line", le.Line, "error", le.Err)
	}

	res := &ImportResult{
		RunID:   runID,
		Skipped: decoded.Skipped,
		Dropped: decoded.Dropped,
	}
	for _, item := range decoded.Items {
		if err := svc.store.Create(ctx, item); err != nil {
			logger.WarnContext(ctx, "import item failed", "name", item.Common().Name, "error", err)
			res.Failed = append(res.Failed, ImportFailure{Item: item, Err: err})
			continue
		}
		res.Created = append(res.Created, item)
	}

	logger.InfoContext(ctx, "import finished", "created", len(res.Created), "failed", len(res.Failed))
	return res, nil
}
