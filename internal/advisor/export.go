package advisor

import (
	"context"
	"errors"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
	"github.com/STTM-NSU/advisor-workspace/internal/worker"
)

// Export is a rendered holdings document.
type Export struct {
	Filename string
	Content  []byte
}

const _exportFilename = "holdings-export.xlsx"

type ExportService struct {
	pool *worker.Pool

	logger logger.Logger
}

func NewExportService(pool *worker.Pool, logger logger.Logger) *ExportService {
	return &ExportService{
		pool:   pool,
		logger: logger.With("component", "export-service"),
	}
}

// ExportHoldings renders the account's holdings on the export pool. Rendering is not
// implemented yet, so every format yields the same empty workbook.
func (s *ExportService) ExportHoldings(ctx context.Context, req model.ExportRequest) (Export, error) {
	format := req.Format
	if format == "" {
		format = model.ExportExcel
	}

	export, err := worker.Go(s.pool, func() (Export, error) {
		s.logger.Infof("exporting holdings of account %s as %s", req.AccountID, format)
		return Export{Filename: _exportFilename, Content: []byte{}}, nil
	}).Await(ctx)
	if errors.Is(err, worker.ErrRejected) || errors.Is(err, worker.ErrShutdown) {
		return Export{}, apperror.Unavailable("export capacity exhausted, retry later", err)
	}
	return export, err
}
