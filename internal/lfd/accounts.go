package lfd

import (
	"context"

	"github.com/STTM-NSU/advisor-workspace/internal/apperror"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/model"
)

const ProcGetAccountDetails = "sp_get_account_details"

type AccountDataService struct {
	exec Executor

	logger logger.Logger
}

func NewAccountDataService(exec Executor, logger logger.Logger) *AccountDataService {
	return &AccountDataService{
		exec:   exec,
		logger: logger.With("component", "account-data"),
	}
}

// GetAccount returns NotFound when the procedure yields no row, and a database
// error when the call itself failed.
func (s *AccountDataService) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	logger.WithRequest(ctx, s.logger).Debugf("getting account details for %s", accountID)

	resp, err := s.exec.ExecuteRead(ctx, ProcGetAccountDetails, map[string]any{"p_account_id": accountID})
	if err != nil {
		return nil, err
	}
	if resp.ErrorCode != "" {
		return nil, apperror.Database(resp.Message(), nil)
	}
	if !resp.Success() || len(resp.Data) == 0 {
		return nil, apperror.NotFound("Account", accountID)
	}

	account, err := accountFromRow(resp.Data[0])
	if err != nil {
		return nil, apperror.Database("Failed to parse account data", err)
	}
	return &account, nil
}
