package service

import (
	"context"
	"fmt"

	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/pagination"
)

// TransactionLogServiceImpl implements ports.TransactionLogService.
type TransactionLogServiceImpl struct {
	txs ports.TransactionRepository
}

func NewTransactionLogService(txs ports.TransactionRepository) *TransactionLogServiceImpl {
	return &TransactionLogServiceImpl{txs: txs}
}

// ListForUser pages a user's history, newest first.
func (s *TransactionLogServiceImpl) ListForUser(ctx context.Context, params ports.TransactionListParams) (pagination.Page[domain.Transaction], error) {
	if params.Currency != nil {
		c, ok := domain.ParseCurrency(string(*params.Currency))
		if !ok {
			return pagination.Page[domain.Transaction]{}, apperror.ErrUnsupportedCurrency(string(*params.Currency))
		}
		params.Currency = &c
	}
	items, total, err := s.txs.ListByUser(ctx, params)
	if err != nil {
		return pagination.Page[domain.Transaction]{}, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return pagination.NewPage(items, total, params.Page), nil
}

func (s *TransactionLogServiceImpl) ListAll(ctx context.Context, page pagination.Params) (pagination.Page[domain.TransactionWithOwner], error) {
	items, total, err := s.txs.ListAll(ctx, page)
	if err != nil {
		return pagination.Page[domain.TransactionWithOwner]{}, apperror.InternalError(fmt.Errorf("list all transactions: %w", err))
	}
	return pagination.NewPage(items, total, page), nil
}
