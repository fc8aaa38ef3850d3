package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lifeline/internal/adapter/repo/gorm/model"
	"lifeline/internal/app/ports"
	"lifeline/internal/domain/life"

	"gorm.io/gorm"
)

type TurnExecutionRepo struct {
	db *gorm.DB
}

func NewTurnExecutionRepo(db *gorm.DB) TurnExecutionRepo {
	return TurnExecutionRepo{db: db}
}

func (r TurnExecutionRepo) GetByIdempotencyKey(ctx context.Context, runID, key string) (*ports.TurnExecutionRecord, error) {
	var m model.TurnExecution
	err := getDBFromCtx(ctx, r.db).
		Where("run_id = ? AND idempotency_key = ?", runID, key).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}

	var result ports.TurnResult
	if len(m.Result) > 0 {
		if err := json.Unmarshal(m.Result, &result); err != nil {
			return nil, fmt.Errorf("unmarshal turn result: %w", err)
		}
	}
	return &ports.TurnExecutionRecord{
		RunID:          m.RunID,
		IdempotencyKey: m.IdempotencyKey,
		Option:         life.Option(m.Option),
		Result:         result,
		AppliedAt:      m.AppliedAt,
	}, nil
}

func (r TurnExecutionRepo) SaveExecution(ctx context.Context, execution ports.TurnExecutionRecord) error {
	result, err := json.Marshal(execution.Result)
	if err != nil {
		return fmt.Errorf("marshal turn result: %w", err)
	}
	m := model.TurnExecution{
		RunID:          execution.RunID,
		IdempotencyKey: execution.IdempotencyKey,
		Option:         string(execution.Option),
		Result:         result,
		AppliedAt:      execution.AppliedAt,
	}
	return getDBFromCtx(ctx, r.db).Create(&m).Error
}
