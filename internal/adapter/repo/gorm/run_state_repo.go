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

type RunStateRepo struct {
	db *gorm.DB
}

func NewRunStateRepo(db *gorm.DB) RunStateRepo {
	return RunStateRepo{db: db}
}

func (r RunStateRepo) GetByRunID(ctx context.Context, runID string) (life.RunState, error) {
	var m model.RunState
	if err := getDBFromCtx(ctx, r.db).Where("run_id = ?", runID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return life.RunState{}, ports.ErrNotFound
		}
		return life.RunState{}, err
	}
	return stateFromModel(m)
}

func (r RunStateRepo) SaveWithVersion(ctx context.Context, state life.RunState, expectedVersion int64) error {
	m, err := stateToModel(state)
	if err != nil {
		return err
	}
	db := getDBFromCtx(ctx, r.db)
	if expectedVersion == 0 {
		return db.Create(&m).Error
	}

	res := db.Model(&model.RunState{}).
		Where("run_id = ? AND version = ?", state.RunID, expectedVersion).
		Updates(map[string]any{
			"age":           m.Age,
			"stats":         m.Stats,
			"relationships": m.Relationships,
			"close_calls":   m.CloseCalls,
			"alive":         m.Alive,
			"death_cause":   m.DeathCause,
			"history":       m.History,
			"offer":         m.Offer,
			"version":       m.Version,
			"updated_at":    m.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func stateToModel(state life.RunState) (model.RunState, error) {
	stats, err := json.Marshal(state.Stats)
	if err != nil {
		return model.RunState{}, fmt.Errorf("marshal stats: %w", err)
	}
	rels, err := json.Marshal(state.Relationships)
	if err != nil {
		return model.RunState{}, fmt.Errorf("marshal relationships: %w", err)
	}
	history, err := json.Marshal(state.History)
	if err != nil {
		return model.RunState{}, fmt.Errorf("marshal history: %w", err)
	}
	var offer []byte
	if state.Offer != nil {
		offer, err = json.Marshal(state.Offer)
		if err != nil {
			return model.RunState{}, fmt.Errorf("marshal offer: %w", err)
		}
	}
	return model.RunState{
		RunID:         state.RunID,
		Age:           int32(state.Age),
		Stats:         stats,
		Relationships: rels,
		CloseCalls:    int32(state.CloseCalls),
		Alive:         state.Alive,
		DeathCause:    string(state.DeathCause),
		History:       history,
		Offer:         offer,
		Version:       state.Version,
		UpdatedAt:     state.UpdatedAt,
	}, nil
}

func stateFromModel(m model.RunState) (life.RunState, error) {
	state := life.RunState{
		RunID:      m.RunID,
		Age:        int(m.Age),
		CloseCalls: int(m.CloseCalls),
		Alive:      m.Alive,
		DeathCause: life.DeathCause(m.DeathCause),
		Version:    m.Version,
		UpdatedAt:  m.UpdatedAt,
	}
	if len(m.Stats) > 0 {
		if err := json.Unmarshal(m.Stats, &state.Stats); err != nil {
			return life.RunState{}, fmt.Errorf("unmarshal stats: %w", err)
		}
	}
	if len(m.Relationships) > 0 {
		if err := json.Unmarshal(m.Relationships, &state.Relationships); err != nil {
			return life.RunState{}, fmt.Errorf("unmarshal relationships: %w", err)
		}
	}
	if len(m.History) > 0 {
		if err := json.Unmarshal(m.History, &state.History); err != nil {
			return life.RunState{}, fmt.Errorf("unmarshal history: %w", err)
		}
	}
	if len(m.Offer) > 0 {
		var offer life.TurnOffer
		if err := json.Unmarshal(m.Offer, &offer); err != nil {
			return life.RunState{}, fmt.Errorf("unmarshal offer: %w", err)
		}
		state.Offer = &offer
	}
	return state, nil
}
