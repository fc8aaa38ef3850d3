// Package model holds the table mappings for the postgres adapter.
package model

import "time"

type RunState struct {
	RunID         string    `gorm:"column:run_id;primaryKey"`
	Age           int32     `gorm:"column:age"`
	Stats         []byte    `gorm:"column:stats;type:jsonb"`
	Relationships []byte    `gorm:"column:relationships;type:jsonb"`
	CloseCalls    int32     `gorm:"column:close_calls"`
	Alive         bool      `gorm:"column:alive"`
	DeathCause    string    `gorm:"column:death_cause"`
	History       []byte    `gorm:"column:history;type:jsonb"`
	Offer         []byte    `gorm:"column:offer;type:jsonb"`
	Version       int64     `gorm:"column:version"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (RunState) TableName() string { return "run_states" }

type TurnExecution struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID          string    `gorm:"column:run_id;index:idx_turn_exec_key,unique"`
	IdempotencyKey string    `gorm:"column:idempotency_key;index:idx_turn_exec_key,unique"`
	Option         string    `gorm:"column:option"`
	Result         []byte    `gorm:"column:result;type:jsonb"`
	AppliedAt      time.Time `gorm:"column:applied_at"`
}

func (TurnExecution) TableName() string { return "turn_executions" }

type RunEvent struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID      string    `gorm:"column:run_id;index"`
	Type       string    `gorm:"column:type"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
	Payload    []byte    `gorm:"column:payload;type:jsonb"`
}

func (RunEvent) TableName() string { return "run_events" }
