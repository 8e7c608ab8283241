package repository

import (
	"context"
	"errors"
	"fmt"

	"cake-tracker/internal/domain"
)

// ErrIncidentNotFound is wrapped by StoreError when an update targets an unknown id.
var ErrIncidentNotFound = errors.New("incident not found")

// StoreError 存储层错误（网络/认证/约束失败），调用方只做展示处理，不重试
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IncidentsRepository cake_incidents 表访问接口
type IncidentsRepository interface {
	// ListIncidents returns every incident, newest created_at first.
	ListIncidents(ctx context.Context) ([]domain.Incident, error)

	// CreateIncident inserts one owed incident dated today and returns the
	// persisted row, including the store-assigned id and created_at.
	// notes == "" is stored as NULL.
	CreateIncident(ctx context.Context, personName, notes string) (*domain.Incident, error)

	// SetDelivered updates cake_delivered on exactly one row.
	SetDelivered(ctx context.Context, id string, delivered bool) error

	// SearchNames returns person_name of every row containing fragment
	// (case-insensitive), newest first. Grouping is left to the caller.
	SearchNames(ctx context.Context, fragment string) ([]string, error)
}
