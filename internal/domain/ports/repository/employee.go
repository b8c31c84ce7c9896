package repository

import (
	"context"

	"corporate-gifting/internal/domain/model"
)

// EmployeeRepository reads the organization roster.
type EmployeeRepository interface {
	// ListActive returns active employees of orgID; an empty department matches all.
	ListActive(ctx context.Context, tx Tx, orgID, department string) ([]*model.Employee, error)
	Save(ctx context.Context, tx Tx, e *model.Employee) error
}
