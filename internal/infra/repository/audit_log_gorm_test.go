package repository_test

import (
	"context"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/repository"
	repo "storefront/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogGorm_Create(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewAuditLogGormRepository(db)

	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err := r.Create(context.Background(), model.AuditLog{Actor: "webhook", Action: model.AuditActionOrderShipped, ResourceID: 7})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogGorm_ListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	r := repository.NewAuditLogGormRepository(db)

	action := model.AuditActionNotificationFailed
	id := int64(7)

	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE action = .+ AND resource_id = .+ ORDER BY id DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "actor", "action", "resource_type", "resource_id"}).
			AddRow(4, "poll", "NOTIFICATION_FAILED", "order", 7))

	logs, err := r.List(context.Background(), repo.AuditLogFilter{Action: &action, ResourceID: &id, Limit: 20, Offset: 10})

	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "poll", logs[0].Actor)
	assert.NoError(t, mock.ExpectationsWereMet())
}
