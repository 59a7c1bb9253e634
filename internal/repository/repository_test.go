package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"neuron_backoffice/internal/apperrors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestTicketFindAllScopesToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTicketRepository(db)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tickets" WHERE user_id = \$1`).
		WithArgs(owner.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`SELECT \* FROM "tickets" WHERE user_id = \$1 ORDER BY priority ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id"}).
			AddRow(uuid.New().String(), "Printer on fire", owner.String()))

	page, err := repo.FindAll(context.Background(), PaginationQuery{Page: 2, Limit: 5, Sort: "priority", Order: "asc"}, &owner)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Printer on fire", page.Data[0].Title)
	assert.Equal(t, PageMeta{
		Page:            2,
		Limit:           5,
		TotalItems:      11,
		TotalPages:      3,
		HasPreviousPage: true,
		HasNextPage:     true,
	}, page.Meta)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationExpireIgnoresTerminalRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "whatsapp_conversations" SET .*status.* WHERE .*id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Expire(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationExpireIdle(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConversationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "whatsapp_conversations" SET .* WHERE status = \$\d+ AND updated_at < \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.ExpireIdle(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionFindByIDsReportsMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPermissionRepository(db)
	known, missing := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "permissions" WHERE id IN \(\$1,\$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "resource", "action"}).
			AddRow(known.String(), "USERS", "READ"))

	_, err := repo.FindByIDs(context.Background(), []uuid.UUID{known, missing})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Contains(t, err.Error(), missing.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail(context.Background(), "ghost@neuron.dev")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))
	assert.True(t, errors.Is(translateError(gorm.ErrRecordNotFound), apperrors.ErrNotFound))
	assert.True(t, errors.Is(translateError(gorm.ErrDuplicatedKey), apperrors.ErrConflict))

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	assert.True(t, errors.Is(translateError(unique), apperrors.ErrConflict))

	fk := &pgconn.PgError{Code: "23503", TableName: "users"}
	assert.True(t, errors.Is(translateError(fk), apperrors.ErrConflict))

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}

func TestPaginationDefaults(t *testing.T) {
	q := PaginationQuery{Limit: 1000, Sort: "password; DROP TABLE users", Order: "sideways"}.normalized()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 100, q.Limit)
	assert.Equal(t, "DESC", q.Order)
	assert.Equal(t, "created_at DESC", q.orderClause(userSortColumns))

	meta := newPageMeta(PaginationQuery{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNextPage)
	assert.False(t, meta.HasPreviousPage)
}
