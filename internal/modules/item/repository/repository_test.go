package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"anoa.com/lostfound/internal/entity"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupItemMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewRepository(db), mock
}

func lockedItemRows(id uuid.UUID, resolved bool, claimCount int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "kind", "reporter_id", "resolved", "name", "claim_count"}).
		AddRow(id.String(), entity.ItemKindLost, uuid.NewString(), resolved, "Wallet", claimCount)
}

func TestAppendClaim_LocksRowAndAssignsNextSeq(t *testing.T) {
	repo, mock := setupItemMock(t)
	itemID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(lockedItemRows(itemID, false, 2))
	mock.ExpectExec(`INSERT INTO "claims"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "items" SET "claim_count"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claim := &entity.Claim{ClaimantID: uuid.New(), Message: "mine"}
	err := repo.AppendClaim(context.Background(), itemID, claim, func(item *entity.Item) error {
		assert.Equal(t, itemID, item.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, claim.Seq)
	assert.Equal(t, itemID, claim.ItemID)
	assert.NotEqual(t, uuid.Nil, claim.ID)
	assert.Equal(t, entity.ClaimStatusPending, claim.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendClaim_GuardRejectionRollsBack(t *testing.T) {
	repo, mock := setupItemMock(t)
	itemID := uuid.New()
	errResolved := errors.New("item is already resolved")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(lockedItemRows(itemID, true, 4))
	mock.ExpectRollback()

	claim := &entity.Claim{ClaimantID: uuid.New(), Message: "mine"}
	err := repo.AppendClaim(context.Background(), itemID, claim, func(item *entity.Item) error {
		if item.Resolved {
			return errResolved
		}
		return nil
	})
	assert.ErrorIs(t, err, errResolved)
	assert.Zero(t, claim.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendClaim_MissingItem(t *testing.T) {
	repo, mock := setupItemMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "items" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.AppendClaim(context.Background(), uuid.New(), &entity.Claim{Message: "x"}, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkResolved(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"first transition", 1, true},
		{"already resolved", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupItemMock(t)
			mock.ExpectExec(`UPDATE "items" SET .*"resolved"=.* WHERE .*resolved = `).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			changed, err := repo.MarkResolved(context.Background(), uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tt.want, changed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMarkResolved_Error(t *testing.T) {
	repo, mock := setupItemMock(t)
	mock.ExpectExec(`UPDATE "items" SET`).WillReturnError(errors.New("connection reset"))

	changed, err := repo.MarkResolved(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.False(t, changed)
}

func TestFindActive_Query(t *testing.T) {
	tests := []struct {
		name   string
		filter ActiveFilter
		sql    string
		args   []driver.Value
	}{
		{
			name:   "newest first",
			filter: ActiveFilter{},
			sql:    `SELECT \* FROM "items" WHERE resolved = \$1 ORDER BY created_at DESC,id DESC$`,
			args:   []driver.Value{false},
		},
		{
			name:   "kind, search and page",
			filter: ActiveFilter{Kind: entity.ItemKindLost, Search: "50%", Oldest: true, Limit: 10, Offset: 20},
			sql: `SELECT \* FROM "items" WHERE resolved = \$1 AND kind = \$2 ` +
				`AND \(name ILIKE \$3 OR description ILIKE \$4\) ` +
				`ORDER BY created_at ASC,id ASC LIMIT \$5 OFFSET \$6`,
			args: []driver.Value{false, entity.ItemKindLost, `%50\%%`, `%50\%%`, sqlmock.AnyArg(), sqlmock.AnyArg()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := setupItemMock(t)
			mock.ExpectQuery(tt.sql).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows([]string{"id"}))

			items, err := repo.FindActive(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Empty(t, items)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFindArchivedByReporter_Query(t *testing.T) {
	repo, mock := setupItemMock(t)
	reporterID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "items" WHERE reporter_id = \$1 AND resolved = \$2 ORDER BY created_at DESC,id DESC$`).
		WithArgs(reporterID.String(), true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, err := repo.FindArchivedByReporter(context.Background(), reporterID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveByIDs_EmptySkipsQuery(t *testing.T) {
	repo, mock := setupItemMock(t)

	items, err := repo.FindActiveByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off`, escapeLike("50%_off"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "wallet", escapeLike("wallet"))
}
