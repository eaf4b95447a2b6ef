package guardService

import (
	"context"
	"errors"
	"squaresPoolBot/services/common"
	"squaresPoolBot/services/testutil"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"
)

const lockPoolQuery = "SELECT \\* FROM `pools` WHERE `pools`.`id` = \\? AND `pools`.`deleted_at` IS NULL ORDER BY `pools`.`id` LIMIT \\? FOR UPDATE"

func poolRows(status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "status"}).AddRow(1, "Test Pool", status)
}

func TestWithPoolUnlockedWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("Locked pool rolls back without running the mutation", func(t *testing.T) {
		db, mock, err := testutil.NewMockDB()
		if err != nil {
			t.Fatalf("Failed to create mock DB: %v", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		}()

		mock.ExpectBegin()
		mock.ExpectQuery(lockPoolQuery).
			WithArgs(1, 1).
			WillReturnRows(poolRows("locked"))
		mock.ExpectRollback()

		called := false
		err = WithPoolUnlockedWrite(ctx, db, 1, func(tx *gorm.DB) error {
			called = true
			return nil
		})

		if !errors.Is(err, common.ErrPoolLocked) {
			t.Errorf("Expected pool_locked, got %v", err)
		}
		if called {
			t.Error("Mutation should not run on a locked pool")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})

	t.Run("Open pool commits the mutation", func(t *testing.T) {
		db, mock, err := testutil.NewMockDB()
		if err != nil {
			t.Fatalf("Failed to create mock DB: %v", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		}()

		mock.ExpectBegin()
		mock.ExpectQuery(lockPoolQuery).
			WithArgs(1, 1).
			WillReturnRows(poolRows("open"))
		mock.ExpectExec("UPDATE `squares` SET `participant_id`").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = WithPoolUnlockedWrite(ctx, db, 1, func(tx *gorm.DB) error {
			return tx.Exec("UPDATE `squares` SET `participant_id` = NULL WHERE `id` = ?", 5).Error
		})

		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})

	t.Run("Mutation failure rolls back", func(t *testing.T) {
		db, mock, err := testutil.NewMockDB()
		if err != nil {
			t.Fatalf("Failed to create mock DB: %v", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		}()

		mock.ExpectBegin()
		mock.ExpectQuery(lockPoolQuery).
			WithArgs(1, 1).
			WillReturnRows(poolRows("open"))
		mock.ExpectRollback()

		boom := errors.New("boom")
		err = WithPoolUnlockedWrite(ctx, db, 1, func(tx *gorm.DB) error {
			return boom
		})

		if !errors.Is(err, boom) {
			t.Errorf("Expected mutation error, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})

	t.Run("Missing pool", func(t *testing.T) {
		db, mock, err := testutil.NewMockDB()
		if err != nil {
			t.Fatalf("Failed to create mock DB: %v", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			sqlDB.Close()
		}()

		mock.ExpectBegin()
		mock.ExpectQuery(lockPoolQuery).
			WithArgs(9, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}))
		mock.ExpectRollback()

		err = WithPoolUnlockedWrite(ctx, db, 9, func(tx *gorm.DB) error {
			t.Error("Mutation should not run for a missing pool")
			return nil
		})

		if !errors.Is(err, common.ErrPoolNotFound) {
			t.Errorf("Expected pool_not_found, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}
