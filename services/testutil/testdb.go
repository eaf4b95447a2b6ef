package testutil

import (
	"fmt"
	"squaresPoolBot/models"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})

	return gormDB, mock, err
}

// NewSQLiteDB returns a migrated in-memory database private to the test. A single connection
// is used so concurrent callers queue on it the way they would on a row lock.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

// SeedPool inserts a pool and its empty 10x10 board.
func SeedPool(t *testing.T, db *gorm.DB, status models.PoolStatus) *models.Pool {
	t.Helper()

	pool := models.Pool{Name: "Test Pool", Status: status}
	if err := db.Create(&pool).Error; err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}

	squares := make([]models.Square, 0, models.GridSize*models.GridSize)
	for row := 0; row < models.GridSize; row++ {
		for col := 0; col < models.GridSize; col++ {
			squares = append(squares, models.Square{PoolID: pool.ID, RowIndex: row, ColIndex: col})
		}
	}
	if err := db.Create(&squares).Error; err != nil {
		t.Fatalf("Failed to create squares: %v", err)
	}
	return &pool
}

func SeedParticipant(t *testing.T, db *gorm.DB, poolID uint, name string) *models.Participant {
	t.Helper()

	participant := models.Participant{PoolID: poolID, DisplayName: name}
	if err := db.Create(&participant).Error; err != nil {
		t.Fatalf("Failed to create participant: %v", err)
	}
	return &participant
}

// AssignAll gives every square of the pool to participantID, leaving the first skip squares
// (in row-major order) empty.
func AssignAll(t *testing.T, db *gorm.DB, poolID uint, participantID uint, skip int) {
	t.Helper()

	var squares []models.Square
	db.Where("pool_id = ?", poolID).Order("row_index asc").Order("col_index asc").Find(&squares)
	for idx, square := range squares {
		if idx < skip {
			continue
		}
		if err := db.Model(&square).Update("participant_id", participantID).Error; err != nil {
			t.Fatalf("Failed to assign square: %v", err)
		}
	}
}

func AssignCell(t *testing.T, db *gorm.DB, poolID uint, row int, col int, participantID uint) {
	t.Helper()

	err := db.Model(&models.Square{}).
		Where("pool_id = ? AND row_index = ? AND col_index = ?", poolID, row, col).
		Update("participant_id", participantID).Error
	if err != nil {
		t.Fatalf("Failed to assign cell: %v", err)
	}
}

func Identity() []int {
	return []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
}

// SeedDigitMap stores the given permutations. revealed sets revealed_at; locked sets locked_at.
func SeedDigitMap(t *testing.T, db *gorm.DB, poolID uint, winning []int, losing []int, revealed bool, locked bool) *models.DigitMap {
	t.Helper()

	now := time.Now().UTC()
	digitMap := models.DigitMap{PoolID: poolID, WinningDigits: winning, LosingDigits: losing}
	if revealed {
		digitMap.RevealedAt = &now
	}
	if locked {
		digitMap.LockedAt = &now
	}
	if err := db.Create(&digitMap).Error; err != nil {
		t.Fatalf("Failed to create digit map: %v", err)
	}
	return &digitMap
}

func SeedPayouts(t *testing.T, db *gorm.DB, poolID uint, payouts map[string]int64, effectiveAt time.Time) {
	t.Helper()

	for roundKey, amount := range payouts {
		row := models.PayoutConfig{PoolID: poolID, RoundKey: roundKey, AmountCents: amount, EffectiveAt: effectiveAt}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("Failed to create payout: %v", err)
		}
	}
}

func SeedFinalGame(t *testing.T, db *gorm.DB, poolID uint, roundKey string, scoreA int, scoreB int) *models.Game {
	t.Helper()

	game := models.Game{
		PoolID:   poolID,
		RoundKey: roundKey,
		TeamA:    "Duke",
		TeamB:    "UNC",
		Status:   models.GameStatusFinal,
		ScoreA:   &scoreA,
		ScoreB:   &scoreB,
	}
	if err := db.Create(&game).Error; err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}
	return &game
}

func IntPtr(v int) *int {
	return &v
}

func UintPtr(v uint) *uint {
	return &v
}

func StringPtr(v string) *string {
	return &v
}
