package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"tradinganalysis/src/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm over sqlmock: %v", err)
	}

	return gormDB, mock
}

// The idempotency of ingestion hinges on the exact conflict target, so pin
// the generated postgres SQL down.
func TestInsertIgnoreUsesOnConflictDoNothing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&CandleRepository{}).WithDB(db)

	price := decimal.NewFromInt(28000)
	candles := []model.Candle{{
		SymbolID:  1,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Volume:    decimal.NewFromInt(10),
	}}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT ("symbol_id","timestamp") DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	inserted, err := repo.InsertIgnore(context.Background(), candles)
	if err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted, got %d", inserted)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPruneKeepLatestIsSingleScopedDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&CandleRepository{}).WithDB(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "candles" WHERE symbol_id = $1 AND id NOT IN (SELECT`)).
		WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectCommit()

	pruned, err := repo.PruneKeepLatest(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("expected prune to succeed, got %v", err)
	}
	if pruned != 10 {
		t.Fatalf("expected 10 pruned, got %d", pruned)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
