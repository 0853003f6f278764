package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/manufacturing-erp/pkg/apperror"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex"`
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func countWidgets(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&widget{}).Count(&n).Error)
	return n
}

func TestTransaction_CommitAndRollback(t *testing.T) {
	db := openDB(t)
	tm := NewTxManager(db)
	ctx := context.Background()

	require.NoError(t, tm.Transaction(ctx, func(ctx context.Context) error {
		return Conn(ctx, db).Create(&widget{Code: "a"}).Error
	}))
	assert.Equal(t, int64(1), countWidgets(t, db))

	boom := errors.New("boom")
	err := tm.Transaction(ctx, func(ctx context.Context) error {
		if err := Conn(ctx, db).Create(&widget{Code: "b"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), countWidgets(t, db))
}

func TestTransaction_NestedCallsJoinOuter(t *testing.T) {
	db := openDB(t)
	tm := NewTxManager(db)

	err := tm.Transaction(context.Background(), func(ctx context.Context) error {
		if err := tm.Transaction(ctx, func(ctx context.Context) error {
			return Conn(ctx, db).Create(&widget{Code: "inner"}).Error
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)
	assert.Equal(t, int64(0), countWidgets(t, db), "inner write is rolled back with the outer transaction")
}

func TestTranslateError(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Create(&widget{Code: "dup"}).Error)

	err := TranslateError(db.Create(&widget{Code: "dup"}).Error)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	pqErr := fmt.Errorf("insert: %w", &pq.Error{Code: "23503"})
	assert.ErrorIs(t, TranslateError(pqErr), apperror.ErrConflict)

	assert.Nil(t, TranslateError(nil))
	assert.ErrorIs(t, TranslateError(gorm.ErrRecordNotFound), gorm.ErrRecordNotFound)
	assert.True(t, IsNotFound(db.First(&widget{}, 99).Error))
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "erp", Password: "pw", DBName: "erpdb", SSLMode: "disable"}
	dsn := cfg.DSN()
	for _, part := range []string{"host=db", "port=5432", "user=erp", "dbname=erpdb", "sslmode=disable"} {
		assert.Contains(t, dsn, part)
	}
}
