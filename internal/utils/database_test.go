package utils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		cs   string
		want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "postgres"},
		{"postgresql://u:p@localhost/db", "postgres"},
		{"host=localhost user=u password=p dbname=db port=5432", "postgres"},
		{"Data Source=UserAuthDB.db", "sqlite"},
		{"accounts.db", "sqlite"},
		{"file::memory:?cache=shared", "sqlite"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dialectorFor(tt.cs).Name(), tt.cs)
	}
}

func TestInitDatabase_SQLiteDataSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	db, err := InitDatabase("Data Source=" + path, nil)
	require.NoError(t, err)
	require.NoError(t, PingDatabase(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestInitDatabase_InMemorySharesOneConnection(t *testing.T) {
	db, err := InitDatabase(":memory:", nil)
	require.NoError(t, err)

	type widget struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&widget{}))
	require.NoError(t, db.Create(&widget{Name: "x"}).Error)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestInitDatabase_LogsThroughZapWithoutNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	db, err := InitDatabase(":memory:", zap.New(core))
	require.NoError(t, err)

	type widget struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&widget{}))

	var w widget
	err = db.First(&w, 42).Error
	require.Error(t, err)
	assert.Zero(t, logs.Len())

	err = db.Table("missing_table").First(&w).Error
	require.Error(t, err)
	require.NotZero(t, logs.Len())
	assert.Equal(t, "gorm", logs.All()[0].LoggerName)
}
