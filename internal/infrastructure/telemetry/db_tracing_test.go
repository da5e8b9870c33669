package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint
	Name string
}

func openTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openTracedDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: false}, zap.NewNop()))
	assert.Nil(t, db.Callback().Query().Get("db_timing:after_b"))
}

func TestRegisterDBTracing_AnnotatesSpans(t *testing.T) {
	recorder := installRecorder(t)
	db := openTracedDB(t)
	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{
		Enabled:         true,
		DBName:          "sqlite",
		SlowQueryThresh: 1,
	}, zap.NewNop()))

	ctx, span := StartSpan(context.Background(), "test.query")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	var sawTable, sawSlow bool
	for _, s := range recorder.Ended() {
		attrs := attrMap(s.Attributes())
		if attrs["db.sql.table"] == "traced_rows" {
			sawTable = true
		}
		if attrs["db.slow_query"] == "true" {
			sawSlow = true
		}
	}
	assert.True(t, sawTable)
	assert.True(t, sawSlow)
}
