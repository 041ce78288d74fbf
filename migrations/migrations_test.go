package migrations

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFilesOrdering(t *testing.T) {
	up, err := Files(Up)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.up.sql"}, up)

	down, err := Files(Down)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.down.sql"}, down)

	_, err = Files("sideways")
	assert.Error(t, err)
}

func TestSchemaNamesStockConstraint(t *testing.T) {
	content, err := files.ReadFile("001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(content), "CONSTRAINT product_variants_stock_non_negative")
}

func TestRunExecutesMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := Run(context.Background(), sqlx.NewDb(db, "postgres"), Up, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
