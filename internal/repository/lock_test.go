package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/testutil"
)

func TestForUpdateLocksOnMySQL(t *testing.T) {
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "muzz:muzz@tcp(127.0.0.1:3306)/muzz?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var u db.User
		return forUpdate(tx).Select("id").Where("id = ?", "a").Take(&u)
	})
	assert.Contains(t, sql, "FOR UPDATE")
}

func TestForUpdateIsPlainOnSQLite(t *testing.T) {
	gdb := testutil.DB(t)
	sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var u db.User
		return forUpdate(tx).Select("id").Where("id = ?", "a").Take(&u)
	})
	assert.NotContains(t, sql, "FOR UPDATE")
}
