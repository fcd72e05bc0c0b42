package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-booking/internal/config"
)

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.DBConfig{User: "app", Pass: "pw", Host: "db", Port: "3306", Name: "meeting"})
	assert.Contains(t, dsn, "app:pw@tcp(db:3306)/meeting?")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "rooms", "bookings", "booking_users", "guest_users", "articles"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
