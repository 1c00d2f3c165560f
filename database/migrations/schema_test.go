package migrations

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/migration"
	"github.com/nuber-eats/nuber/pkg/testkit"
)

func TestMigrationsCreateEveryModel(t *testing.T) {
	db := testkit.NewDB(t)
	r := migration.New(db, io.Discard)

	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}

	_, err = r.Rollback()
	require.NoError(t, err)
	for _, m := range models.All() {
		assert.False(t, db.Migrator().HasTable(m), "%T", m)
	}
}
