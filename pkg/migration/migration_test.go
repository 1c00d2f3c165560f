package migration

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/pkg/testkit"
)

type widget struct {
	ID   uint
	Name string
}

type gadget struct {
	ID uint
}

func runner(db *gorm.DB, out *bytes.Buffer, ms ...named) *Runner {
	return &Runner{db: db, out: out, migrations: ms}
}

func table(model interface{}, name string) named {
	return named{name: name, m: Func(
		func(db *gorm.DB) error { return db.AutoMigrate(model) },
		func(db *gorm.DB) error { return db.Migrator().DropTable(model) },
	)}
}

func TestRunAndRollbackByBatch(t *testing.T) {
	db := testkit.NewDB(t)
	var out bytes.Buffer

	r := runner(db, &out, table(&widget{}, "20240101000000_create_widgets"))
	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, db.Migrator().HasTable(&widget{}))

	r = runner(db, &out,
		table(&widget{}, "20240101000000_create_widgets"),
		table(&gadget{}, "20240102000000_create_gadgets"),
	)
	n, err = r.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.Run()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out.String(), "Nothing to migrate.")

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, db.Migrator().HasTable(&gadget{}))
	assert.True(t, db.Migrator().HasTable(&widget{}))

	out.Reset()
	require.NoError(t, r.Status())
	assert.Regexp(t, `20240101000000_create_widgets\s+Ran\s+1`, out.String())
	assert.Regexp(t, `20240102000000_create_gadgets\s+Pending`, out.String())
}

func TestRollbackWithNothingRan(t *testing.T) {
	db := testkit.NewDB(t)
	var out bytes.Buffer
	n, err := runner(db, &out).Rollback()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out.String(), "Nothing to roll back.")
}
