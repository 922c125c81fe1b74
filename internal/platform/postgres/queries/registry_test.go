package queries

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedStatements(t *testing.T) {
	t.Parallel()

	r, err := Default()
	require.NoError(t, err)

	for _, name := range []string{
		"user.create", "category.list", "subject.update", "topic.delete",
		"session.create", "session.get_for_update", "session.list", "session.finish",
		"pause.create", "pause.close_open_for_session", "goal.list",
		"note.history_add", "report.session_totals",
	} {
		q, ok := r.Get(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, q, name)
		assert.False(t, strings.HasSuffix(q, ";"), name)
		assert.NotContains(t, q, "-- name:", name)
	}
}

func TestLoad_Parsing(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"a.sql": {Data: []byte(`
-- name: first
SELECT 1;

-- describes the second statement
-- name: second
SELECT *
-- inline comment line
FROM t
WHERE id = $1;
`)},
	}

	r, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, r.Names())
	assert.Equal(t, "SELECT 1", r.MustGet("first"))
	assert.Equal(t, "SELECT *\nFROM t\nWHERE id = $1", r.MustGet("second"))
	assert.NoError(t, r.Require("first", "second"))
	assert.Error(t, r.Require("first", "third"))
	assert.Panics(t, func() { r.MustGet("third") })
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"duplicate name": "-- name: q\nSELECT 1;\n-- name: q\nSELECT 2;",
		"empty body":     "-- name: q\n\n-- name: r\nSELECT 1;",
		"missing name":   "-- name:\nSELECT 1;",
		"orphan sql":     "SELECT 1;\n-- name: q\nSELECT 2;",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(fstest.MapFS{"x.sql": {Data: []byte(content)}})
			assert.Error(t, err)
		})
	}
}
