package anonymize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colhash/internal/domain"
	"colhash/internal/sqlast"
)

func TestColumnName(t *testing.T) {
	assert.Equal(t, "id", ColumnName("select::users::id"))
	assert.Equal(t, "id", ColumnName("select::null::id"))
	assert.Equal(t, "first name", ColumnName("select::null::first name"))
	assert.Equal(t, "plain", ColumnName("plain"))
}

func TestDistinctColumnNames(t *testing.T) {
	got := DistinctColumnNames([]string{
		"select::u::id",
		"select::null::name",
		"select::o::id",
		"select::null::*",
		"select::u::*",
		"select::null::Name",
		"select::null::",
	})
	assert.Equal(t, []string{"id", "name", "Name"}, got)
}

func TestDistinctColumnNames_Empty(t *testing.T) {
	assert.Empty(t, DistinctColumnNames(nil))
	assert.Empty(t, DistinctColumnNames([]string{"select::null::*"}))
}

func TestMapping_Resolve(t *testing.T) {
	m := NewMapping([]domain.HashRecord{
		{Token: "t1", ColumnName: "id"},
		{Token: "t2", ColumnName: "id"},
		{Token: "t3", ColumnName: "name"},
	})

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "t1", m.Resolve("id", ToToken), "first record wins")
	assert.Equal(t, "t3", m.Resolve("name", ToToken))
	assert.Equal(t, "id", m.Resolve("t2", ToName))
	assert.Equal(t, NotFound, m.Resolve("missing", ToToken))
	assert.Equal(t, NotFound, m.Resolve("id", ToName))
}

func TestRewrite_ReplacesEverySlot(t *testing.T) {
	d, _ := sqlast.LookupDialect("postgresql")
	codec := sqlast.NewCodec()
	parsed, err := codec.Parse("UPDATE users SET name = 'x' WHERE id = 1 AND name <> 'y'", d)
	require.NoError(t, err)

	m := NewMapping([]domain.HashRecord{
		{Token: "tok_name", ColumnName: "name"},
		{Token: "tok_id", ColumnName: "id"},
	})
	tree := Rewrite(parsed.Tree, m, ToToken)

	names := DistinctColumnNames(sqlast.Mentions(tree))
	assert.ElementsMatch(t, []string{"tok_name", "tok_id"}, names)
}

func TestRewrite_UnmappedBecomesNotFound(t *testing.T) {
	d, _ := sqlast.LookupDialect("postgresql")
	codec := sqlast.NewCodec()
	parsed, err := codec.Parse("SELECT id, email FROM users", d)
	require.NoError(t, err)

	tree := Rewrite(parsed.Tree, NewMapping([]domain.HashRecord{{Token: "tok_id", ColumnName: "id"}}), ToToken)

	assert.Equal(t, []string{"tok_id", NotFound}, DistinctColumnNames(sqlast.Mentions(tree)))
}

func TestRewrite_LeavesWildcards(t *testing.T) {
	d, _ := sqlast.LookupDialect("postgresql")
	codec := sqlast.NewCodec()
	parsed, err := codec.Parse("SELECT u.*, id FROM users u", d)
	require.NoError(t, err)

	tree := Rewrite(parsed.Tree, NewMapping([]domain.HashRecord{{Token: "tok_id", ColumnName: "id"}}), ToToken)

	assert.Equal(t, []string{"select::u::*", "select::null::tok_id"}, sqlast.Mentions(tree))
}
