package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildSelectEquality(t *testing.T) {
	query, args, err := buildSelect("announcements", []Filter{Eq("active", true)}, OrderBy{Field: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Equal(t,
		`SELECT id, fields, created_at, updated_at FROM documents WHERE collection=$1 AND fields->>$2 = $3 ORDER BY created_at DESC, id ASC`,
		query)
	require.Equal(t, []any{"announcements", "active", "true"}, args)
}

func TestBuildSelectMembership(t *testing.T) {
	query, args, err := buildSelect("announcements",
		[]Filter{Eq("active", true), In("audience", "All", "Safety")},
		OrderBy{Field: "createdAt", Desc: true})
	require.NoError(t, err)
	require.Equal(t,
		`SELECT id, fields, created_at, updated_at FROM documents WHERE collection=$1 AND fields->>$2 = $3 AND fields->>$4 = ANY($5) ORDER BY created_at DESC, id ASC`,
		query)
	require.Equal(t, []any{"announcements", "active", "true", "audience", []string{"All", "Safety"}}, args)
}

func TestBuildSelectCreatedSince(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := buildSelect("incidents", []Filter{CreatedSince(since)}, OrderBy{})
	require.NoError(t, err)
	require.Equal(t,
		`SELECT id, fields, created_at, updated_at FROM documents WHERE collection=$1 AND created_at >= $2 ORDER BY created_at, id ASC`,
		query)
	require.Equal(t, []any{"incidents", since}, args)
}

func TestBuildSelectRejectsBoundOnArbitraryField(t *testing.T) {
	_, _, err := buildSelect("incidents",
		[]Filter{{Field: "status", Op: OpGte, Value: "x"}}, OrderBy{})
	require.Error(t, err)
}

func TestBuildSelectRejectsUnknownOp(t *testing.T) {
	_, _, err := buildSelect("incidents",
		[]Filter{{Field: "status", Op: Op("lt"), Value: "x"}}, OrderBy{})
	require.Error(t, err)
}

func TestOrderColumnMapping(t *testing.T) {
	require.Equal(t, "created_at", orderColumn(""))
	require.Equal(t, "created_at", orderColumn("createdAt"))
	require.Equal(t, "updated_at", orderColumn("updatedAt"))
	require.Equal(t, "(fields->>'title')", orderColumn("title"))
}

func TestTextValue(t *testing.T) {
	require.Equal(t, "hello", textValue("hello"))
	require.Equal(t, "true", textValue(true))
	require.Equal(t, "false", textValue(false))
	require.Equal(t, "42", textValue(42))
}
