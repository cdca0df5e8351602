package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEnsureShapeRejectsNonSequence(t *testing.T) {
	t.Parallel()

	for _, in := range []any{nil, map[string]any{"series": []any{}}, "x", json.Number("3")} {
		_, err := EnsureShape(in, []string{"year"}, "penetration.series")
		require.ErrorIs(t, err, ErrShape, "input %#v", in)
		require.Equal(t, "Invalid JSON in penetration.series: expected array", err.Error())
	}
}

func TestEnsureShapeNamesEveryMissingKeyOfFirstBadRecord(t *testing.T) {
	t.Parallel()

	in := []any{
		map[string]any{"year": json.Number("2000"), "title": "a", "text": "b"},
		map[string]any{"year": json.Number("2001")},
		map[string]any{},
	}
	_, err := Milestone.Ensure(in, "timeline")
	require.Error(t, err)

	var se *ShapeError
	require.True(t, errors.As(err, &se))
	require.Equal(t, 1, se.Index)
	require.Equal(t, []string{"title", "text"}, se.Missing)
	require.Equal(t, "Invalid JSON in timeline[1]: missing title, text", err.Error())
}

func TestEnsureShapeCountsNullAndEmptyAsPresent(t *testing.T) {
	t.Parallel()

	in := []any{map[string]any{"value": nil, "label": ""}}
	recs, err := Snapshot.Ensure(in, "home.snapshots")
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestEnsureShapeNonObjectElementLacksAllKeys(t *testing.T) {
	t.Parallel()

	_, err := Fact.Ensure([]any{nil}, "home.facts")
	var se *ShapeError
	require.True(t, errors.As(err, &se))
	require.Equal(t, []string{"title", "text"}, se.Missing)
}

func TestEnsureShapeEmptySequencePasses(t *testing.T) {
	t.Parallel()

	recs, err := Fact.Ensure([]any{}, "home.facts")
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestNormalizePicksHighestPrioritySynonym(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string]any
		want map[string]any
	}{
		{
			name: "all alternates",
			raw: map[string]any{
				"title": "X", "icon": "a.png", "bandwidth": json.Number("20"), "cost": json.Number("300"),
			},
			want: map[string]any{
				"name": "X", "logo": "a.png", "avg": json.Number("20"), "price": json.Number("300"),
			},
		},
		{
			name: "priority order wins",
			raw: map[string]any{
				"provider": "P", "title": "T", "speed": "15 Mbps", "mbps": json.Number("9"),
				"monthly": "EGP 200", "logoUrl": "l.svg",
			},
			want: map[string]any{"name": "P", "logo": "l.svg", "avg": "15 Mbps", "price": "EGP 200"},
		},
		{
			name: "null is skipped, empty string is kept",
			raw:  map[string]any{"name": nil, "provider": "", "title": "T", "avg": json.Number("1")},
			want: map[string]any{"name": "", "logo": "", "avg": json.Number("1"), "price": ""},
		},
		{
			name: "absent fields are empty",
			raw:  map[string]any{},
			want: map[string]any{"name": "", "logo": "", "avg": "", "price": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ISPSynonyms.Normalize(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	t.Parallel()

	raw := map[string]any{"speed": "1", "avg": "2", "bandwidth": "3"}
	for i := 0; i < 20; i++ {
		require.Equal(t, "2", ISPSynonyms.Normalize(raw)["avg"])
	}
}

type strictRecord struct {
	Name string `json:"name"`
}

func (r *strictRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("empty name")
	}
	return nil
}

func TestDecodeRunsValidatorWithIndex(t *testing.T) {
	t.Parallel()

	recs := []map[string]any{{"name": "a"}, {"name": ""}}
	_, err := Decode[strictRecord](recs, "isps (normalized)")
	require.ErrorIs(t, err, ErrShape)
	require.Equal(t, "Invalid JSON in isps (normalized)[1]: empty name", err.Error())

	out, err := Decode[strictRecord](recs[:1], "isps")
	require.NoError(t, err)
	require.Equal(t, []strictRecord{{Name: "a"}}, out)
}

func TestStrictReportsTypeWarnings(t *testing.T) {
	t.Parallel()

	recs := []map[string]any{
		{"name": "Mobile", "share": json.Number("70")},
		{"name": "Fixed", "share": json.Number("130")},
	}
	warnings, err := ShareType.Strict(recs, "growth.types")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "growth.types[1].share")
}

func TestStrictUnknownKindHasNoWarnings(t *testing.T) {
	t.Parallel()

	warnings, err := Schema{Kind: "other"}.Strict([]map[string]any{{"a": 1}}, "x")
	require.NoError(t, err)
	require.Empty(t, warnings)
}
