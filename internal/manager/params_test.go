package manager

import (
	"testing"

	"github.com/dmitrijs2005/gistpen/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWith(t *testing.T) {
	got := With("blobs.language", "blobs", "")
	want := Params{With: map[string]Params{
		"blobs": {With: map[string]Params{"language": {}}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("With() mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, got.Loads("blobs"))
	assert.False(t, got.Loads("language"))
	assert.Equal(t, []string{"blobs"}, got.Relations())
	assert.Empty(t, With().Relations())
}

func TestParseWith(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    map[string]Params
		wantErr bool
	}{
		{name: "nil", in: nil, want: nil},
		{name: "string", in: "language", want: map[string]Params{"language": {}}},
		{name: "dotted", in: "states.language", want: map[string]Params{
			"states": {With: map[string]Params{"language": {}}},
		}},
		{name: "string list", in: []string{"blobs", "language"}, want: map[string]Params{
			"blobs": {}, "language": {},
		}},
		{name: "any list", in: []any{"language"}, want: map[string]Params{"language": {}}},
		{name: "map", in: map[string]any{
			"blobs":  map[string]any{"with": "language"},
			"states": nil,
		}, want: map[string]Params{
			"blobs":  {With: map[string]Params{"language": {}}},
			"states": {},
		}},
		{name: "typed map", in: map[string]Params{"blobs": {}}, want: map[string]Params{"blobs": {}}},
		{name: "number", in: 42, wantErr: true},
		{name: "list with number", in: []any{"blobs", 1}, wantErr: true},
		{name: "map with bad nested", in: map[string]any{"blobs": 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWith(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseWith() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	got, err := ParseParams(map[string]any{
		"with":     []any{"language"},
		"status":   "publish",
		"slug":     "hello",
		"repo_id":  "12",
		"blob_id":  float64(7),
		"orderby":  "title",
		"order":    "ASC",
		"limit":    "5",
		"offset":   2,
		"whatever": true,
	})
	require.NoError(t, err)

	want := Params{
		With:    map[string]Params{"language": {}},
		Status:  "publish",
		Slug:    "hello",
		RepoID:  12,
		BlobID:  7,
		OrderBy: "title",
		Order:   "ASC",
		Limit:   5,
		Offset:  2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseParams() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParams_Invalid(t *testing.T) {
	_, err := ParseParams(map[string]any{"repo_id": "abc"})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = ParseParams(map[string]any{"with": 3.5})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestParams_RecordFilter(t *testing.T) {
	p := Params{Status: "draft", Slug: "x", OrderBy: "id", Order: "ASC", Limit: 3, Offset: 1}
	f := p.recordFilter(common.PostTypeRepo)

	assert.Equal(t, common.PostTypeRepo, f.Type)
	assert.Equal(t, "draft", f.Status)
	assert.Equal(t, "x", f.Slug)
	assert.Equal(t, 3, f.Limit)
	assert.Equal(t, 1, f.Offset)
	assert.Nil(t, f.Parent)
}
