package kernel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   PaginationOptions
		want PaginationOptions
	}{
		{"zero values", PaginationOptions{}, PaginationOptions{Page: 1, PageSize: DefaultPageSize}},
		{"too large", PaginationOptions{Page: 2, PageSize: 500}, PaginationOptions{Page: 2, PageSize: MaxPageSize}},
		{"valid", PaginationOptions{Page: 3, PageSize: 10}, PaginationOptions{Page: 3, PageSize: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
	assert.Equal(t, 20, PaginationOptions{Page: 3, PageSize: 10}.Offset())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]string{"a", "b"}, PaginationOptions{Page: 1, PageSize: 2}, 5)
	assert.Equal(t, 3, p.Page.Pages)
	assert.False(t, p.Empty)

	empty := NewPaginated[string](nil, PaginationOptions{Page: 1, PageSize: 2}, 0)
	assert.True(t, empty.Empty)
	assert.NotNil(t, empty.Items)
}

func TestParseCategoryAndLevel(t *testing.T) {
	c, ok := ParseCategory(" Non-Tech ")
	assert.True(t, ok)
	assert.Equal(t, CategoryNonTech, c)

	_, ok = ParseCategory("hybrid")
	assert.False(t, ok)

	l, ok := ParseLevel("SENIOR")
	assert.True(t, ok)
	assert.Equal(t, LevelSenior, l)
}

func TestLooseString(t *testing.T) {
	var v struct {
		A LooseString `json:"a"`
		B LooseString `json:"b"`
		C LooseString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 5, "b": "five", "c": null}`), &v))
	assert.Equal(t, LooseString("5"), v.A)
	assert.Equal(t, LooseString("five"), v.B)
	assert.Equal(t, LooseString(""), v.C)
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"list", `["Go","SQL"]`, []string{"Go", "SQL"}},
		{"single", `"Go"`, []string{"Go"}},
		{"map", `{"technical":["Go"]}`, []string{"Go"}},
		{"null", `null`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &l))
			assert.Equal(t, tt.want, []string(l))
		})
	}

	var mixed StringList
	require.NoError(t, json.Unmarshal([]byte(`{"technical":["Go","SQL"],"soft":"Teamwork"}`), &mixed))
	assert.ElementsMatch(t, []string{"Go", "SQL", "Teamwork"}, []string(mixed))
}
