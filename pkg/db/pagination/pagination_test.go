package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Pagination
		want Pagination
	}{
		{"zero values take defaults", Pagination{}, Pagination{Page: 1, Limit: DefaultLimit}},
		{"negative page clamped", Pagination{Page: -2, Limit: 10}, Pagination{Page: 1, Limit: 10}},
		{"limit capped", Pagination{Page: 3, Limit: 9999}, Pagination{Page: 3, Limit: MaxLimit}},
		{"valid passes through", Pagination{Page: 2, Limit: 50}, Pagination{Page: 2, Limit: 50}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Pagination{Page: 5, Limit: 10}.Offset())
	assert.Equal(t, 0, Pagination{}.Offset())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(41, Pagination{Page: 2, Limit: 20})
	assert.Equal(t, int64(41), info.Total)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 20, info.Limit)
	assert.Equal(t, 3, info.TotalPages)

	info = BuildPageInfo(40, Pagination{Page: 1, Limit: 20})
	assert.Equal(t, 2, info.TotalPages)

	info = BuildPageInfo(0, Pagination{})
	assert.Zero(t, info.TotalPages)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Slice(items, Pagination{Page: 1, Limit: 2}))
	assert.Equal(t, []int{3, 4}, Slice(items, Pagination{Page: 2, Limit: 2}))
	assert.Equal(t, []int{5}, Slice(items, Pagination{Page: 3, Limit: 2}))
	assert.Empty(t, Slice(items, Pagination{Page: 4, Limit: 2}))
	assert.Equal(t, items, Slice(items, Pagination{Page: 1, Limit: 100}))
	assert.Empty(t, Slice([]int{}, Pagination{}))
}
