package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Clamps(t *testing.T) {
	tests := []struct {
		name           string
		page, perPage  int
		defaultPerPage int
		want           Params
	}{
		{"defaults", 0, 0, 20, Params{Page: 1, PerPage: 20}},
		{"negative page", -3, 10, 20, Params{Page: 1, PerPage: 10}},
		{"over max", 2, 500, 20, Params{Page: 2, PerPage: MaxPerPage}},
		{"custom default", 1, 0, 50, Params{Page: 1, PerPage: 50}},
		{"invalid default", 1, 0, 0, Params{Page: 1, PerPage: DefaultPerPage}},
		{"huge page", 461168601842738793, 20, 20, Params{Page: MaxPage, PerPage: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.page, tt.perPage, tt.defaultPerPage))
		})
	}
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, New(1, 20, 20).Offset())
	assert.Equal(t, 40, New(3, 20, 20).Offset())
	assert.Equal(t, 0, Params{Page: -1, PerPage: 20}.Offset())

	far := New(math.MaxInt, MaxPerPage, MaxPerPage).Offset()
	assert.Positive(t, far)
	assert.LessOrEqual(t, far, math.MaxInt32)
}

func TestNewPage_Flags(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		page      int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"empty", 0, 1, 0, false, false},
		{"single page", 5, 1, 1, false, false},
		{"first of three", 45, 1, 3, true, false},
		{"middle", 45, 2, 3, true, true},
		{"last", 45, 3, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]int{1}, tt.total, New(tt.page, 20, 20))
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
			assert.Equal(t, tt.page, p.CurrentPage)
			assert.Equal(t, 20, p.PerPage)
		})
	}
}

func TestNewPage_NilItemsBecomeEmpty(t *testing.T) {
	p := NewPage[string](nil, 0, New(1, 10, 10))
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}

func TestMap(t *testing.T) {
	in := NewPage([]int{1, 2}, 12, New(2, 2, 2))
	out := Map(in, func(i int) string { return string(rune('a' + i)) })
	assert.Equal(t, []string{"b", "c"}, out.Items)
	assert.Equal(t, in.Total, out.Total)
	assert.Equal(t, in.HasNext, out.HasNext)
}
