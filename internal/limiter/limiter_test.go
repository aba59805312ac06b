package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty", Config{}, ""},
		{"limit and offset", Config{Limit: 5, Offset: 2}, ""},
		{"tail and offset", Config{Tail: 3, Offset: 2}, ""},
		{"negative limit", Config{Limit: -1}, "--limit must be non-negative"},
		{"negative offset", Config{Offset: -1}, "--offset must be non-negative"},
		{"negative tail", Config{Tail: -1}, "--tail must be non-negative"},
		{"limit with tail", Config{Limit: 1, Tail: 1}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApply(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{"inactive", Config{}, items},
		{"limit", Config{Limit: 3}, []int{0, 1, 2}},
		{"offset", Config{Offset: 8}, []int{8, 9}},
		{"offset and limit", Config{Offset: 2, Limit: 2}, []int{2, 3}},
		{"limit past end", Config{Offset: 8, Limit: 5}, []int{8, 9}},
		{"offset past end", Config{Offset: 20}, []int{}},
		{"tail", Config{Tail: 2}, []int{8, 9}},
		{"tail ignores offset", Config{Tail: 2, Offset: 1}, []int{8, 9}},
		{"tail larger than input", Config{Tail: 20}, items},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.cfg, items))
		})
	}
	assert.Empty(t, Apply(Config{Limit: 2}, []string(nil)))
}

func TestIsActive(t *testing.T) {
	assert.False(t, Config{}.IsActive())
	assert.True(t, Config{Limit: 1}.IsActive())
	assert.True(t, Config{Offset: 1}.IsActive())
	assert.True(t, Config{Tail: 1}.IsActive())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "", Config{}.Summary(10))
	assert.Equal(t, "", Config{Limit: 20}.Summary(10))
	assert.Equal(t, "showing 3-4 of 10", Config{Offset: 2, Limit: 2}.Summary(10))
	assert.Equal(t, "showing 9-10 of 10", Config{Tail: 2}.Summary(10))
	assert.Equal(t, "showing none of 10", Config{Offset: 10}.Summary(10))
}
