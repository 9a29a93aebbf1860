package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSequence(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty", nil, []int{}},
		{"sorted", []int{1, 2, 3}, []int{0, 1, 2}},
		{"reversed", []int{3, 2, 1}, []int{2}},
		{"mixed", []int{2, 3, 1, 5, 6, 8, 7, 9, 4}, []int{0, 1, 3, 4, 6, 7}},
		{"single move to front", []int{4, 1, 2, 3}, []int{1, 2, 3}},
		{"zeros are skipped", []int{0, 2, 0, 1}, []int{3}},
		{"all new", []int{0, 0}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSequence(tt.in))
		})
	}
}
