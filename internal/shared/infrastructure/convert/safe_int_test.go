package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToInt32(t *testing.T) {
	tests := []struct {
		in      int
		want    int32
		wantErr bool
	}{
		{100, 100, false},
		{-100, -100, false},
		{math.MaxInt32, math.MaxInt32, false},
		{math.MinInt32, math.MinInt32, false},
		{math.MaxInt32 + 1, 0, true},
		{math.MinInt32 - 1, 0, true},
	}
	for _, tt := range tests {
		got, err := IntToInt32(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %d", tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
