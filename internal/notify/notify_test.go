package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		amount int
		want   string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{90037, "90.037"},
		{150000, "150.000"},
		{1250000, "1.250.000"},
		{-90037, "-90.037"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatRupiah(tc.amount), "%d", tc.amount)
	}
}
