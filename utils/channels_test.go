// utils/channels_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChannelNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"702", "702"},
		{"0702", "702"},
		{" 702 ", "702"},
		{"702.1", "702-1"},
		{"0702.1", "702-1"},
		{"702-1", "702-1"},
		{"0", "0"},
		{"000", "0"},
		{"", ""},
		{"9", "9"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeChannelNumber(c.in), "input %q", c.in)
	}
}
