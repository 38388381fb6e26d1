package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByte(t *testing.T) {
	tests := []struct {
		in   string
		want byte
	}{
		{"3c", 0x3C},
		{"0x3c", 0x3C},
		{"0x3C", 0x3C},
		{" 48 ", 0x48},
		// Bare input is hex, never decimal.
		{"16", 0x16},
		{"0", 0x00},
		{"ff", 0xFF},
	}
	for _, tc := range tests {
		got, err := parseByte(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"", "0x", "1ff", "zz", "-1"} {
		_, err := parseByte(in)
		assert.Error(t, err, in)
	}
}
