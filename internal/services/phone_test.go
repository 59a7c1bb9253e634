package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"21999999999":        "5521999999999",
		"5521999999999":      "5521999999999",
		"(21) 99999-9999":    "5521999999999",
		"+55 21 3333-4444":   "552133334444",
		"2133334444":         "552133334444",
		"5521999999999@c.us": "5521999999999",
		"12345":              "12345",
		"":                   "",
		"4915112345678":      "4915112345678",
	}
	for in, want := range cases {
		got := NormalizePhone(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, NormalizePhone(got), "not idempotent for %q", in)
	}
}
