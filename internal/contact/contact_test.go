package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 010-0199": "+15550100199",
		"p:+15550100199":    "+15550100199",
		"P: 555 0100":       "5550100",
		"555-0100":          "5550100",
		"1+2":               "12",
		"  +":               "",
		"":                  "",
		"call me":           "",
	}

	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), "input %q", in)
	}
}

func TestStripVendorPrefix(t *testing.T) {
	assert.Equal(t, "+15550100", StripVendorPrefix(" p:+15550100 "))
	assert.Equal(t, "555", StripVendorPrefix("P:555"))
	assert.Equal(t, "phone", StripVendorPrefix("phone"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}
