package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"iPhone 15 Pro Max", "iphone-15-pro-max"},
		{"  MacBook   Air  ", "macbook-air"},
		{"Điện thoại cũ", "ien-thoai-cu"},
		{"Lámpara Luna", "lampara-luna"},
		{"M3 Pro 16GB 512GB", "m3-pro-16gb-512gb"},
		{"256GB", "256gb"},
		{"--weird--input--", "weird-input"},
		{"!!!", ""},
		{"", ""},
		{"a_b/c", "a-b-c"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Make(c.in), "Make(%q)", c.in)
	}
}

func TestMakeIdempotent(t *testing.T) {
	inputs := []string{
		"iPhone 15 Pro Max", "Điện thoại", "ÅLBORG  café", "x", "",
		"a--b", "semi;colon", "ümlaut Über", "123 456", "trailing-",
	}
	for _, in := range inputs {
		once := Make(in)
		assert.Equal(t, once, Make(once), "not idempotent for %q", in)
		if once != "" {
			assert.Regexp(t, slugRe, once)
		}
	}
}

func TestForVariant(t *testing.T) {
	assert.Equal(t, "iphone-15-256gb", ForVariant("iphone-15", "256GB"))
	assert.Equal(t, "iphone-15", ForVariant("iphone-15", "   "))
	assert.Equal(t, "macbook-pro-m3-pro-16gb-512gb", ForVariant("macbook-pro", "M3 Pro 16GB 512GB"))
}
