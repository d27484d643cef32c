package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpretResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
		code    string
	}{
		{"CodeIssued", "idn=12345\n", true, "12345"},
		{"CodeIssuedNoNewline", "idn=12345", true, "12345"},
		{"KeyCaseInsensitive", "IDN=99\n", true, "99"},
		{"OnlyFirstLineCounts", "idn=777\nidn=ignored\nextra", true, "777"},
		{"EmptyBody", "", false, ""},
		{"WhitespaceBody", "   \n", false, ""},
		{"ErrorLine", "err=bad\n", false, ""},
		{"EmptyCode", "idn=\n", false, ""},
		{"NoSeparator", "garbage", false, ""},
		{"SuccessOnSecondLineIgnored", "err=bad\nidn=12345\n", false, ""},
		{"NonTextBytes", "\x00\x01\x02", false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			response := InterpretResponse(tc.body)
			assert.Equal(t, tc.success, response.Success())
			assert.Equal(t, tc.code, response.Code)
		})
	}
}
