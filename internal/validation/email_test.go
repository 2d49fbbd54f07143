package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		errMsg  string
		wantErr bool
	}{
		{name: "simple", email: "alice@example.com"},
		{name: "plus and dots", email: "alice.smith+notes@mail-server.co.uk"},
		{name: "empty", email: "", wantErr: true, errMsg: "email cannot be empty"},
		{name: "missing at", email: "alice.example.com", wantErr: true, errMsg: "invalid email"},
		{name: "missing tld", email: "alice@example", wantErr: true, errMsg: "invalid email"},
		{name: "space", email: "alice @example.com", wantErr: true, errMsg: "invalid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("hunter2"))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("   "))
	assert.Error(t, ValidatePassword("exit"))
	assert.Error(t, ValidatePassword("EXIT"))
}

func TestIsExit(t *testing.T) {
	assert.True(t, IsExit("exit"))
	assert.True(t, IsExit(" Exit \n"))
	assert.False(t, IsExit("exits"))
	assert.False(t, IsExit(""))
}
