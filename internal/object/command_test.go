package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		label   string
		wantErr error
		wantStr string
	}{
		{name: "new code", cmd: 0x7f01, label: "flush", wantStr: "flush"},
		{name: "same name again", cmd: 0x7f01, label: "flush", wantStr: "flush"},
		{name: "taken code", cmd: 0x7f01, label: "drain", wantErr: ErrDuplicateCommand, wantStr: "flush"},
		{name: "unnamed code", cmd: 0x7f02, wantStr: "command(32514)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.label != "" {
				err := RegisterCommand(tt.cmd, tt.label)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					require.NoError(t, err)
				}
			}
			assert.Equal(t, tt.wantStr, tt.cmd.String())
		})
	}
}

func TestRegisterCommandRejectsZero(t *testing.T) {
	assert.Error(t, RegisterCommand(0, "zero"))
	assert.Equal(t, "command(0)", Command(0).String())
}

func TestMustRegisterCommand(t *testing.T) {
	cmd := MustRegisterCommand(0x7f10, "rebuild")
	assert.Equal(t, Command(0x7f10), cmd)
	assert.Equal(t, "rebuild", cmd.String())

	assert.Panics(t, func() { MustRegisterCommand(0x7f10, "other") })
}
