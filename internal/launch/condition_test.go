package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{in: "true", want: true},
		{in: "True", want: true},
		{in: "TRUE", want: true},
		{in: "1", want: true},
		{in: "false"},
		{in: "False"},
		{in: " 0 "},
		{in: "yes", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBool(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidBool)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditions(t *testing.T) {
	lc := newTestContext()
	lc.SetConfiguration("db", "False")
	lc.SetConfiguration("use_fake_hardware", "true")
	lc.SetConfiguration("broken", "maybe")

	ok, err := If(Config("db")).Evaluate(lc)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Unless(Config("db")).Evaluate(lc)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = If(Config("use_fake_hardware")).Evaluate(lc)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = If(Config("broken")).Evaluate(lc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBool)
	assert.Contains(t, err.Error(), "maybe")

	_, err = If(nil).Evaluate(lc)
	require.Error(t, err)

	assert.Equal(t, "if $(var db)", If(Config("db")).String())
	assert.Equal(t, "unless $(var db)", Unless(Config("db")).String())
}
