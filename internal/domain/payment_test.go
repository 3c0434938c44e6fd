package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "number", raw: `1.5`, want: "1.5"},
		{name: "integer", raw: `100`, want: "100"},
		{name: "numeric string", raw: `"10.50"`, want: "10.5"},
		{name: "numeric string with spaces", raw: `" 12 "`, want: "12"},
		{name: "exponent", raw: `1e2`, want: "100"},
		{name: "negative stays parseable", raw: `-5`, want: "-5"},
		{name: "empty", raw: ``, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "bool", raw: `true`, wantErr: true},
		{name: "text", raw: `"abc"`, wantErr: true},
		{name: "NaN string", raw: `"NaN"`, wantErr: true},
		{name: "Infinity string", raw: `"Infinity"`, wantErr: true},
		{name: "object", raw: `{"value":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrInvalidArgument))
				require.Equal(t, MsgInvalidAmount, err.Error())
				return
			}
			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestValidateAmount(t *testing.T) {
	f, err := ValidateAmount(decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	require.Equal(t, 1.5, f)

	for _, s := range []string{"0", "-5", "-0.01", "1e400"} {
		_, err := ValidateAmount(decimal.RequireFromString(s))
		require.ErrorIs(t, err, ErrInvalidArgument, s)
	}
}

func TestOptionalString(t *testing.T) {
	require.Nil(t, OptionalString(nil))
	require.Nil(t, OptionalString(json.RawMessage(`null`)))
	require.Nil(t, OptionalString(json.RawMessage(`""`)))
	require.Nil(t, OptionalString(json.RawMessage(`42`)))

	s := OptionalString(json.RawMessage(`"000201"`))
	require.NotNil(t, s)
	require.Equal(t, "000201", *s)
}

func TestError_MessageAndKind(t *testing.T) {
	err := NewConfigurationError(MsgTokenMissing)
	require.Equal(t, "MP_ACCESS_TOKEN missing", err.Error())
	require.ErrorIs(t, err, ErrConfiguration)
	require.False(t, errors.Is(err, ErrInvalidArgument))

	var domErr *Error
	require.ErrorAs(t, err, &domErr)
	require.Equal(t, MsgTokenMissing, domErr.Message)
}
