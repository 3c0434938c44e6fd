package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProviderBody_Structured(t *testing.T) {
	body := ParseProviderBody([]byte(` {"id": 123, "status": "pending"} `))

	js, ok := body.Structured()
	require.True(t, ok)
	require.JSONEq(t, `{"id":123,"status":"pending"}`, string(js))

	_, isRaw := body.Raw()
	require.False(t, isRaw)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":123,"status":"pending"}`, string(out))
}

func TestParseProviderBody_Raw(t *testing.T) {
	for _, in := range []string{"<html>Bad Gateway</html>", "", "{not json"} {
		body := ParseProviderBody([]byte(in))

		_, ok := body.Structured()
		require.False(t, ok)

		text, isRaw := body.Raw()
		require.True(t, isRaw)
		require.Equal(t, in, text)

		out, err := json.Marshal(body)
		require.NoError(t, err)

		var wrapped map[string]string
		require.NoError(t, json.Unmarshal(out, &wrapped))
		require.Equal(t, in, wrapped["raw"])
	}
}
