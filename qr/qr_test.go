package qr_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatbridge/go-wa-gateway/qr"
)

func TestDataURL(t *testing.T) {
	url, err := qr.DataURL("2@abcdefgh,ijklmnop,qrstuvwx")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	require.Equal(t, "\x89PNG", string(raw[:4]), "payload is a PNG image")
}

func TestDataURLEmptyCode(t *testing.T) {
	_, err := qr.DataURL("")
	require.Error(t, err)
}
