package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatbridge/go-wa-gateway/internal/config"
)

func TestGetPort(t *testing.T) {
	tests := []struct {
		name string
		port string
		want string
	}{
		{name: "default", port: "", want: ":3000"},
		{name: "bare port gains the colon", port: "8080", want: ":8080"},
		{name: "already prefixed passes through", port: ":9090", want: ":9090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			require.Equal(t, tt.want, config.New().GetPort())
		})
	}
}
