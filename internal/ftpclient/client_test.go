package ftpclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ftpsvc "iolib/internal/service/ftp"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ftp.example.com", "ftp.example.com:21"},
		{"ftp.example.com:2121", "ftp.example.com:2121"},
		{"10.0.0.1", "10.0.0.1:21"},
		{"::1", "[::1]:21"},
		{"[::1]:990", "[::1]:990"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Address(tt.in))
		})
	}
}

func TestDial_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = Dial(context.Background(), ftpsvc.ConnectOptions{Host: addr, Timeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial "+addr)
}
