package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "Plain endpoint",
			cfg:  Config{Endpoint: "localhost:9000", AccessKey: "testkey", SecretKey: "testsecret", Bucket: "records", Region: "us-east-1"},
		},
		{
			name: "Endpoint with http scheme",
			cfg:  Config{Endpoint: "http://localhost:9000", AccessKey: "testkey", SecretKey: "testsecret"},
		},
		{
			name: "Endpoint with https scheme",
			cfg:  Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "testkey", SecretKey: "testsecret", UseSSL: true, Region: "us-east-1"},
		},
		{
			name:    "Endpoint with path",
			cfg:     Config{Endpoint: "localhost:9000/records", AccessKey: "testkey", SecretKey: "testsecret"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestNewTransport_Timeouts(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"Unset uses default", 0, defaultTimeout},
		{"Negative uses default", -5, defaultTimeout},
		{"Configured", 5, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransport(Config{TimeoutSeconds: tt.seconds})

			assert.Equal(t, tt.want, tr.TLSHandshakeTimeout)
			assert.Equal(t, tt.want, tr.ResponseHeaderTimeout)
			assert.NotNil(t, tr.DialContext)
			assert.NotNil(t, tr.Proxy)
		})
	}
}
