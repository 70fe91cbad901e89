package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit host and port", Config{ServerHost: "127.0.0.1", ServerPort: 9000}, "127.0.0.1:9000"},
		{"empty host", Config{ServerPort: 9000}, "0.0.0.0:9000"},
		{"empty port", Config{ServerHost: "10.0.0.1"}, "10.0.0.1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Addr())
		})
	}
}

func TestConfig_BaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"domain wins", Config{ServerDomain: "https://img.example.com", ServerHost: "0.0.0.0", ServerPort: 80}, "https://img.example.com"},
		{"wildcard host", Config{ServerHost: "0.0.0.0", ServerPort: 8080}, "http://localhost:8080"},
		{"plain host", Config{ServerHost: "127.0.0.1", ServerPort: 9090}, "http://127.0.0.1:9090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.BaseURL())
		})
	}
}

func TestConfig_GetWorkerCount(t *testing.T) {
	cfg := Config{WorkerCount: 4}
	assert.Equal(t, 4, cfg.GetWorkerCount())

	cfg.WorkerCount = 0
	assert.GreaterOrEqual(t, cfg.GetWorkerCount(), 2)
}
