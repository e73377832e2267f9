package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfigured(t *testing.T) {
	cases := []struct {
		name string
		cfg  DatabaseConfig
		want bool
	}{
		{"live credentials", DatabaseConfig{Host: "db.internal", Password: "secret"}, true},
		{"placeholder password", DatabaseConfig{Host: "db.internal", Password: PlaceholderPassword}, false},
		{"empty password", DatabaseConfig{Host: "db.internal"}, false},
		{"missing host", DatabaseConfig{Password: "secret"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.Configured())
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseDuration("2s", 5*time.Second))
	assert.Equal(t, 5*time.Second, parseDuration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, parseDuration("bogus", 5*time.Second))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"},
		splitAndTrim(" http://localhost:3000 , https://app.example.com ,"))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	// A fresh checkout must route to the local store.
	assert.False(t, cfg.Database.Configured())
	assert.Equal(t, "edufy:session:", cfg.Session.KeyPrefix)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "./data", cfg.Backend.LocalDataDir)
}
