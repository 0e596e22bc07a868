package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("non-existent config file", func(t *testing.T) {
		cfg, err := Load("invalid/path/to/config.yml")

		assert.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Nil(t, cfg)
	})

	t.Run("invalid config file", func(t *testing.T) {
		data := `http_server:
  port: not number
sqlite:
  path: ./test.db`

		f := createTempFile(t, []byte(data))
		cfg, err := Load(f.Name())

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("success", func(t *testing.T) {
		data := `env: prod
http_server:
  port: 9090
sqlite:
  path: /var/lib/k0r/k0r.db
  max_open_conns: 4
dispatch:
  max_queries: 8`

		f := createTempFile(t, []byte(data))
		cfg, err := Load(f.Name())

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		var wantCfg Config
		setDefaults(&wantCfg)

		wantCfg.Env = EnvProd
		wantCfg.HTTPServer.Port = 9090
		wantCfg.Sqlite.Path = "/var/lib/k0r/k0r.db"
		wantCfg.Sqlite.MaxOpenConns = 4
		wantCfg.Dispatch.MaxQueries = 8

		assert.Equal(t, wantCfg, *cfg)
	})
}

func createTempFile(t testing.TB, data []byte) *os.File {
	t.Helper()

	f, err := os.CreateTemp("", "config.yml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() {
		f.Close()
		os.Remove(f.Name())
	})

	if _, err := f.Write(data); err != nil {
		t.Fatalf("Failed to write to file: %v", err)
	}

	return f
}

func TestHTTPServer_Addr(t *testing.T) {
	s := HTTPServer{Port: 8080}

	assert.Equal(t, ":8080", s.Addr())
}

func TestSqlite_DSN(t *testing.T) {
	s := Sqlite{
		Path:        "./k0r.db",
		BusyTimeout: 5 * time.Second,
	}

	assert.Equal(t, "file:./k0r.db?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", s.DSN())
}
