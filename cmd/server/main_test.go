package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ayush/task-manager/backend/internal/config"
)

func TestRun_ReturnsStartupErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	slog.SetDefault(logger)

	cases := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"bad mongo uri", config.Config{MongoURI: "notmongo://localhost"}, "mongo connect"},
		{"bad postgres dsn", config.Config{PostgresDSN: "postgres://%zz"}, "postgres connect"},
		{"redis unreachable", config.Config{RedisAddr: "127.0.0.1:1"}, "redis connect"},
	}
	for _, c := range cases {
		err := run(&c.cfg, logger)
		if err == nil || !strings.HasPrefix(err.Error(), c.want) {
			t.Errorf("%s: err = %v, want prefix %q", c.name, err, c.want)
		}
	}
}
