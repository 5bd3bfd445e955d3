package clickhouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	tests := map[string]struct {
		cfg  ClientConfig
		want string
	}{
		"native": {
			cfg:  ClientConfig{Host: "ch", Port: 9000, Database: "livestock", User: "app", Password: "p@ss"},
			want: "clickhouse://app:p%40ss@ch:9000/livestock",
		},
		"http with timeouts": {
			cfg:  ClientConfig{Host: "ch", Port: 8123, Database: "default", UseHTTP: true, DialTimeout: 5 * time.Second},
			want: "http://ch:8123/default?dial_timeout=5s",
		},
		"async insert": {
			cfg:  ClientConfig{Host: "ch", Port: 9000, Database: "d", AsyncInsert: true, WaitForAsync: true},
			want: "clickhouse://ch:9000/d?async_insert=1&wait_for_async_insert=1",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}
