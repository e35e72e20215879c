// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogama/appstatus/request"
	"github.com/gogama/appstatus/upstream"
	"github.com/gogama/appstatus/upstream/httpsource"
	"github.com/gogama/appstatus/upstream/simulator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
deadline: 5s
metrics: ":9090"
log:
  verbosity: 1
  development: true
sources:
  - name: sim
    kind: simulator
    retry_delay: 100ms
    min_latency: 10ms
    max_latency: 20ms
    status: Approved
    seed: 42
  - name: remote
    kind: http
    url: http://status.example.com/v1
    timeout: 2s
    default_retry_delay: 250ms
`

func TestParse(t *testing.T) {
	t.Run("sample", func(t *testing.T) {
		cfg, err := Parse([]byte(sample))
		require.NoError(t, err)

		assert.Equal(t, "5s", cfg.Deadline)
		assert.Equal(t, ":9090", cfg.Metrics)
		assert.Equal(t, Log{Verbosity: 1, Development: true}, cfg.Log)
		require.Len(t, cfg.Sources, 2)
		require.NotNil(t, cfg.Sources[0].Seed)
		assert.Equal(t, int64(42), *cfg.Sources[0].Seed)
		assert.Equal(t, 5*time.Second, cfg.DeadlinePolicy().Timeout(&request.Execution{}))

		sources := cfg.Build()
		require.Len(t, sources, 2)
		assert.Equal(t, "sim", upstream.Name(sources[0], 0))
		assert.Equal(t, "remote", upstream.Name(sources[1], 1))
		remote, ok := sources[1].(*httpsource.Source)
		require.True(t, ok)
		assert.Equal(t, "http://status.example.com/v1", remote.BaseURL)
		assert.Equal(t, 250*time.Millisecond, remote.DefaultRetryDelay)
		assert.NotNil(t, remote.HTTPDoer)
	})
	t.Run("default deadline", func(t *testing.T) {
		cfg, err := Parse([]byte("sources: []\n"))
		require.NoError(t, err)
		assert.Equal(t, "15s", cfg.Deadline)
		assert.Empty(t, cfg.Build())
	})
	t.Run("unnamed simulator", func(t *testing.T) {
		cfg, err := Parse([]byte("sources:\n  - kind: simulator\n    max_latency: 5ms\n"))
		require.NoError(t, err)
		sources := cfg.Build()
		require.Len(t, sources, 1)
		sim, ok := sources[0].(*simulator.Simulator)
		require.True(t, ok)
		assert.Equal(t, 5*time.Millisecond, sim.MaxLatency)
		assert.Equal(t, "source-0", upstream.Name(sources[0], 0))
	})
	t.Run("errors", func(t *testing.T) {
		testCases := []struct {
			name string
			yaml string
			msg  string
		}{
			{"bad yaml", "sources: [", "failed to parse YAML"},
			{"unknown field", "deadlines: 5s\n", "failed to parse YAML"},
			{"bad deadline", "deadline: soon\n", "invalid deadline"},
			{"zero deadline", "deadline: 0s\n", "deadline must be positive"},
			{"negative verbosity", "log:\n  verbosity: -1\n", "log verbosity must not be negative"},
			{"unknown kind", "sources:\n  - kind: carrier-pigeon\n", `source 0: unknown kind "carrier-pigeon"`},
			{"missing url", "sources:\n  - kind: http\n", "source 0: url is required"},
			{"bad url", "sources:\n  - kind: http\n    url: ftp://x\n", `invalid url "ftp://x"`},
			{"url on simulator", "sources:\n  - kind: simulator\n    url: http://x\n", "url is only valid for http sources"},
			{"negative delay", "sources:\n  - kind: simulator\n    retry_delay: -1s\n", "retry_delay must not be negative"},
			{"bad latency", "sources:\n  - kind: simulator\n    min_latency: fast\n", "invalid min_latency"},
			{"inverted latency", "sources:\n  - kind: simulator\n    min_latency: 2s\n    max_latency: 1s\n", "max_latency must be at least min_latency"},
			{"duplicate name", "sources:\n  - name: a\n    kind: simulator\n  - name: a\n    kind: simulator\n", `source 1: duplicate name "a"`},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				cfg, err := Parse([]byte(testCase.yaml))
				assert.Nil(t, cfg)
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.msg)
			})
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appstatus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("deadline: never\n"), 0o600))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15*time.Second, cfg.DeadlinePolicy().Timeout(&request.Execution{}))
	sources := cfg.Build()
	require.Len(t, sources, 2)
	assert.Equal(t, "simulator-1", upstream.Name(sources[0], 0))
	assert.Equal(t, "simulator-2", upstream.Name(sources[1], 1))
}
