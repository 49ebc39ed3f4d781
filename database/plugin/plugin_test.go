// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plugin_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock plugin implementation for testing
type mockPlugin struct {
	started bool
}

func (m *mockPlugin) Start() error {
	m.started = true
	return nil
}

func (m *mockPlugin) Stop() error { return nil }

type testOptions struct {
	dataDir   string
	cacheSize uint64
	workers   int
	gc        bool
}

func registerTestPlugin(
	t *testing.T,
	pluginType plugin.PluginType,
) (string, *testOptions) {
	t.Helper()
	opts := &testOptions{}
	pluginName := "test-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               pluginType,
		Name:               pluginName,
		Description:        "test plugin",
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{
				Name:         "data-dir",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: ".ballot",
				Dest:         &(opts.dataDir),
			},
			{
				Name:         "cache-size",
				Type:         plugin.PluginOptionTypeUint,
				DefaultValue: uint64(1024),
				Dest:         &(opts.cacheSize),
			},
			{
				Name:         "workers",
				Type:         plugin.PluginOptionTypeInt,
				DefaultValue: 2,
				Dest:         &(opts.workers),
			},
			{
				Name:         "gc",
				Type:         plugin.PluginOptionTypeBool,
				DefaultValue: true,
				Dest:         &(opts.gc),
			},
		},
	})
	return pluginName, opts
}

func TestRegisterAndGetPlugin(t *testing.T) {
	pluginName, _ := registerTestPlugin(t, plugin.PluginTypeBlob)
	p := plugin.GetPlugin(plugin.PluginTypeBlob, pluginName)
	require.NotNil(t, p)
	_, ok := p.(*mockPlugin)
	assert.True(t, ok, "expected plugin of type *mockPlugin, got %T", p)
	// Wrong type
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeMetadata, pluginName))
	// Unknown name
	assert.Nil(
		t,
		plugin.GetPlugin(plugin.PluginTypeBlob, "non-existent-"+t.Name()),
	)
	found := false
	for _, entry := range plugin.GetPlugins(plugin.PluginTypeBlob) {
		if entry.Name == pluginName {
			found = true
		}
	}
	assert.True(t, found, "plugin not in GetPlugins list")
}

func TestStartPlugin(t *testing.T) {
	pluginName, _ := registerTestPlugin(t, plugin.PluginTypeMetadata)
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	require.NoError(t, err)
	mp, ok := p.(*mockPlugin)
	require.True(t, ok)
	assert.True(t, mp.started)
	_, err = plugin.StartPlugin(plugin.PluginTypeMetadata, "missing-"+t.Name())
	require.Error(t, err)
}

func TestStartPluginDeferredError(t *testing.T) {
	testErr := errors.New("open failed")
	pluginName := "error-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeBlob,
		Name: pluginName,
		NewFromOptionsFunc: func() plugin.Plugin {
			return plugin.NewErrorPlugin(testErr)
		},
	})
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	require.ErrorIs(t, err, testErr)
}

func TestSetPluginOption(t *testing.T) {
	pluginName, opts := registerTestPlugin(t, plugin.PluginTypeBlob)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "data-dir", ""),
	)
	assert.Empty(t, opts.dataDir)
	// Wrong value type
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "data-dir", 123),
	)
	// Unknown options are ignored
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "does-not-exist", "x"),
	)
	// Uint accepts both uint64 and non-negative int
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "cache-size", uint64(100000000)),
	)
	assert.Equal(t, uint64(100000000), opts.cacheSize)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "cache-size", 42),
	)
	assert.Equal(t, uint64(42), opts.cacheSize)
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "cache-size", -1),
	)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "gc", true),
	)
	assert.True(t, opts.gc)
	require.NoError(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "workers", 8),
	)
	assert.Equal(t, 8, opts.workers)
	// Plugin not found
	require.Error(
		t,
		plugin.SetPluginOption(plugin.PluginTypeBlob, "nonexistent", "data-dir", t.TempDir()),
	)
}

func TestProcessEnvVars(t *testing.T) {
	_, opts := registerTestPlugin(t, plugin.PluginTypeBlob)
	envPrefix := "BALLOT_DATABASE_BLOB_TEST_TESTPROCESSENVVARS_"
	t.Setenv(envPrefix+"DATA_DIR", "/tmp/ballot-env")
	t.Setenv(envPrefix+"CACHE_SIZE", "2048")
	t.Setenv(envPrefix+"GC", "false")
	opts.gc = true
	require.NoError(t, plugin.ProcessEnvVars("BALLOT_DATABASE"))
	assert.Equal(t, "/tmp/ballot-env", opts.dataDir)
	assert.Equal(t, uint64(2048), opts.cacheSize)
	assert.False(t, opts.gc)
	t.Setenv(envPrefix+"WORKERS", "many")
	require.Error(t, plugin.ProcessEnvVars("BALLOT_DATABASE"))
}

func TestProcessConfig(t *testing.T) {
	pluginName, opts := registerTestPlugin(t, plugin.PluginTypeMetadata)
	err := plugin.ProcessConfig(
		plugin.PluginTypeMetadata,
		map[string]map[string]any{
			pluginName: {
				"data-dir":   "/var/lib/ballot",
				"cache-size": 10,
			},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ballot", opts.dataDir)
	assert.Equal(t, uint64(10), opts.cacheSize)
}

func TestPopulateCmdlineOptions(t *testing.T) {
	pluginName, opts := registerTestPlugin(t, plugin.PluginTypeBlob)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))
	flagPrefix := "--blob-" + pluginName + "-"
	require.NoError(
		t,
		fs.Parse([]string{
			flagPrefix + "data-dir=/data",
			flagPrefix + "workers=4",
		}),
	)
	assert.Equal(t, "/data", opts.dataDir)
	assert.Equal(t, 4, opts.workers)
	// Unset flags keep their registered defaults
	assert.Equal(t, uint64(1024), opts.cacheSize)
	assert.True(t, opts.gc)
}
