package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTargetCmd(t *testing.T, args ...string) (*cobra.Command, *targetFlags) {
	t.Helper()
	f := &targetFlags{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, f
}

func TestTargetFlags_FlagsOnly(t *testing.T) {
	cmd, f := newTargetCmd(t, "--ip", "192.168.4.1", "--bin", "fw.bin")

	s, err := f.settings(cmd)
	require.NoError(t, err)
	assert.Equal(t, "192.168.4.1", s.IP)
	assert.Equal(t, 3232, s.Port)
	assert.Equal(t, "fw.bin", s.BinPath)
	assert.False(t, s.DisableScript)
}

func TestTargetFlags_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ota.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ip: 10.0.0.5\nport: 8266\nbin_path: /tmp/fw.bin\ndisable_script: true\n"), 0644))

	cmd, f := newTargetCmd(t, "--config", path, "--ip", "10.0.0.9", "--disable-script=false")

	s, err := f.settings(cmd)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", s.IP, "explicit flag wins")
	assert.Equal(t, 8266, s.Port, "unset flag keeps the config value")
	assert.Equal(t, "/tmp/fw.bin", s.BinPath)
	assert.False(t, s.DisableScript)
}

func TestTargetFlags_MissingConfig(t *testing.T) {
	cmd, f := newTargetCmd(t, "--config", filepath.Join(t.TempDir(), "missing.json"))

	_, err := f.settings(cmd)
	assert.Error(t, err)
}

func TestInspectCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fw.bin")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xE9}, 2048), 0644))

	cmd := newInspectCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--port", "8266", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "2 KB (2048 bytes)")
	assert.Contains(t, out.String(), "0 8266 2048 0aaaa")
}

func TestValidateCmd_RejectsBadInput(t *testing.T) {
	cmd := newValidateCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--ip", "192.168.4.1", "--bin", filepath.Join(t.TempDir(), "missing.bin")})
	assert.Error(t, cmd.Execute())
}

func TestFlashOptions_ProbeTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ota.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ip": "10.0.0.5", "probe_ttl": 8}`), 0644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"Default", nil, 0},
		{"Config file", []string{"--config", path}, 8},
		{"Flag wins over config", []string{"--config", path, "--probe-ttl", "4"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &flashOptions{}
			cmd := &cobra.Command{Use: "flash"}
			opts.register(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			settings, err := opts.target.settings(cmd)
			require.NoError(t, err)
			cfg := opts.transferConfig(cmd, settings)
			assert.Equal(t, tt.want, cfg.ProbeTTL)
		})
	}
}
