package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logging.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "debuglevel: 5\nerrorlevel: 1\nlogdir: "+dir+"\nlog_size: 2k\nlog_rotate: 3\nlogfile: client.log\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.DebugLevel)
	assert.Equal(t, 1, cfg.ErrorLevel)
	assert.Equal(t, dir, cfg.LogDir)
	assert.Equal(t, int64(2048), cfg.LogSize)
	assert.Equal(t, 3, cfg.LogRotate)

	names := cfg.fileNames()
	assert.Equal(t, "client.log", names.local)
	assert.Equal(t, DefaultTransferLogFile, names.transfer)
	assert.Equal(t, DefaultNativeLogFile, names.native)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "debuglevel: 5\nlogdir: /tmp\n")
	t.Setenv("PKGLOG_DEBUGLEVEL", "7")
	t.Setenv("PKGLOG_LOG_SIZE", "3M")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DebugLevel)
	assert.Equal(t, int64(3<<20), cfg.LogSize)
}

func TestLoadConfigRejects(t *testing.T) {
	for name, body := range map[string]string{
		"verbosity out of range": "debuglevel: 11\n",
		"negative error dial":    "errorlevel: -1\n",
		"empty log dir":          "logdir: \"\"\n",
		"negative rotate":        "log_rotate: -2\n",
		"bad size":               "log_size: lots\n",
		"file name with slash":   "logfile: ../escape.log\n",
	} {
		_, err := LoadConfig(writeConfig(t, body))
		assert.Error(t, err, name)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfigNil(t *testing.T) {
	assert.Error(t, validateConfig(nil))
	assert.NoError(t, validateConfig(DefaultConfig()))
}

func TestInvalidFields(t *testing.T) {
	err := newValidator().Struct(&Config{DebugLevel: 12, LogDir: ""})
	require.Error(t, err)
	assert.Equal(t, " (DebugLevel: dial, LogDir: required)", invalidFields(err))
	assert.Empty(t, invalidFields(os.ErrNotExist))
}
