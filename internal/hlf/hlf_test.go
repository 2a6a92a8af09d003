package hlf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profile = `{
	"name": "test-network-org1",
	"client": {"organization": "Org1", "credentialStore": {"path": "/tmp/wallet"}},
	"channels": {"mychannel": {}}
}`

func writeProfile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "connection-org1.json")
	require.NoError(t, os.WriteFile(path, []byte(content), os.ModePerm))
	return path
}

func TestProfile(t *testing.T) {
	raw, err := loadProfile(writeProfile(t, profile))
	require.NoError(t, err)

	channel, err := getChannelName(raw)
	require.NoError(t, err)
	assert.Equal(t, "mychannel", channel)

	org, err := getOrgName(raw)
	require.NoError(t, err)
	assert.Equal(t, "Org1", org)
}

func TestProfileErrors(t *testing.T) {
	_, err := loadProfile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = loadProfile(writeProfile(t, "{"))
	assert.Error(t, err)

	raw, err := loadProfile(writeProfile(t, `{"client": {}}`))
	require.NoError(t, err)
	_, err = getChannelName(raw)
	assert.Error(t, err)
	_, err = getOrgName(raw)
	assert.Error(t, err)
}

func TestConnectMissingProfile(t *testing.T) {
	source := NewHlfSource(filepath.Join(t.TempDir(), "missing.json"), "Admin")
	assert.Error(t, source.Connect())
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHlfSource("", "Admin").Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
