package connector

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-tools/connect-db/internal/secrets"
)

// stubClient writes an executable shell script standing in for psql.
func stubClient(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub client scripts require a posix shell")
	}
	path := filepath.Join(t.TempDir(), "psql")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755)
	require.NoError(t, err)
	return path
}

func stubSecrets(t *testing.T, url string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "orders.db.json"),
		[]byte(`{"data": {"db_url": "`+url+`"}}`), 0o600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "orders.db-role.json"),
		[]byte(`{"username": "alice", "password": "s3cr3t"}`), 0o600)
	require.NoError(t, err)
	return dir
}

func testConfig() *Config {
	return &Config{SecretsDir: DefaultSecretsDir, Client: DefaultClient}
}

func TestLauncher_Run_PassesResolvedURL(t *testing.T) {
	dir := stubSecrets(t, "postgresql://{{username}}:{{password}}@h:5432/orders")
	client := stubClient(t, `echo "argc=$#"; echo "url=$1"`)

	var stdout bytes.Buffer
	l := NewLauncher(testConfig(),
		WithSecretsDir(dir),
		WithClient(client),
		WithStdio(strings.NewReader(""), &stdout, os.Stderr),
	)

	code, err := l.Run(context.Background(), "orders")

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "argc=1")
	assert.Contains(t, stdout.String(), "url=postgresql://alice:s3cr3t@h:5432/orders")
}

func TestLauncher_Run_ExportsPassword(t *testing.T) {
	dir := stubSecrets(t, "postgresql://{{username}}:{{password}}@h:5432/orders")
	client := stubClient(t, `echo "pw=$PGPASSWORD"`)

	var stdout bytes.Buffer
	l := NewLauncher(testConfig(),
		WithSecretsDir(dir),
		WithClient(client),
		WithStdio(strings.NewReader(""), &stdout, os.Stderr),
	)

	_, err := l.Run(context.Background(), "orders")

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "pw=s3cr3t")
}

func TestLauncher_Run_ExportPasswordDisabled(t *testing.T) {
	dir := stubSecrets(t, "postgresql://{{username}}:{{password}}@h:5432/orders")
	client := stubClient(t, `echo "pw=[$PGPASSWORD]"`)

	var stdout bytes.Buffer
	l := NewLauncher(testConfig(),
		WithSecretsDir(dir),
		WithClient(client),
		WithExportPassword(false),
		WithEnv([]string{"PATH=" + os.Getenv("PATH")}),
		WithStdio(strings.NewReader(""), &stdout, os.Stderr),
	)

	_, err := l.Run(context.Background(), "orders")

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "pw=[]")
}

func TestLauncher_Run_MirrorsExitCode(t *testing.T) {
	dir := stubSecrets(t, "postgresql://{{username}}:{{password}}@h:5432/orders")
	client := stubClient(t, "exit 3")

	l := NewLauncher(testConfig(),
		WithSecretsDir(dir),
		WithClient(client),
		WithStdio(strings.NewReader(""), os.Stdout, os.Stderr),
	)

	code, err := l.Run(context.Background(), "orders")

	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestLauncher_Run_ClientKilledBySignal(t *testing.T) {
	dir := stubSecrets(t, "postgresql://{{username}}:{{password}}@h:5432/orders")
	client := stubClient(t, "kill -TERM $$")

	l := NewLauncher(testConfig(),
		WithSecretsDir(dir),
		WithClient(client),
		WithStdio(strings.NewReader(""), os.Stdout, os.Stderr),
	)

	code, err := l.Run(context.Background(), "orders")

	require.NoError(t, err)
	assert.Equal(t, 128+int(syscall.SIGTERM), code)
}

func TestLauncher_Run_ClientNotFound(t *testing.T) {
	dir := stubSecrets(t, "postgresql://{{username}}:{{password}}@h:5432/orders")

	l := NewLauncher(testConfig(),
		WithSecretsDir(dir),
		WithClient(filepath.Join(t.TempDir(), "no-such-client")),
	)

	_, err := l.Run(context.Background(), "orders")

	require.ErrorIs(t, err, ErrClientStart)
}

func TestLauncher_Run_SecretsMissing(t *testing.T) {
	l := NewLauncher(testConfig(), WithSecretsDir(t.TempDir()))

	_, err := l.Run(context.Background(), "orders")

	require.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestLauncher_Run_UnparseableURLStillLaunches(t *testing.T) {
	// Component parsing is for display only; a URL the parser rejects is
	// still handed to the client verbatim.
	dir := stubSecrets(t, "service=orders-ro")
	client := stubClient(t, `echo "url=$1"`)

	var stdout bytes.Buffer
	l := NewLauncher(testConfig(),
		WithSecretsDir(dir),
		WithClient(client),
		WithStdio(strings.NewReader(""), &stdout, os.Stderr),
	)

	code, err := l.Run(context.Background(), "orders")

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "url=service=orders-ro")
}
