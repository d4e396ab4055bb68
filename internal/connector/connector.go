// Package connector resolves a database connection URL from vault secret
// files and launches an interactive database client with it.
package connector

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vault-tools/connect-db/internal/logging"
	"github.com/vault-tools/connect-db/internal/secrets"
)

type Launcher struct {
	store          *secrets.Store
	client         string
	exportPassword bool
	printURL       bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    []string
}

func NewLauncher(config *Config, opts ...Option) *Launcher {
	l := &Launcher{
		store:          secrets.NewStore(config.SecretsDir),
		client:         config.Client,
		exportPassword: config.ShouldExportPassword(),

		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		env:    os.Environ(),
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run resolves the connection URL for the named database and hands the
// terminal to the client. It blocks until the client exits and returns
// the client's exit code. A non-nil error means the client never ran.
func (l *Launcher) Run(ctx context.Context, dbName string) (int, error) {
	log := logging.New("connector")

	conn, err := l.store.Load(dbName)
	if err != nil {
		return 0, fmt.Errorf("load secrets: %w", err)
	}

	url := Resolve(conn.URLTemplate, conn.Credentials.Username, conn.Credentials.Password)

	if params, err := ParseConnParams(url); err == nil {
		log.InfoContext(ctx, "connecting",
			"host", params.Host,
			"port", params.Port,
			"user", params.Username,
		)
	} else {
		log.DebugContext(ctx, "connection url has unexpected shape", "error", err)
	}
	if l.printURL {
		log.InfoContext(ctx, "resolved connection url", "url", MaskURL(url))
	}

	return l.launch(ctx, url, conn.Credentials.Password)
}

type Option = func(*Launcher)

func WithSecretsDir(dir string) Option {
	return func(l *Launcher) {
		l.store = secrets.NewStore(dir)
	}
}

func WithClient(client string) Option {
	return func(l *Launcher) {
		l.client = client
	}
}

func WithPrintURL() Option {
	return func(l *Launcher) {
		l.printURL = true
	}
}

func WithExportPassword(export bool) Option {
	return func(l *Launcher) {
		l.exportPassword = export
	}
}

func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdin = stdin
		l.stdout = stdout
		l.stderr = stderr
	}
}

func WithEnv(env []string) Option {
	return func(l *Launcher) {
		l.env = env
	}
}
