package legacy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Admin drives the tmwa-admin tool over stdin to perform account
// operations the SQL tables cannot express. Commands print a line
// containing "successfully" on success.
type Admin struct {
	path    string
	cwd     string
	timeout time.Duration
	logger  *slog.Logger
}

func NewAdmin(path, cwd string, logger *slog.Logger) *Admin {
	return &Admin{
		path:    path,
		cwd:     cwd,
		timeout: 15 * time.Second,
		logger:  logger,
	}
}

// CreateAccount registers a new account on the legacy login server.
// Gender is one of M, F or N.
func (a *Admin) CreateAccount(ctx context.Context, username, gender, email, password string) error {
	if email == "" {
		email = "a@a.com"
	}
	return a.run(ctx, fmt.Sprintf("create %s %s %s %s\n", username, gender, email, password))
}

// SetPassword overwrites an account password on the legacy login
// server, which also rewrites the flat file.
func (a *Admin) SetPassword(ctx context.Context, username, password string) error {
	return a.run(ctx, fmt.Sprintf("password %s %s\n", username, password))
}

func (a *Admin) run(ctx context.Context, command string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.path)
	cmd.Dir = a.cwd
	cmd.Stdin = strings.NewReader(command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		a.logger.Error("tmwa-admin failed", "error", err, "stderr", stderr.String())
		return fmt.Errorf("tmwa-admin: %w", err)
	}
	if stderr.Len() > 0 {
		a.logger.Error("tmwa-admin reported an error", "stderr", stderr.String())
	}
	if !strings.Contains(stdout.String(), "successfully") {
		// "have a connection" noise is printed while the login server
		// is synchronizing and does not indicate a command failure
		if !strings.Contains(stdout.String(), "have a connection") {
			a.logger.Error("unexpected tmwa-admin output", "stdout", stdout.String())
		}
		return fmt.Errorf("tmwa-admin: command was not acknowledged")
	}
	return nil
}
