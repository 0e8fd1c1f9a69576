// Package legacy wraps the out-of-band interfaces to the legacy game
// server: its flat-file account database and the tmwa-admin tool.
package legacy

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FlatfileAccount is one row of the flat-file account database. The
// password is stored in the "!salt$hash" format.
type FlatfileAccount struct {
	ID       int
	Name     string
	Password string
}

var accountLineRegex = regexp.MustCompile(`^([0-9]+)\t([^\t]+)\t([^\t]+)\t`)

// Flatfile looks up accounts in the flat-file database with ripgrep.
// The SQL login table can hold stale passwords for accounts that
// predate the SQL migration, so callers fall back to this when an SQL
// password check fails.
type Flatfile struct {
	dir     string
	timeout time.Duration
}

func NewFlatfile(dir string) *Flatfile {
	return &Flatfile{dir: dir, timeout: 10 * time.Second}
}

// FindAccount searches the flat file for an exact account id and name
// match. Returns nil when no line matches or when the flat file is not
// available on this host.
func (f *Flatfile) FindAccount(ctx context.Context, accountID int, name string) (*FlatfileAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	pattern := fmt.Sprintf("^%d\t%s\t", accountID, regexp.QuoteMeta(name))
	cmd := exec.CommandContext(ctx, "rg", "--case-sensitive", "--max-count=1", pattern, "account.txt")
	cmd.Dir = f.dir

	out, err := cmd.Output()
	if err != nil {
		// no match or no flat file; both mean the account is not here
		return nil, nil
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return parseAccountLine(line)
}

func parseAccountLine(line string) (*FlatfileAccount, error) {
	m := accountLineRegex.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("malformed flat-file account line")
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("flat-file account id: %w", err)
	}
	return &FlatfileAccount{ID: id, Name: m[2], Password: m[3]}, nil
}
