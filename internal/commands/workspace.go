package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledenadmin/ledenadmin/internal/auditlog"
	"github.com/ledenadmin/ledenadmin/internal/categories"
	"github.com/ledenadmin/ledenadmin/internal/config"
	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/gitops"
	"github.com/ledenadmin/ledenadmin/internal/logging"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
	"github.com/ledenadmin/ledenadmin/internal/store/csvstore"
)

// workspace bundles the services of one ledenadmin directory.
type workspace struct {
	root  string
	cfg   *config.Config
	ctx   context.Context
	store *csvstore.Store
	fees  *fees.Service
	audit *auditlog.Log
}

// openWorkspace loads <dir>/.env and <dir>/ledenadmin.yaml and builds the
// services on top of them.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	dir, _ := cmd.Flags().GetString("dir")
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	envFile := filepath.Join(root, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run 'ledenadmin init' first)", err)
	}
	cfg.ApplyEnv(os.LookupEnv)

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if pretty, _ := cmd.Flags().GetBool("log-pretty"); pretty {
		cfg.Log.Pretty = true
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level)
	if cfg.Log.Pretty {
		logger = logging.New(cfg.Log.Level, true)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithContext(ctx, logger)

	actor, _ := cmd.Flags().GetString("actor")
	store := csvstore.New(root)
	return &workspace{
		root:  root,
		cfg:   cfg,
		ctx:   ctx,
		store: store,
		fees:  fees.NewService(store, store),
		audit: auditlog.New(root, actor),
	}, nil
}

func (w *workspace) categories() (*categories.Service, error) {
	return categories.Load(w.root)
}

// record writes an audit entry and, when the workspace is a git
// repository, commits the change as "<action>: <subject>".
func (w *workspace) record(action, subject, details string) error {
	if err := w.audit.Record(action, subject, details); err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	if !gitops.IsRepo(w.root) {
		return nil
	}
	author := gitops.Author{Name: w.cfg.Git.AuthorName, Email: w.cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(w.root, action+": "+subject, author)
	if errors.Is(err, gitops.ErrNoChanges) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("committing workspace: %w", err)
	}
	log := logging.FromContext(w.ctx)
	log.Debug().Str("commit", hash).Str("action", action).Msg("workspace committed")
	return nil
}

// parseDate accepts DD/MM/YYYY or YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := period.ParseDateBE(s); err == nil {
		return t, nil
	}
	if t, err := period.FromISO(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want DD/MM/YYYY or YYYY-MM-DD)", s)
}

// parseOptionalDate is parseDate that maps "" to the zero time.
func parseOptionalDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return parseDate(s)
}

// parseAmount reads a Belgian-notation amount such as "1.234,50". A dot
// is only accepted as a thousands separator, so "25.50" is an error rather
// than 2550.
func parseAmount(s string) (decimal.Decimal, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		n := 0
		for j := i + 1; j < len(s) && s[j] >= '0' && s[j] <= '9'; j++ {
			n++
		}
		if n != 3 {
			return decimal.Zero, fmt.Errorf("invalid amount %q: use a comma for decimals, e.g. 25,50", s)
		}
	}
	return money.ParseEuroInput(money.EuroInputMask(s)), nil
}
