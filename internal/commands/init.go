package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledenadmin/ledenadmin/internal/categories"
	"github.com/ledenadmin/ledenadmin/internal/config"
	"github.com/ledenadmin/ledenadmin/internal/gitops"
	"github.com/ledenadmin/ledenadmin/internal/store/csvstore"
)

func newInitCommand() *cobra.Command {
	var name string
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledenadmin workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, name, useGit)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledenadmin workspace at %s (%s)\n", absDir, hash)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledenadmin workspace at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "association name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&useGit, "git", false, "track the workspace in a git repository")

	return cmd
}

// runInit creates the workspace layout. With useGit it also creates a
// repository and returns the hash of the initial commit.
func runInit(dir, name string, useGit bool) (string, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return "", fmt.Errorf("%s already exists", cfgPath)
	}

	dirs := []string{
		"members",
		"fees",
		"categories",
		"logs",
		"exports",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	if err := config.Save(cfgPath, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	if err := csvstore.New(dir).Init(); err != nil {
		return "", fmt.Errorf("creating member and fee files: %w", err)
	}

	if err := categories.NewService(categories.Defaults()).Save(dir); err != nil {
		return "", fmt.Errorf("writing categories: %w", err)
	}

	gitignore := "exports/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	if !useGit {
		return "", nil
	}
	if err := gitops.Init(dir); err != nil {
		return "", err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(dir, "init: Initialize "+name, author)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
