package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tellerd-dev/tellerd/internal/config"
	"github.com/tellerd-dev/tellerd/internal/store"
)

func newInitCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a tellerd workspace (config file and empty ledger database)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, root)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")

	return cmd
}

func runInit(cmd *cobra.Command, root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating workspace dir: %w", err)
	}

	cfgPath := filepath.Join(root, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	st, err := store.Open(dbPath(root, cfg))
	if err != nil {
		return err
	}
	defer st.Close()

	cmd.Printf("Initialized tellerd workspace in %s\n", root)
	return nil
}
