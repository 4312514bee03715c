package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tellerd-dev/tellerd/internal/importer"
)

func newImportCommand() *cobra.Command {
	var dir string
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load pending transactions from CSV files in import/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(dir)
			if err != nil {
				return err
			}
			defer e.close()

			parser := importer.DefaultRegistry().Get(format)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", format)
			}

			files, err := importer.Scan(e.root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				e.log.Info("no files to import")
				return nil
			}

			total := 0
			for _, file := range files {
				f, err := os.Open(file.Path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", file.Name, err)
				}
				txs, err := parser.Parse(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("parsing %s: %w", file.Name, err)
				}

				for _, tx := range txs {
					if err := e.st.InsertTransaction(cmd.Context(), tx); err != nil {
						return fmt.Errorf("importing %s: %w", file.Name, err)
					}
				}

				if err := importer.MarkProcessed(e.root, file.Name); err != nil {
					return err
				}
				e.log.Info("file imported",
					zap.String("file", file.Name),
					zap.Int("transactions", len(txs)),
				)
				total += len(txs)
			}

			cmd.Printf("Imported %d pending transactions from %d file(s)\n", total, len(files))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().StringVar(&format, "format", "simple", "import file format")

	return cmd
}
