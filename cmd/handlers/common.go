package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"seosuite/internal/config"
	"seosuite/internal/logger"
	"seosuite/internal/services"
	"seosuite/internal/store"
)

// activeProject selects the active project in --project flags.
const activeProject = "active"

// openStore opens the configured project store.
func openStore() (*store.Store, error) {
	st, err := services.OpenStore(config.Get())
	if err != nil {
		return nil, fmt.Errorf("failed to open project store: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logger.Error("Failed to close project store", err)
	}
}

// resolveProject returns the project named by ref, which is a project ID or
// "active".
func resolveProject(ctx context.Context, st *store.Store, ref string) (store.Project, error) {
	if ref != activeProject {
		return st.GetProject(ctx, ref)
	}

	project, err := st.ActiveProject(ctx)
	if err != nil {
		return store.Project{}, err
	}
	if project == nil {
		return store.Project{}, fmt.Errorf("no active project; create one with 'seosuite project create'")
	}
	return *project, nil
}

// withOutput calls fn with the file at path, or the command's stdout when path
// is empty or "-".
func withOutput(cmd *cobra.Command, path string, fn func(w io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("Wrote output", "path", path)
	return nil
}

// readInput returns the contents of path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
