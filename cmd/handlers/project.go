package handlers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"seosuite/internal/exchange"
	"seosuite/internal/logger"
	"seosuite/internal/report"
	"seosuite/internal/store"
	"seosuite/internal/tui"
)

// NewProjectCmd creates the project command group
func NewProjectCmd() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects and their master keywords",
		Long: `Projects keep linking inputs, the last generated map, keyword extraction
results and a master keyword list. One project is active at a time; commands
accept "active" wherever a project ID is expected.`,
	}

	projectCmd.AddCommand(newProjectCreateCmd())
	projectCmd.AddCommand(newProjectListCmd())
	projectCmd.AddCommand(newProjectShowCmd())
	projectCmd.AddCommand(newProjectRenameCmd())
	projectCmd.AddCommand(newProjectDeleteCmd())
	projectCmd.AddCommand(newProjectUseCmd())
	projectCmd.AddCommand(newProjectExportCmd())
	projectCmd.AddCommand(newProjectImportCmd())
	projectCmd.AddCommand(newProjectKeywordsCmd())

	return projectCmd
}

// withStore opens the store for the duration of fn.
func withStore(fn func(st *store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return fn(st)
}

func newProjectCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project and make it active",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				project, err := st.CreateProject(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (%s)\n", project.Name, project.ID)
				return nil
			})
		},
	}
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				ctx := cmd.Context()
				projects, err := st.ListProjects(ctx)
				if err != nil {
					return err
				}
				active, err := st.ActiveProject(ctx)
				if err != nil {
					return err
				}
				activeID := ""
				if active != nil {
					activeID = active.ID
				}
				report.New(cmd.OutOrStdout()).Projects(projects, activeID)
				return nil
			})
		},
	}
}

func newProjectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [ID]",
		Short: "Show a project's saved state and master keywords (default: active project)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := activeProject
			if len(args) == 1 {
				ref = args[0]
			}

			return withStore(func(st *store.Store) error {
				ctx := cmd.Context()
				project, err := resolveProject(ctx, st, ref)
				if err != nil {
					return err
				}
				state, err := st.LoadState(ctx, project.ID)
				if err != nil {
					return err
				}
				keywords, err := st.ListKeywords(ctx, project.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Project: %s (%s)\n", project.Name, project.ID)
				fmt.Fprintf(out, "Updated: %s\n", project.UpdatedAt.Local().Format("2006-01-02 15:04"))
				if pillar := state.Linking.Pillar; pillar.URL != "" {
					fmt.Fprintf(out, "Pillar:  %s (%s)\n", pillar.Title, pillar.URL)
				}

				reporter := report.New(out)
				if state.Linking.LinkingMap != nil {
					reporter.LinkingMap(*state.Linking.LinkingMap)
				}
				if state.Extractor.Results != nil {
					reporter.Keywords(*state.Extractor.Results)
				}
				reporter.MasterKeywords(keywords)
				return nil
			})
		},
	}
}

func newProjectRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a project",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				ctx := cmd.Context()
				project, err := resolveProject(ctx, st, args[0])
				if err != nil {
					return err
				}
				project, err = st.RenameProject(ctx, project.ID, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed project %s to %q\n", project.ID, project.Name)
				return nil
			})
		},
	}
}

func newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a project with its state and keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				ctx := cmd.Context()
				project, err := resolveProject(ctx, st, args[0])
				if err != nil {
					return err
				}
				if err := st.DeleteProject(ctx, project.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %q\n", project.Name)
				return nil
			})
		},
	}
}

func newProjectUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use [ID]",
		Short: "Make a project the active one (pick interactively without an ID)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				ctx := cmd.Context()

				id := ""
				if len(args) == 1 {
					id = args[0]
				} else {
					picked, ok, err := pickProject(cmd, st)
					if err != nil || !ok {
						return err
					}
					id = picked.ID
				}

				if err := st.SetActiveProject(ctx, id); err != nil {
					return err
				}
				project, err := st.GetProject(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Active project: %s\n", project.Name)
				return nil
			})
		},
	}
}

// pickProject lets the user choose a project on an interactive terminal.
func pickProject(cmd *cobra.Command, st *store.Store) (store.Project, bool, error) {
	if info, err := os.Stdin.Stat(); err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return store.Project{}, false, fmt.Errorf("a project ID is required when stdin is not a terminal")
	}

	ctx := cmd.Context()
	projects, err := st.ListProjects(ctx)
	if err != nil {
		return store.Project{}, false, err
	}
	if len(projects) == 0 {
		return store.Project{}, false, fmt.Errorf("no projects yet; create one with 'seosuite project create'")
	}
	active, err := st.ActiveProject(ctx)
	if err != nil {
		return store.Project{}, false, err
	}
	activeID := ""
	if active != nil {
		activeID = active.ID
	}
	return tui.PickProject(projects, activeID, os.Stdin, cmd.OutOrStdout())
}

func newProjectExportCmd() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "export [ID]",
		Short: "Export a project bundle as JSON or YAML (default: active project)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := activeProject
			if len(args) == 1 {
				ref = args[0]
			}
			if format == "" {
				format = bundleFormat(output)
			}

			return withStore(func(st *store.Store) error {
				ctx := cmd.Context()
				project, err := resolveProject(ctx, st, ref)
				if err != nil {
					return err
				}
				bundle, err := st.ExportProject(ctx, project.ID)
				if err != nil {
					return err
				}
				data, err := store.MarshalBundle(bundle, format)
				if err != nil {
					return err
				}
				return withOutput(cmd, output, func(w io.Writer) error {
					_, err := w.Write(data)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the bundle to this file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the output extension, else json)")

	return cmd
}

// bundleFormat picks yaml for .yaml/.yml paths and json otherwise.
func bundleFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func newProjectImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project bundle as a new, active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			bundle, err := store.UnmarshalBundle(data)
			if err != nil {
				return err
			}

			return withStore(func(st *store.Store) error {
				project, err := st.ImportProject(cmd.Context(), bundle)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported project %q (%s) with %d keywords\n", project.Name, project.ID, len(bundle.Keywords))
				return nil
			})
		},
	}
}

func newProjectKeywordsCmd() *cobra.Command {
	var project string

	keywordsCmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage a project's master keyword list",
	}
	keywordsCmd.PersistentFlags().StringVarP(&project, "project", "p", activeProject, "project ID, or \"active\"")

	// run resolves the project and calls fn with it.
	run := func(cmd *cobra.Command, fn func(st *store.Store, p store.Project) error) error {
		return withStore(func(st *store.Store) error {
			p, err := resolveProject(cmd.Context(), st, project)
			if err != nil {
				return err
			}
			return fn(st, p)
		})
	}

	var intent string
	addCmd := &cobra.Command{
		Use:   "add KEYWORD...",
		Short: "Add keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(st *store.Store, p store.Project) error {
				inputs := make([]store.KeywordInput, len(args))
				for i, kw := range args {
					inputs[i] = store.KeywordInput{Keyword: kw, Intent: intent}
				}
				added, err := st.AddKeywords(cmd.Context(), p.ID, inputs)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d keywords to %q\n", len(added), p.Name)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&intent, "intent", "", "informational, navigational, commercial or transactional")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List keywords in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(st *store.Store, p store.Project) error {
				keywords, err := st.ListKeywords(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				report.New(cmd.OutOrStdout()).MasterKeywords(keywords)
				return nil
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove KEYWORD_ID...",
		Short: "Remove keywords by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(st *store.Store, p store.Project) error {
				for _, id := range args {
					if err := st.DeleteKeyword(cmd.Context(), p.ID, id); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d keywords from %q\n", len(args), p.Name)
				return nil
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Append keywords from a CSV with keyword and optional intent columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			inputs, err := exchange.ReadMasterKeywordsCSV(f)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				logger.Warn("No keywords found", "file", args[0])
				return nil
			}

			return run(cmd, func(st *store.Store, p store.Project) error {
				added, err := st.AddKeywords(cmd.Context(), p.ID, inputs)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d keywords into %q\n", len(added), p.Name)
				return nil
			})
		},
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export keywords as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(st *store.Store, p store.Project) error {
				keywords, err := st.ListKeywords(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				return withOutput(cmd, output, func(w io.Writer) error {
					return exchange.WriteMasterKeywordsCSV(w, keywords)
				})
			})
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to this file instead of stdout")

	keywordsCmd.AddCommand(addCmd, listCmd, removeCmd, importCmd, exportCmd)
	return keywordsCmd
}
