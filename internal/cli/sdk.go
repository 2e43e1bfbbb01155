package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liangyou/gosdk/internal/project"
	"github.com/liangyou/gosdk/internal/render"
	"github.com/liangyou/gosdk/internal/sdk"
	"github.com/liangyou/gosdk/pkg/models"
)

func (a *App) newSdkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdk",
		Short: "Manage the SDKs registered for the project",
	}
	cmd.AddCommand(a.newSdkListCmd())
	cmd.AddCommand(a.newSdkAddCmd())
	cmd.AddCommand(a.newSdkRemoveCmd())
	cmd.AddCommand(a.newSdkEnvCmd())
	return cmd
}

func (a *App) tracker() (*sdk.Tracker, error) {
	if a.services == nil || a.services.Tracker == nil {
		return nil, errors.New("project is unavailable")
	}
	return a.services.Tracker, nil
}

func (a *App) newSdkListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List project SDKs and whether they are valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker()
			if err != nil {
				return err
			}
			sdks, err := t.Project().SDKs(cmd.Context())
			if err != nil {
				return err
			}
			report, err := t.UpdateUnknownSdksNow(cmd.Context())
			if err != nil {
				return err
			}
			invalid := make(map[string]bool, len(report.Invalid))
			for _, inv := range report.Invalid {
				invalid[inv.SdkName()] = true
			}
			fmt.Fprint(cmd.OutOrStdout(), render.SDKTable(sdks, invalid))
			return nil
		},
	}
}

func (a *App) newSdkAddCmd() *cobra.Command {
	var (
		home    string
		typeID  string
		version string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register an SDK for the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker()
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			if name == "" {
				return errors.New("sdk name is required")
			}
			typ, ok := a.services.Types.Lookup(typeID)
			if !ok {
				return fmt.Errorf("unknown sdk type %q (known: %s)", typeID, strings.Join(a.services.Types.IDs(), ", "))
			}
			if home != "" {
				if home, err = filepath.Abs(home); err != nil {
					return fmt.Errorf("resolving home: %w", err)
				}
			}

			ctx := cmd.Context()
			valid := false
			if home != "" {
				if valid, err = typ.IsValidHome(ctx, home); err != nil {
					return err
				}
			}

			err = t.Project().WriteAction(ctx, func(tok *project.WriteToken) error {
				if err := tok.Add(models.SDK{Name: name, Type: typ.ID(), VersionString: version, HomePath: home}); err != nil {
					return err
				}
				if !valid {
					return nil
				}
				mod, err := tok.Modificator(name)
				if err != nil {
					return err
				}
				if err := typ.SetupPaths(ctx, mod); err != nil {
					return err
				}
				return mod.Commit()
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added sdk %s\n", name)
			if !valid {
				fmt.Fprintf(out, "warning: %s is not a valid %s home, run `gosdk doctor` for fixes\n", orNone(home), typ.ID())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&home, "home", "", "SDK home directory")
	cmd.Flags().StringVar(&typeID, "type", sdk.GoTypeID, "SDK type")
	cmd.Flags().StringVar(&version, "version", "", "Expected version, e.g. go1.22.0 (read from the home when valid)")
	return cmd
}

func (a *App) newSdkRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Unregister an SDK",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker()
			if err != nil {
				return err
			}
			name := args[0]
			err = t.Project().WriteAction(cmd.Context(), func(tok *project.WriteToken) error {
				return tok.Remove(name)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed sdk %s\n", name)
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(empty home)"
	}
	return s
}

func (a *App) newSdkEnvCmd() *cobra.Command {
	var (
		shell string
		write bool
	)
	cmd := &cobra.Command{
		Use:   "env <name>",
		Short: "Print (or install) shell settings that activate an SDK",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker()
			if err != nil {
				return err
			}
			if a.services.Shell == nil {
				return errors.New("shell integration is unavailable")
			}
			ctx := cmd.Context()
			s, err := t.Project().SDK(ctx, args[0])
			if err != nil {
				return err
			}
			typ, ok := a.services.Types.Lookup(s.Type)
			if !ok {
				return fmt.Errorf("unknown sdk type %q", s.Type)
			}
			valid := false
			if s.HomePath != "" {
				if valid, err = typ.IsValidHome(ctx, s.HomePath); err != nil {
					return err
				}
			}
			if !valid {
				return fmt.Errorf("sdk %s has no valid home, run `gosdk fix %s` first", s.Name, s.Name)
			}

			if shell == "" {
				if shell, err = a.services.Shell.DetectShell(); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			if write {
				path, err := a.services.Shell.WriteShellConfig(shell, s.HomePath)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Updated %s, restart your shell to use %s\n", path, s)
				return nil
			}
			script, err := a.services.Shell.Script(shell, s.HomePath)
			if err != nil {
				return err
			}
			fmt.Fprint(out, script)
			return nil
		},
	}
	cmd.Flags().StringVar(&shell, "shell", "", "Shell dialect: bash, zsh or fish (default from $SHELL)")
	cmd.Flags().BoolVar(&write, "write", false, "Write the settings into the shell startup file")
	return cmd
}
