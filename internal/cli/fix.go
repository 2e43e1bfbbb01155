package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liangyou/gosdk/internal/sdk"
)

func (a *App) newFixCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "fix [name...]",
		Short: "Apply suggested fixes to invalid SDKs",
		Long:  "Re-check the project and repoint every invalid SDK (or only the named ones) at a matching local toolchain, downloading one when none is installed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			fixes, err := a.scan(ctx, t)
			if err != nil {
				return err
			}
			fixes, err = selectFixes(fixes, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(fixes) == 0 {
				fmt.Fprintln(out, "Nothing to fix.")
				return nil
			}

			var errs []error
			for _, fix := range fixes {
				name := fix.Sdk.SdkName()
				if !fix.HasAction() {
					fmt.Fprintf(out, "%s: no fix available\n", name)
					continue
				}
				if dryRun {
					fmt.Fprintf(out, "%s: would %s\n", name, fix.Action.Description())
					continue
				}
				if err := fix.Apply(ctx); err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					a.logger.Error("sdk_fix_failed", "sdk", name, "error", err)
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					continue
				}
				fmt.Fprintf(out, "%s: fixed, %s\n", name, fix.Action.Description())
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the fixes without applying them")
	return cmd
}

// selectFixes 只保留 names 中列出的 SDK，names 为空时返回全部。
func selectFixes(fixes []*sdk.Fix, names []string) ([]*sdk.Fix, error) {
	if len(names) == 0 {
		return fixes, nil
	}
	byName := make(map[string]*sdk.Fix, len(fixes))
	for _, fix := range fixes {
		byName[fix.Sdk.SdkName()] = fix
	}
	selected := make([]*sdk.Fix, 0, len(names))
	for _, name := range names {
		fix, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("sdk %s is not invalid or does not exist", name)
		}
		selected = append(selected, fix)
	}
	return selected, nil
}
