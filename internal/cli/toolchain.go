package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liangyou/gosdk/internal/version"
)

func (a *App) newToolchainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "toolchain",
		Aliases: []string{"tc"},
		Short:   "List, install and remove Go toolchains",
	}
	cmd.AddCommand(a.newToolchainRemoteCmd())
	cmd.AddCommand(a.newToolchainListCmd())
	cmd.AddCommand(a.newToolchainInstallCmd())
	cmd.AddCommand(a.newToolchainRemoveCmd())
	return cmd
}

func (a *App) newToolchainRemoteCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "List toolchains available for download",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Toolchains == nil {
				return errors.New("remote listing is unavailable")
			}
			versions, err := a.services.Toolchains.RemoteVersions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(versions) == 0 {
				fmt.Fprintln(out, "No remote versions available.")
				return nil
			}
			if limit > 0 && len(versions) > limit {
				versions = versions[:limit]
			}
			fmt.Fprintln(out, "Remote versions:")
			for _, v := range versions {
				fmt.Fprintf(out, "  %s\n", version.FormatRemoteVersion(v))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many versions")
	return cmd
}

func (a *App) newToolchainListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed toolchains and the SDKs using them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Toolchains == nil {
				return errors.New("local listing is unavailable")
			}
			versions, err := a.services.Toolchains.LocalVersions()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(versions) == 0 {
				fmt.Fprintln(out, "No versions installed.")
				return nil
			}
			fmt.Fprintln(out, "Installed versions:")
			for _, v := range versions {
				var users []string
				if a.services.Tracker != nil && v.InstallPath != "" {
					users, err = a.services.Tracker.Project().SdksUsingHome(cmd.Context(), v.InstallPath)
					if err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "  %s\n", version.FormatLocalVersion(v, users))
			}
			return nil
		},
	}
}

func (a *App) newToolchainInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <version>",
		Short: "Download and install a toolchain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Installer == nil || a.services.Toolchains == nil {
				return errors.New("install command is unavailable")
			}
			versions, err := a.services.Toolchains.RemoteVersions(cmd.Context())
			if err != nil {
				return err
			}
			target, err := findVersion(versions, normalizeVersion(args[0]))
			if err != nil {
				return err
			}
			path, err := a.services.Installer.Install(cmd.Context(), *target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %s at %s\n", target.DisplayName(), path)
			return nil
		},
	}
}

func (a *App) newToolchainRemoveCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "remove <version>",
		Aliases: []string{"uninstall"},
		Short:   "Remove an installed toolchain",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.services.Uninstaller == nil {
				return errors.New("remove command is unavailable")
			}
			normalized := normalizeVersion(args[0])
			remaining, err := a.services.Uninstaller.Uninstall(cmd.Context(), normalized, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed go%s\n", normalized)
			fmt.Fprintln(out, "Remaining versions:")
			if len(remaining) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for _, v := range remaining {
				fmt.Fprintf(out, "  %s\n", version.FormatLocalVersion(v, nil))
			}

			if a.services.Tracker == nil {
				return nil
			}
			report, err := a.services.Tracker.UpdateUnknownSdksNow(cmd.Context())
			if err != nil {
				return err
			}
			if n := len(report.Invalid); n > 0 {
				fmt.Fprintf(out, "%d sdk(s) are now invalid, run `gosdk doctor` for fixes\n", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Remove even if project SDKs still use the toolchain")
	return cmd
}
