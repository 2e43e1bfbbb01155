package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/liangyou/gosdk/internal/render"
	"github.com/liangyou/gosdk/internal/sdk"
	"github.com/liangyou/gosdk/pkg/models"
)

func (a *App) newDoctorCmd() *cobra.Command {
	var (
		format string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Re-check project SDKs and suggest fixes for invalid ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.tracker()
			if err != nil {
				return err
			}
			fixes, err := a.scan(cmd.Context(), t)
			if err != nil {
				return err
			}
			d := diagnose(t, fixes)
			if err := writeDiagnosis(cmd.OutOrStdout(), d, format); err != nil {
				return err
			}
			if strict && !d.Healthy() {
				return fmt.Errorf("%d invalid sdk(s)", len(d.Invalid))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any SDK is invalid")
	return cmd
}

// scan 重新扫描项目并为每个失效 SDK 构造修复。
func (a *App) scan(ctx context.Context, t *sdk.Tracker) ([]*sdk.Fix, error) {
	if _, err := t.UpdateUnknownSdksNow(ctx); err != nil {
		return nil, err
	}
	suggester := a.services.Suggester
	if suggester == nil {
		suggester = sdk.NewSuggester(nil, nil, a.logger)
	}
	return t.Fixes(ctx, suggester)
}

func diagnose(t *sdk.Tracker, fixes []*sdk.Fix) models.Diagnosis {
	d := models.Diagnosis{
		Project: t.Project().Path(),
		Invalid: []models.InvalidSDK{},
	}
	if report := t.LastReport(); report != nil {
		d.CheckedAt = report.CheckedAt
		d.Total = report.Total
	}
	for _, fix := range fixes {
		s := fix.Sdk.SDK()
		entry := models.InvalidSDK{
			Name:            s.Name,
			Type:            s.Type,
			ExpectedVersion: fix.Sdk.ExpectedVersionString(),
			HomePath:        s.HomePath,
		}
		if fix.HasAction() {
			entry.FixKind = string(fix.Action.Kind())
			entry.Fix = fix.Action.Description()
		}
		d.Invalid = append(d.Invalid, entry)
	}
	return d
}

func writeDiagnosis(w io.Writer, d models.Diagnosis, format string) error {
	switch format {
	case "", "text":
		_, err := fmt.Fprint(w, render.Diagnosis(d))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
