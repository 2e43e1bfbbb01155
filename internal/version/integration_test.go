package version

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/liangyou/gosdk/internal/project"
	"github.com/liangyou/gosdk/internal/sdk"
	"github.com/liangyou/gosdk/pkg/models"
)

func TestIntegrationDownloadFixThenUninstall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStorage(t)

	archive := createGoArchive(t, map[string]string{
		"bin/go":           "binary",
		"VERSION":          "go1.22.0\n",
		"src/runtime/x.go": "package runtime",
	})
	downloader := &stubDownloader{path: archive}
	installer := NewInstaller(store, downloader)

	proj := project.New(filepath.Join(t.TempDir(), ".gosdk", "sdks.xml"))
	if err := proj.WriteAction(ctx, func(tok *project.WriteToken) error {
		return tok.Add(models.SDK{
			Name:          "main",
			Type:          sdk.GoTypeID,
			VersionString: "go1.22.0",
			HomePath:      filepath.Join(t.TempDir(), "gone"),
		})
	}); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	resolver := sdk.NewResolver(sdk.NewRegistry(sdk.GoType{}), sdk.WithDownloads(sdk.NewDownloadTracker()))
	tracker := sdk.NewTracker(proj, resolver, sdk.WithInstaller(installer))
	releases := &fakeRemoteClient{versions: []models.Version{
		{Number: "1.22.0", FullName: "go1.22.0", Checksum: "abc"},
		{Number: "1.21.5", FullName: "go1.21.5", Checksum: "def"},
	}}
	suggester := sdk.NewSuggester(NewLister(releases, store), releases, nil)

	fixes, err := tracker.Fixes(ctx, suggester)
	if err != nil {
		t.Fatalf("Fixes failed: %v", err)
	}
	if len(fixes) != 1 || !fixes[0].HasAction() || fixes[0].Action.Kind() != sdk.FixDownload {
		t.Fatalf("expected a single download fix, got %#v", fixes)
	}
	if err := fixes[0].Apply(ctx); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	installPath := store.GetInstallPath("1.22.0")
	got, err := proj.SDK(ctx, "main")
	if err != nil {
		t.Fatalf("SDK lookup: %v", err)
	}
	if got.HomePath != installPath || got.VersionString != "go1.22.0" {
		t.Fatalf("sdk not repointed: %#v", got)
	}
	if len(got.Roots) != 2 {
		t.Fatalf("expected src and bin roots, got %v", got.Roots)
	}
	if report := tracker.LastReport(); report == nil || len(report.Invalid) != 0 {
		t.Fatalf("expected clean report after fix, got %#v", report)
	}

	uninstaller := NewUninstaller(store, proj, nil)
	if _, err := uninstaller.Uninstall(ctx, "1.22.0", false); !errors.Is(err, ErrToolchainInUse) {
		t.Fatalf("expected ErrToolchainInUse, got %v", err)
	}
	if _, err := uninstaller.Uninstall(ctx, "1.22.0", true); err != nil {
		t.Fatalf("forced uninstall failed: %v", err)
	}

	report, err := tracker.UpdateUnknownSdksNow(ctx)
	if err != nil {
		t.Fatalf("rescan failed: %v", err)
	}
	if len(report.Invalid) != 1 || report.Invalid[0].SdkName() != "main" {
		t.Fatalf("expected main to be invalid again, got %#v", report.Invalid)
	}
}
