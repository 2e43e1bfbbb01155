package sdk

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liangyou/gosdk/pkg/models"
)

func TestSuggest_ExactLocalAndDownload(t *testing.T) {
	root := t.TempDir()
	exact := makeGoHome(t, filepath.Join(root, "go1.21.0"), "go1.21.0")
	newer := makeGoHome(t, filepath.Join(root, "go1.21.4"), "go1.21.4")

	installed := fakeMetadata{versions: []models.Version{
		{Number: "1.21.4", FullName: "go1.21.4", InstallPath: newer},
		{Number: "1.21.0", FullName: "go1.21.0", InstallPath: exact},
		{Number: "1.20.0", FullName: "go1.20.0", InstallPath: filepath.Join(root, "removed")},
	}}
	releases := fakeReleases{versions: []models.Version{
		{Number: "1.22.0", FullName: "go1.22.0"},
		{Number: "1.21.0", FullName: "go1.21.0"},
	}}

	s := NewSuggester(installed, releases, nil)
	inv := &InvalidSdk{sdk: models.SDK{Name: "go", VersionString: "go1.21.0"}, typ: GoType{}}

	local, download, err := s.Suggest(context.Background(), inv)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, exact, local.HomePath)
	assert.Equal(t, "go1.21.0", local.VersionString)
	require.NotNil(t, download)
	assert.Equal(t, "1.21.0", download.Release.Number)
}

func TestSuggest_FallsBackToNewestStableOnLine(t *testing.T) {
	releases := fakeReleases{versions: []models.Version{
		{Number: "1.22rc1"},
		{Number: "1.21.2"},
		{Number: "1.21.7"},
		{Number: "1.20.9"},
	}}
	s := NewSuggester(fakeMetadata{}, releases, nil)

	inv := &InvalidSdk{sdk: models.SDK{Name: "go", VersionString: "go1.21.99"}, typ: GoType{}}
	local, download, err := s.Suggest(context.Background(), inv)
	require.NoError(t, err)
	assert.Nil(t, local)
	require.NotNil(t, download)
	assert.Equal(t, "1.21.7", download.Release.Number)

	inv = &InvalidSdk{sdk: models.SDK{Name: "go"}, typ: GoType{}}
	_, download, err = s.Suggest(context.Background(), inv)
	require.NoError(t, err)
	require.NotNil(t, download)
	assert.Equal(t, "1.21.7", download.Release.Number)

	inv = &InvalidSdk{sdk: models.SDK{Name: "go", VersionString: "go1.19.0"}, typ: GoType{}}
	_, download, err = s.Suggest(context.Background(), inv)
	require.NoError(t, err)
	assert.Nil(t, download)
}

func TestSuggest_SourceFailuresAreWarnings(t *testing.T) {
	logger, buf := captureLogger()
	s := NewSuggester(fakeMetadata{err: errors.New("corrupt metadata")}, fakeReleases{err: errors.New("offline")}, logger)

	inv := &InvalidSdk{sdk: models.SDK{Name: "go", VersionString: "go1.21.0"}, typ: GoType{}}
	local, download, err := s.Suggest(context.Background(), inv)
	require.NoError(t, err)
	assert.Nil(t, local)
	assert.Nil(t, download)
	assert.Contains(t, buf.String(), "sdk_local_suggestion_failed")
	assert.Contains(t, buf.String(), "sdk_download_suggestion_failed")
}

func TestSuggest_CancellationPropagates(t *testing.T) {
	s := NewSuggester(nil, fakeReleases{err: context.Canceled}, nil)
	inv := &InvalidSdk{sdk: models.SDK{Name: "go"}, typ: GoType{}}

	_, _, err := s.Suggest(context.Background(), inv)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrackerFixes(t *testing.T) {
	ctx := context.Background()
	home := makeGoHome(t, filepath.Join(t.TempDir(), "go1.21.0"), "go1.21.0")
	tracker := newGoTracker(t,
		models.SDK{Name: "ok", Type: GoTypeID, HomePath: home},
		models.SDK{Name: "broken", Type: GoTypeID, HomePath: "/nowhere", VersionString: "go1.21.0"},
		models.SDK{Name: "orphan", Type: GoTypeID, HomePath: "/nowhere", VersionString: "go1.5"},
	)
	s := NewSuggester(fakeMetadata{versions: []models.Version{{Number: "1.21.0", FullName: "go1.21.0", InstallPath: home}}}, nil, nil)

	fixes, err := tracker.Fixes(ctx, s)
	require.NoError(t, err)
	require.Len(t, fixes, 2)

	byName := map[string]*Fix{}
	for _, f := range fixes {
		byName[f.Sdk.SdkName()] = f
	}
	require.True(t, byName["broken"].HasAction())
	assert.Equal(t, FixLocal, byName["broken"].Action.Kind())
	assert.False(t, byName["orphan"].HasAction())
}
