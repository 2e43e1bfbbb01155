package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liangyou/gosdk/pkg/models"
)

func TestOpenMissingFileIsEmpty(t *testing.T) {
	p, err := Open(filepath.Join(t.TempDir(), ".gosdk", "sdks.xml"))
	require.NoError(t, err)

	sdks, err := p.SDKs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sdks)
}

func TestWriteActionPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".gosdk", "sdks.xml")
	p := New(path)

	sdk := models.SDK{
		Name:          "go-1.21",
		Type:          "GoSDK",
		VersionString: "go1.21.0",
		HomePath:      "/opt/go1.21.0",
		Roots:         []string{"/opt/go1.21.0/src"},
	}
	require.NoError(t, p.WriteAction(ctx, func(tok *WriteToken) error {
		return tok.Add(sdk)
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<sdk name="go-1.21" type="GoSDK" version="go1.21.0" home="/opt/go1.21.0">`)
	assert.Contains(t, string(data), `<root path="/opt/go1.21.0/src"/>`)

	reloaded, err := Open(path)
	require.NoError(t, err)
	got, err := reloaded.SDK(ctx, "go-1.21")
	require.NoError(t, err)
	assert.Equal(t, sdk, got)
}

func TestModificatorCommitAfterCloseFails(t *testing.T) {
	ctx := context.Background()
	p := New(filepath.Join(t.TempDir(), "sdks.xml"))
	require.NoError(t, p.WriteAction(ctx, func(tok *WriteToken) error {
		return tok.Add(models.SDK{Name: "a", Type: "GoSDK"})
	}))

	var leaked *SdkModificator
	require.NoError(t, p.WriteAction(ctx, func(tok *WriteToken) error {
		mod, err := tok.Modificator("a")
		leaked = mod
		return err
	}))

	leaked.SetHomePath("/elsewhere")
	assert.ErrorIs(t, leaked.Commit(), ErrTokenClosed)

	got, err := p.SDK(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.HomePath)
}

func TestModificatorChangesInvisibleUntilCommit(t *testing.T) {
	ctx := context.Background()
	p := New(filepath.Join(t.TempDir(), "sdks.xml"))

	err := p.WriteAction(ctx, func(tok *WriteToken) error {
		require.NoError(t, tok.Add(models.SDK{Name: "a", HomePath: "/old"}))
		mod, err := tok.Modificator("a")
		require.NoError(t, err)
		mod.SetHomePath("/new")
		mod.SetVersionString("go1.22.0")

		before, _ := tok.SDK("a")
		assert.Equal(t, "/old", before.HomePath)

		require.NoError(t, mod.Commit())
		after, _ := tok.SDK("a")
		assert.Equal(t, "/new", after.HomePath)
		assert.Equal(t, "go1.22.0", after.VersionString)
		return nil
	})
	require.NoError(t, err)
}

func TestWriteActionErrorSkipsSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sdks.xml")
	p := New(path)

	err := p.WriteAction(ctx, func(tok *WriteToken) error {
		require.NoError(t, tok.Add(models.SDK{Name: "a"}))
		return ErrSdkNotFound
	})
	assert.ErrorIs(t, err, ErrSdkNotFound)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	sdks, err := p.SDKs(ctx)
	require.NoError(t, err)
	assert.Empty(t, sdks)
}

func TestWriteActionErrorRestoresMemory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sdks.xml")
	p := New(path)
	require.NoError(t, p.WriteAction(ctx, func(tok *WriteToken) error {
		require.NoError(t, tok.Add(models.SDK{Name: "a", HomePath: "/old"}))
		return tok.Add(models.SDK{Name: "b", HomePath: "/b"})
	}))

	var held *WriteToken
	err := p.WriteAction(ctx, func(tok *WriteToken) error {
		held = tok
		mod, err := tok.Modificator("a")
		require.NoError(t, err)
		mod.SetHomePath("/new")
		require.NoError(t, mod.Commit())
		require.NoError(t, tok.Remove("b"))
		require.NoError(t, tok.Add(models.SDK{Name: "c"}))
		return errors.New("setup paths failed")
	})
	require.EqualError(t, err, "setup paths failed")
	assert.ErrorIs(t, held.Add(models.SDK{Name: "d"}), ErrTokenClosed)

	sdks, err := p.SDKs(ctx)
	require.NoError(t, err)
	require.Len(t, sdks, 2)
	assert.Equal(t, "/old", sdks[0].HomePath)
	assert.Equal(t, "b", sdks[1].Name)

	reloaded, err := Open(path)
	require.NoError(t, err)
	disk, err := reloaded.SDKs(ctx)
	require.NoError(t, err)
	require.Len(t, disk, 2)
	assert.Equal(t, "/old", disk[0].HomePath)
	assert.Equal(t, "b", disk[1].Name)
}

func TestWriteActionSaveFailureRestoresMemory(t *testing.T) {
	ctx := context.Background()
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))
	p := New(filepath.Join(parent, "sdks.xml"))

	err := p.WriteAction(ctx, func(tok *WriteToken) error {
		return tok.Add(models.SDK{Name: "a"})
	})
	require.Error(t, err)

	sdks, err := p.SDKs(ctx)
	require.NoError(t, err)
	assert.Empty(t, sdks)
}

func TestWriteActionPanicClosesToken(t *testing.T) {
	ctx := context.Background()
	p := New(filepath.Join(t.TempDir(), "sdks.xml"))

	var held *WriteToken
	assert.Panics(t, func() {
		_ = p.WriteAction(ctx, func(tok *WriteToken) error {
			held = tok
			require.NoError(t, tok.Add(models.SDK{Name: "a"}))
			panic("boom")
		})
	})
	assert.ErrorIs(t, held.Remove("a"), ErrTokenClosed)

	sdks, err := p.SDKs(ctx)
	require.NoError(t, err)
	assert.Empty(t, sdks)
}

func TestWriteActionExcludesReaders(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "sdks.xml"))
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- p.WriteAction(context.Background(), func(tok *WriteToken) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.SDKs(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)

	_, err = p.SDKs(context.Background())
	assert.NoError(t, err)
}

func TestRemoveAndDuplicates(t *testing.T) {
	ctx := context.Background()
	p := New(filepath.Join(t.TempDir(), "sdks.xml"))

	require.NoError(t, p.WriteAction(ctx, func(tok *WriteToken) error {
		return tok.Add(models.SDK{Name: "a"})
	}))
	err := p.WriteAction(ctx, func(tok *WriteToken) error {
		return tok.Add(models.SDK{Name: "a"})
	})
	assert.ErrorIs(t, err, ErrSdkExists)

	require.NoError(t, p.WriteAction(ctx, func(tok *WriteToken) error {
		return tok.Remove("a")
	}))
	_, err = p.SDK(ctx, "a")
	assert.ErrorIs(t, err, ErrSdkNotFound)
}

func TestOpenRejectsForeignRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdks.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<project/>`), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestSdksUsingHome(t *testing.T) {
	ctx := context.Background()
	p := New(filepath.Join(t.TempDir(), "sdks.xml"))
	require.NoError(t, p.WriteAction(ctx, func(tok *WriteToken) error {
		if err := tok.Add(models.SDK{Name: "a", Type: "GoSDK", HomePath: "/opt/go1.21.0"}); err != nil {
			return err
		}
		if err := tok.Add(models.SDK{Name: "b", Type: "GoSDK", HomePath: "/opt/go1.21.0/"}); err != nil {
			return err
		}
		return tok.Add(models.SDK{Name: "c", Type: "GoSDK", HomePath: "/opt/go1.22.0"})
	}))

	names, err := p.SdksUsingHome(ctx, "/opt/go1.21.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
