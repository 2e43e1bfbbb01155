package env

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T, shell string) (*Manager, string) {
	t.Helper()
	home := t.TempDir()
	m := NewManager(
		WithHomeFunc(func() (string, error) { return home, nil }),
		WithGetenv(func(key string) string {
			if key == "SHELL" {
				return shell
			}
			return ""
		}),
	)
	return m, home
}

func TestDetectShell(t *testing.T) {
	t.Parallel()

	cases := map[string]string{"/bin/zsh": "zsh", "/usr/bin/fish": "fish", "": "bash"}
	for in, want := range cases {
		m, _ := newTestManager(t, in)
		got, err := m.DetectShell()
		if err != nil || got != want {
			t.Fatalf("DetectShell(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	m, _ := newTestManager(t, "/bin/tcsh")
	if _, err := m.DetectShell(); err == nil {
		t.Fatal("expected unsupported shell error")
	}
}

func TestScript(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, "")
	bash, err := m.Script("bash", "/opt/go1.22.0")
	if err != nil {
		t.Fatalf("Script bash: %v", err)
	}
	if !strings.Contains(bash, `export GOROOT="/opt/go1.22.0"`) || !strings.Contains(bash, `export PATH="/opt/go1.22.0/bin":"$PATH"`) {
		t.Fatalf("unexpected bash script: %s", bash)
	}

	fish, err := m.Script("fish", "/opt/go1.22.0")
	if err != nil {
		t.Fatalf("Script fish: %v", err)
	}
	if !strings.Contains(fish, `set -gx GOROOT "/opt/go1.22.0"`) {
		t.Fatalf("unexpected fish script: %s", fish)
	}

	if _, err := m.Script("bash", ""); err == nil {
		t.Fatal("expected error for empty goRoot")
	}
}

func TestWriteShellConfigCreatesAndReplacesBlock(t *testing.T) {
	t.Parallel()

	m, home := newTestManager(t, "/bin/zsh")
	rc := filepath.Join(home, ".zshrc")
	if err := os.WriteFile(rc, []byte("alias ll='ls -l'\n"), 0o644); err != nil {
		t.Fatalf("seed rc: %v", err)
	}

	path, err := m.WriteShellConfig("zsh", "/opt/go1.21.0")
	if err != nil {
		t.Fatalf("WriteShellConfig: %v", err)
	}
	if path != rc {
		t.Fatalf("unexpected config path %s", path)
	}

	if _, err := m.WriteShellConfig("zsh", "/opt/go1.22.0"); err != nil {
		t.Fatalf("second WriteShellConfig: %v", err)
	}

	data, err := os.ReadFile(rc)
	if err != nil {
		t.Fatalf("read rc: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "alias ll='ls -l'") {
		t.Fatalf("existing content lost: %s", content)
	}
	if strings.Count(content, blockStart) != 1 || strings.Contains(content, "go1.21.0") {
		t.Fatalf("block not replaced: %s", content)
	}
	if !strings.Contains(content, "/opt/go1.22.0") {
		t.Fatalf("new block missing: %s", content)
	}
}

func TestBashFallsBackToProfile(t *testing.T) {
	t.Parallel()

	m, home := newTestManager(t, "/bin/bash")
	path, err := m.configFileForShell("bash")
	if err != nil {
		t.Fatalf("configFileForShell: %v", err)
	}
	if path != filepath.Join(home, ".bash_profile") {
		t.Fatalf("expected .bash_profile, got %s", path)
	}
}
