// Package env 生成激活某个 SDK 所需的 shell 片段，并可写入 shell 配置文件。
package env

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	blockStart = "# >>> gosdk sdk >>>"
	blockEnd   = "# <<< gosdk sdk <<<"
)

// Manager 负责 shell 检测与配置块维护。
type Manager struct {
	homeFn func() (string, error)
	envFn  func(string) string
}

// Option 配置 Manager。
type Option func(*Manager)

// WithHomeFunc 替换用户主目录的获取方式。
func WithHomeFunc(fn func() (string, error)) Option {
	return func(m *Manager) {
		if fn != nil {
			m.homeFn = fn
		}
	}
}

// WithGetenv 替换环境变量读取。
func WithGetenv(fn func(string) string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.envFn = fn
		}
	}
}

// NewManager 构造环境配置服务。
func NewManager(opts ...Option) *Manager {
	m := &Manager{homeFn: os.UserHomeDir, envFn: os.Getenv}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DetectShell 根据 SHELL 环境变量推断当前 shell，未设置时视为 bash。
func (m *Manager) DetectShell() (string, error) {
	shellPath := m.envFn("SHELL")
	if shellPath == "" {
		shellPath = "bash"
	}
	shell := filepath.Base(shellPath)
	switch shell {
	case "bash", "zsh", "fish":
		return shell, nil
	default:
		return "", fmt.Errorf("env: unsupported shell %q", shell)
	}
}

// Script 返回把 goRoot 设为当前 GOROOT 的 shell 语句。
func (m *Manager) Script(shell, goRoot string) (string, error) {
	if goRoot == "" {
		return "", errors.New("env: goRoot is required")
	}
	bin := filepath.Join(goRoot, "bin")
	switch shell {
	case "bash", "zsh":
		return fmt.Sprintf("export GOROOT=%q\nexport PATH=%q:\"$PATH\"\n", goRoot, bin), nil
	case "fish":
		return fmt.Sprintf("set -gx GOROOT %q\nfish_add_path --prepend %q\n", goRoot, bin), nil
	default:
		return "", fmt.Errorf("env: unsupported shell %q", shell)
	}
}

// WriteShellConfig 在 shell 配置文件中写入（或替换）激活块，返回被修改的文件路径。
func (m *Manager) WriteShellConfig(shell, goRoot string) (string, error) {
	script, err := m.Script(shell, goRoot)
	if err != nil {
		return "", err
	}
	configPath, err := m.configFileForShell(shell)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("env: ensure config dir: %w", err)
	}

	var existing []byte
	if data, err := os.ReadFile(configPath); err == nil {
		existing = data
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("env: read config: %w", err)
	}

	block := blockStart + "\n" + strings.TrimRight(script, "\n") + "\n" + blockEnd
	if err := os.WriteFile(configPath, []byte(mergeConfig(string(existing), block)), 0o644); err != nil {
		return "", fmt.Errorf("env: write config: %w", err)
	}
	return configPath, nil
}

func (m *Manager) configFileForShell(shell string) (string, error) {
	home, err := m.homeFn()
	if err != nil {
		return "", fmt.Errorf("env: home dir: %w", err)
	}
	switch shell {
	case "bash":
		rc := filepath.Join(home, ".bashrc")
		if _, err := os.Stat(rc); err == nil {
			return rc, nil
		}
		return filepath.Join(home, ".bash_profile"), nil
	case "zsh":
		return filepath.Join(home, ".zshrc"), nil
	case "fish":
		return filepath.Join(home, ".config", "fish", "conf.d", "gosdk.fish"), nil
	default:
		return "", fmt.Errorf("env: unsupported shell %q", shell)
	}
}

func mergeConfig(existing, block string) string {
	cleaned := strings.TrimRight(removeExistingBlock(existing), "\n")
	if strings.TrimSpace(cleaned) == "" {
		return block + "\n"
	}
	return cleaned + "\n\n" + block + "\n"
}

func removeExistingBlock(content string) string {
	var kept []string
	skipping := false
	for _, line := range strings.Split(content, "\n") {
		switch strings.TrimSpace(line) {
		case blockStart:
			skipping = true
			continue
		case blockEnd:
			skipping = false
			continue
		}
		if !skipping {
			kept = append(kept, line)
		}
	}
	return strings.Trim(strings.Join(kept, "\n"), "\n")
}
