package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/liangyou/gosdk/pkg/models"
)

// LocalStorage 定义已安装工具链元数据的读写接口。
type LocalStorage interface {
	SaveMetadata(version models.Version) error
	LoadMetadata() ([]models.Version, error)
	DeleteMetadata(version string) error
	GetInstallPath(version string) string
}

// FileStorage 通过 metadata.json 持久化已安装的工具链。
type FileStorage struct {
	metadataPath string
	versionsDir  string
	mu           sync.Mutex
}

// MetadataFile 表示 metadata.json 的结构。
type MetadataFile struct {
	Versions []models.Version `json:"versions"`
}

// NewFileStorage 构造一个文件系统存储实例，未配置目录时使用 ~/.gosdk。
func NewFileStorage(cfg models.Config) *FileStorage {
	root := cfg.RootDir
	if root == "" {
		root = DefaultRoot()
	}
	versionsDir := cfg.VersionsDir
	if versionsDir == "" && root != "" {
		versionsDir = filepath.Join(root, "versions")
	}
	return &FileStorage{
		metadataPath: filepath.Join(root, "metadata.json"),
		versionsDir:  versionsDir,
	}
}

// DefaultRoot 返回默认根目录 ~/.gosdk，无法获取主目录时退回临时目录。
func DefaultRoot() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".gosdk")
	}
	return filepath.Join(os.TempDir(), "gosdk")
}

// SaveMetadata 保存或更新版本元数据。
func (s *FileStorage) SaveMetadata(version models.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.metadataPath), 0o755); err != nil {
		return fmt.Errorf("storage: create root: %w", err)
	}

	versions, err := s.readMetadataLocked()
	if err != nil {
		return err
	}

	updated := false
	for i := range versions {
		if versions[i].Number == version.Number {
			versions[i] = version
			updated = true
			break
		}
	}
	if !updated {
		versions = append(versions, version)
	}

	return s.writeMetadataLocked(versions)
}

// LoadMetadata 读取所有本地元数据，文件不存在时返回空列表。
func (s *FileStorage) LoadMetadata() ([]models.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readMetadataLocked()
}

// DeleteMetadata 移除指定版本的记录。
func (s *FileStorage) DeleteMetadata(version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.readMetadataLocked()
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return nil
	}

	filtered := versions[:0]
	for _, v := range versions {
		if v.Number != version {
			filtered = append(filtered, v)
		}
	}
	return s.writeMetadataLocked(filtered)
}

// GetInstallPath 返回指定版本的安装目录。
func (s *FileStorage) GetInstallPath(version string) string {
	dir := s.versionsDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "gosdk", "versions")
	}
	return filepath.Join(dir, "go"+version)
}

func (s *FileStorage) readMetadataLocked() ([]models.Version, error) {
	file, err := os.Open(s.metadataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Version{}, nil
		}
		return nil, fmt.Errorf("storage: open metadata: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("storage: read metadata: %w", err)
	}
	if len(data) == 0 {
		return []models.Version{}, nil
	}

	var metadata MetadataFile
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("storage: decode metadata: %w", err)
	}
	if metadata.Versions == nil {
		metadata.Versions = []models.Version{}
	}
	return metadata.Versions, nil
}

func (s *FileStorage) writeMetadataLocked(versions []models.Version) error {
	sort.SliceStable(versions, func(i, j int) bool { return versions[i].Number < versions[j].Number })

	data, err := json.MarshalIndent(MetadataFile{Versions: versions}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode metadata: %w", err)
	}

	tmp := s.metadataPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write metadata: %w", err)
	}
	if err := os.Rename(tmp, s.metadataPath); err != nil {
		return fmt.Errorf("storage: finalize metadata: %w", err)
	}
	return nil
}
