package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/invinciblehaolong/halolab/pkg/logger"
)

var (
	// ErrNoteNotFound 笔记文件不存在
	ErrNoteNotFound = errors.New("note: file not found")
	// ErrNoteOutsideRoot 请求路径越出了配置的笔记目录
	ErrNoteOutsideRoot = errors.New("note: path outside configured directories")
	// ErrNotMarkdown 只允许读取 markdown 文件
	ErrNotMarkdown = errors.New("note: only markdown files are served")
)

// NoteConfig 笔记浏览配置
type NoteConfig struct {
	// Dirs 允许浏览的目录白名单，按序扫描
	Dirs []string `mapstructure:"dirs" json:"dirs" yaml:"dirs"`
}

// NoteFile 目录中的一个 markdown 文件
type NoteFile struct {
	ID        string    `json:"id"` // 每次列举随机生成，不持久化
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteService 本地 markdown 笔记浏览
type NoteService struct {
	dirs   []string
	logger logger.Logger
}

// NewNoteService 创建笔记服务，目录在启动时转成绝对路径
func NewNoteService(cfg *NoteConfig, l logger.Logger) (*NoteService, error) {
	if l == nil {
		l = logger.Default()
	}
	var dirs []string
	if cfg != nil {
		for _, d := range cfg.Dirs {
			abs, err := filepath.Abs(d)
			if err != nil {
				return nil, fmt.Errorf("resolve note dir %q failed: %w", d, err)
			}
			dirs = append(dirs, abs)
		}
	}
	return &NoteService{
		dirs:   dirs,
		logger: l.Named("service.note"),
	}, nil
}

// List 枚举白名单目录下的 markdown 文件，不递归子目录。
// 某个目录不存在时跳过而不是整体失败。
func (s *NoteService) List(ctx context.Context) ([]*NoteFile, error) {
	var out []*NoteFile
	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				s.logger.Warn("note dir missing, skipped", "dir", dir)
				continue
			}
			return nil, fmt.Errorf("read note dir %q failed: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			out = append(out, &NoteFile{
				ID:        uuid.New().String(),
				Filename:  entry.Name(),
				Path:      filepath.Join(dir, entry.Name()),
				Size:      info.Size(),
				UpdatedAt: info.ModTime(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Read 读取指定笔记的内容。路径必须落在白名单目录内且是 .md 文件，
// 先做符号规整再比对，防止 .. 穿越。
func (s *NoteService) Read(ctx context.Context, path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".md") {
		return "", ErrNotMarkdown
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrNoteOutsideRoot
	}
	if !s.contains(abs) {
		s.logger.Warn("rejected note path outside roots", "path", path)
		return "", ErrNoteOutsideRoot
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoteNotFound
		}
		return "", fmt.Errorf("read note %q failed: %w", abs, err)
	}
	return string(content), nil
}

func (s *NoteService) contains(abs string) bool {
	for _, dir := range s.dirs {
		rel, err := filepath.Rel(dir, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
