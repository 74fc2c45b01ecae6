// Package fsio provides validated filesystem access for analysis: path
// checks, size limits, and decoding of text content.
package fsio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Sentinel errors for path validation.
var (
	// ErrEmptyPath indicates an empty path argument.
	ErrEmptyPath = errors.New("path cannot be empty")
	// ErrPathNotFound indicates the path does not exist.
	ErrPathNotFound = errors.New("path does not exist")
	// ErrFileTooLarge indicates the file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrRestrictedPath indicates the path falls under a restricted prefix.
	ErrRestrictedPath = errors.New("path is restricted")
	// ErrSymlinkDenied indicates symlinks are not allowed by configuration.
	ErrSymlinkDenied = errors.New("symlinks are not allowed")
)

// Encoding labels reported by DetectEncoding.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// encodingSampleSize bounds the content sample used for encoding detection.
const encodingSampleSize = 10000

// Manager performs validated filesystem operations.
type Manager struct {
	maxFileSize     int64
	allowSymlinks   bool
	restrictedPaths []string
	logger          *slog.Logger
}

// Options configures a Manager.
type Options struct {
	// MaxFileSize is the largest file, in bytes, that Read will accept.
	MaxFileSize int64
	// AllowSymlinks permits operating on symlinked files.
	AllowSymlinks bool
	// RestrictedPaths are absolute path prefixes that must not be touched.
	RestrictedPaths []string
}

// NewManager creates a Manager.
func NewManager(opts Options, logger *slog.Logger) *Manager {
	restricted := make([]string, 0, len(opts.RestrictedPaths))
	for _, p := range opts.RestrictedPaths {
		if abs, err := filepath.Abs(p); err == nil {
			restricted = append(restricted, abs)
		}
	}

	return &Manager{
		maxFileSize:     opts.MaxFileSize,
		allowSymlinks:   opts.AllowSymlinks,
		restrictedPaths: restricted,
		logger:          logger,
	}
}

// ValidatePath normalizes a path and checks it against the access rules.
// It returns the absolute path.
func (m *Manager) ValidatePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	for _, prefix := range m.restrictedPaths {
		if abs == prefix || strings.HasPrefix(abs, prefix+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %s", ErrRestrictedPath, abs)
		}
	}

	info, err := os.Lstat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, abs)
		}

		return "", fmt.Errorf("stat path: %w", err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !m.allowSymlinks {
			return "", fmt.Errorf("%w: %s", ErrSymlinkDenied, abs)
		}

		info, err = os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("stat symlink target: %w", err)
		}
	}

	if !info.IsDir() && m.maxFileSize > 0 && info.Size() > m.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), m.maxFileSize)
	}

	return abs, nil
}

// Readable reports whether the path can actually be read. Directories are
// probed by listing, files by opening.
func (m *Manager) Readable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if info.IsDir() {
		_, err = os.ReadDir(path)
		if err != nil {
			m.logger.Debug("directory not listable", "path", path, "error", err)
		}

		return err == nil
	}

	f, err := os.Open(path)
	if err != nil {
		m.logger.Debug("file not readable", "path", path, "error", err)

		return false
	}

	_ = f.Close()

	return true
}

// Read returns decoded file content along with the encoding used. Bytes
// that are not valid UTF-8 are reinterpreted as Latin-1.
func (m *Manager) Read(path string) (string, string, error) {
	abs, err := m.ValidatePath(path)
	if err != nil {
		return "", "", err
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("read file: %w", err)
	}

	return DecodeText(raw)
}

// ReadHead returns up to n leading bytes of the file.
func (m *Manager) ReadHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, n)

	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read file head: %w", err)
	}

	return buf[:read], nil
}

// DetectEncoding samples content and labels it utf-8 or latin-1.
func DetectEncoding(raw []byte) string {
	sample := raw
	if len(sample) > encodingSampleSize {
		sample = sample[:encodingSampleSize]
	}

	if utf8.Valid(sample) {
		return EncodingUTF8
	}

	return EncodingLatin1
}

// DecodeText converts raw bytes to a string, reporting the encoding used.
func DecodeText(raw []byte) (string, string, error) {
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8, nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("decode latin-1: %w", err)
	}

	return string(decoded), EncodingLatin1, nil
}

// FileInfo is basic file metadata.
type FileInfo struct {
	Size     int64
	Modified time.Time
	Mode     os.FileMode
	IsFile   bool
	IsDir    bool
	Exists   bool
}

// Stat returns file metadata; a missing path yields a zero record rather
// than an error, matching how callers aggregate over many files.
func (m *Manager) Stat(path string) FileInfo {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}
	}

	return FileInfo{
		Size:     info.Size(),
		Modified: info.ModTime(),
		Mode:     info.Mode(),
		IsFile:   info.Mode().IsRegular(),
		IsDir:    info.IsDir(),
		Exists:   true,
	}
}
