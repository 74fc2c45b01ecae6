package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filescope/filescope/internal/langdetect"
)

func TestDetect_KnownExtensions_Mapped(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"main.py":        "python",
		"app.PY":         "python",
		"index.jsx":      "javascript",
		"widget.spec.ts": "typescript",
		"lib.rs":         "rust",
		"Makefile.toml":  "toml",
		"Dockerfile":     "dockerfile",
		"notes.md":       "markdown",
	}

	for path, want := range cases {
		assert.Equal(t, want, langdetect.Detect(path, nil), path)
	}
}

func TestDetect_ShebangWithoutExtension_ContentWins(t *testing.T) {
	t.Parallel()

	content := []byte("#!/usr/bin/env python3\nprint('hi')\n")

	assert.Equal(t, "python", langdetect.Detect("runner", content))
}

func TestDetect_UnknownFile_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, langdetect.Unknown, langdetect.Detect("data.qqq", nil))
}

func TestIsBinary_KnownExtension_NoContentNeeded(t *testing.T) {
	t.Parallel()

	assert.True(t, langdetect.IsBinary("archive.zip", nil))
	assert.True(t, langdetect.IsBinary("photo.PNG", nil))
	assert.False(t, langdetect.IsBinary("main.go", nil))
}

func TestIsBinary_NulByteContent_Detected(t *testing.T) {
	t.Parallel()

	assert.True(t, langdetect.IsBinary("blob", []byte("abc\x00def")))
	assert.False(t, langdetect.IsBinary("text", []byte("plain text\n")))
}

func TestInfo_BinaryFile_LanguageBinary(t *testing.T) {
	t.Parallel()

	info := langdetect.Info("vendor/tool.exe", nil)

	assert.True(t, info.IsBinary)
	assert.Equal(t, langdetect.Binary, info.Language)
	assert.Equal(t, ".exe", info.Extension)
	assert.Equal(t, "tool.exe", info.Filename)
}

func TestInfo_PythonFile_FullRecord(t *testing.T) {
	t.Parallel()

	info := langdetect.Info("src/app.py", []byte("x = 1\n"))

	assert.False(t, info.IsBinary)
	assert.Equal(t, "python", info.Language)
	assert.Equal(t, ".py", info.Extension)
	assert.Equal(t, "app.py", info.Filename)
}
