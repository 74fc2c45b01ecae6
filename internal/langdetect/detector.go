// Package langdetect resolves file paths and contents to the language
// labels the analyzers understand.
package langdetect

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/filescope/filescope/pkg/textutil"
)

// Unknown is the label for files no detection strategy can place.
const Unknown = "unknown"

// Binary is the label for files recognized as binary data.
const Binary = "binary"

// extensionMap resolves extensions and special file names ahead of content
// detection. Keys are lowercase.
var extensionMap = map[string]string{
	".py":  "python",
	".pyw": "python",
	".pyi": "python",

	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",

	".java": "java",

	".c":   "c",
	".h":   "c",
	".cpp": "c++",
	".cxx": "c++",
	".cc":  "c++",
	".hpp": "c++",
	".hxx": "c++",

	".go": "go",
	".rs": "rust",

	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "scss",
	".sass": "sass",
	".less": "less",

	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".xml":  "xml",
	".toml": "toml",

	".sh":   "shell",
	".bash": "shell",
	".zsh":  "shell",
	".fish": "shell",

	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".clj":   "clojure",
	".hs":    "haskell",
	".ml":    "ocaml",
	".fs":    "fsharp",
	".cs":    "csharp",
	".vb":    "vbnet",
	".pl":    "perl",
	".r":     "r",
	".m":     "matlab",
	".sql":   "sql",

	".md":  "markdown",
	".rst": "restructuredtext",
	".tex": "latex",

	".ini":        "ini",
	".cfg":        "ini",
	".conf":       "config",
	".properties": "properties",

	"dockerfile":  "dockerfile",
	".dockerfile": "dockerfile",
}

// binaryExtensions short-circuits binary detection without reading content.
var binaryExtensions = map[string]struct{}{
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".a": {}, ".lib": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".ico": {}, ".tiff": {},
	".mp3": {}, ".wav": {}, ".ogg": {}, ".flac": {}, ".aac": {},
	".mp4": {}, ".avi": {}, ".mkv": {}, ".mov": {}, ".wmv": {}, ".flv": {},
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {}, ".7z": {}, ".rar": {},
	".bin": {}, ".dat": {}, ".db": {}, ".sqlite": {}, ".sqlite3": {},
	".class": {}, ".jar": {}, ".war": {}, ".ear": {},
	".pyc": {}, ".pyo": {}, ".pyd": {},
	".o": {}, ".obj": {}, ".out": {},
}

// enryAliases maps enry's language names to the labels the analyzers use,
// where lowercasing alone does not line up.
var enryAliases = map[string]string{
	"c#":                "csharp",
	"f#":                "fsharp",
	"vb.net":            "vbnet",
	"visual basic .net": "vbnet",
	"objective-c":       "objectivec",
}

// FileInfo is the resolved type information for a file.
type FileInfo struct {
	Language  string
	Extension string
	Filename  string
	IsBinary  bool
}

// Detect resolves a file to a language label. The extension map wins; enry
// covers shebangs, ambiguous extensions, and everything else.
func Detect(path string, content []byte) string {
	base := filepath.Base(path)

	if lang, ok := extensionMap[strings.ToLower(base)]; ok {
		return lang
	}

	ext := strings.ToLower(filepath.Ext(base))
	if lang, ok := extensionMap[ext]; ok {
		return lang
	}

	// Compound extensions like .spec.ts resolve on the final suffix pair.
	if trimmed := strings.TrimSuffix(base, ext); strings.Contains(trimmed, ".") {
		combined := strings.ToLower(filepath.Ext(trimmed) + ext)
		if lang, ok := extensionMap[combined]; ok {
			return lang
		}
	}

	if lang := enry.GetLanguage(base, content); lang != enry.OtherLanguage {
		return normalize(lang)
	}

	return Unknown
}

// IsBinary reports whether a file should be treated as binary data. The
// sample is the leading content chunk; nil means extension-only checking.
func IsBinary(path string, sample []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := binaryExtensions[ext]; ok {
		return true
	}

	if len(sample) == 0 {
		return false
	}

	return textutil.IsBinary(sample) || enry.IsBinary(sample)
}

// Info resolves full type information for a file.
func Info(path string, content []byte) FileInfo {
	binary := IsBinary(path, content)

	language := Binary
	if !binary {
		language = Detect(path, content)
	}

	return FileInfo{
		Language:  language,
		Extension: strings.ToLower(filepath.Ext(path)),
		Filename:  filepath.Base(path),
		IsBinary:  binary,
	}
}

func normalize(enryName string) string {
	lower := strings.ToLower(enryName)
	if alias, ok := enryAliases[lower]; ok {
		return alias
	}

	return lower
}
