package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	UploadRootName = "uploads"
	TempRootName   = "temp"
	ClipRootName   = "gifs"
	dbFileName     = "clipforge.db"
)

func UploadRootFor(paths Paths) string {
	return filepath.Join(normalizeWorkDir(paths.WorkDir), UploadRootName)
}

func TempRootFor(paths Paths) string {
	return filepath.Join(normalizeWorkDir(paths.WorkDir), TempRootName)
}

func ClipRootFor(paths Paths) string {
	return filepath.Join(normalizeWorkDir(paths.WorkDir), ClipRootName)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func ResolveUploadRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return UploadRootFor(paths), nil
}

func ResolveTempRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return TempRootFor(paths), nil
}

func ResolveClipRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return ClipRootFor(paths), nil
}

func ResolveDBPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return DBPathFor(paths), nil
}

func normalizeWorkDir(workDir string) string {
	cleaned := strings.TrimSpace(workDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
