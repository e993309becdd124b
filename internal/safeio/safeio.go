// Package safeio validates vault-relative paths against traversal, sensitive
// file patterns, and symlink escapes, and performs atomic writes.
package safeio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sensitivePatterns are glob patterns (matched against the final path
// segment, or the full relative path for patterns containing a slash)
// that are never written to, even inside the vault.
var sensitivePatterns = []string{
	".env*", "*.pem", "*.key", "id_rsa*", "id_ed25519*",
	"*.p12", "*.pfx", "*.jks", "credentials.*", "secrets.*", ".htpasswd",
	"etc/shadow", "etc/passwd", ".git/*",
}

// ValidatePathSecure resolves relpath against vault, rejecting traversal,
// sensitive-pattern targets, and symlink escapes. Returns the absolute
// path to use for I/O; symlinks are resolved only for the escape check,
// not in the returned path.
func ValidatePathSecure(vault, relpath string) (string, error) {
	if strings.ContainsRune(relpath, 0) {
		return "", fmt.Errorf("path rejected: contains null byte")
	}

	normalized := strings.ReplaceAll(relpath, "\\", "/")
	if filepath.IsAbs(normalized) {
		return "", fmt.Errorf("path rejected: absolute path not allowed")
	}

	clean := filepath.ToSlash(filepath.Clean(normalized))
	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return "", fmt.Errorf("path rejected: traversal outside vault")
		}
	}

	if matchesSensitive(clean) {
		return "", fmt.Errorf("path rejected: sensitive file pattern")
	}

	vaultAbs, err := filepath.Abs(vault)
	if err != nil {
		return "", fmt.Errorf("resolve vault path: %w", err)
	}
	full, err := filepath.Abs(filepath.Join(vaultAbs, filepath.FromSlash(clean)))
	if err != nil {
		return "", fmt.Errorf("resolve target path: %w", err)
	}
	if !strings.HasPrefix(full, vaultAbs+string(filepath.Separator)) && full != vaultAbs {
		return "", fmt.Errorf("path rejected: escapes vault boundary")
	}

	resolvedVault, err := filepath.EvalSymlinks(vaultAbs)
	if err != nil {
		return "", fmt.Errorf("resolve vault symlinks: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		// The target may not exist yet (a note being created). Walk up to
		// the nearest existing ancestor and verify it stays in the vault.
		ancestor := full
		for {
			ancestor = filepath.Dir(ancestor)
			if ancestor == "." || ancestor == string(filepath.Separator) {
				return "", fmt.Errorf("path rejected: no existing ancestor within vault")
			}
			resolvedAncestor, aerr := filepath.EvalSymlinks(ancestor)
			if aerr != nil {
				continue
			}
			if !strings.HasPrefix(resolvedAncestor, resolvedVault+string(filepath.Separator)) && resolvedAncestor != resolvedVault {
				return "", fmt.Errorf("path rejected: symlink escape")
			}
			return full, nil
		}
	}
	if !strings.HasPrefix(resolved, resolvedVault+string(filepath.Separator)) && resolved != resolvedVault {
		return "", fmt.Errorf("path rejected: symlink escape")
	}
	return full, nil
}

func matchesSensitive(relpath string) bool {
	base := filepath.Base(relpath)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(pattern, "/") {
			if ok, _ := filepath.Match(pattern, relpath); ok {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// WriteAtomic writes data to path via a temp file in the same directory,
// fsync, then rename — leaving the original file untouched on any failure.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".flywheel-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
