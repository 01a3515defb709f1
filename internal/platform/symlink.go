package platform

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CreateSymlink creates a symbolic link at link pointing to the file target.
// On Windows, when native symlinks are unavailable, the target is copied and
// its path recorded in a .target sidecar.
func CreateSymlink(target, link string) error {
	if runtime.GOOS != "windows" {
		return os.Symlink(target, link)
	}

	if err := os.Symlink(target, link); err == nil {
		return nil
	}

	if err := copyFileForSymlink(target, link); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}

	// The copy succeeded; a missing sidecar only degrades ReadSymlinkTarget.
	_ = os.WriteFile(link+".target", []byte(target), 0644)
	return nil
}

// LinkDir publishes the directory target at link. On Unix the link is a
// symlink whose target is relative to the link's parent directory. On
// Windows an absolute directory junction is created instead, since relative
// symlinks are unreliable there.
func LinkDir(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(link), err)
	}

	if runtime.GOOS != "windows" {
		rel, err := relativeTarget(target, link)
		if err != nil {
			return err
		}
		return os.Symlink(rel, link)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	absLink, err := filepath.Abs(link)
	if err != nil {
		return err
	}
	cmd := exec.Command("cmd", "/c", "mklink", "/j", absLink, absTarget)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mklink /j failed: %w\n%s", err, string(output))
	}
	return nil
}

// RemoveSymlink removes a link (or its fallback copy and sidecar). The link
// target is never touched.
func RemoveSymlink(path string) error {
	err := os.Remove(path)
	os.Remove(path + ".target") // best-effort
	return err
}

// ReadSymlinkTarget returns the target of a symlink. On Windows, when a copy
// fallback was used, it reads the .target sidecar instead.
func ReadSymlinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		return target, nil
	}

	if runtime.GOOS != "windows" {
		return "", err
	}

	data, readErr := os.ReadFile(path + ".target")
	if readErr != nil {
		return "", fmt.Errorf("readlink failed and no .target sidecar found: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ResolvedPath returns the physical location of path when it differs from
// path itself (the directory, or one of its parents, is a link). It returns
// "" when path is not reached through a link or cannot be resolved.
func ResolvedPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil || resolved == abs {
		return ""
	}
	return resolved
}

// relativeTarget expresses target relative to the directory containing link.
func relativeTarget(target, link string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absLinkDir, err := filepath.Abs(filepath.Dir(link))
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absLinkDir, absTarget)
	if err != nil {
		return "", fmt.Errorf("computing relative link target: %w", err)
	}
	return rel, nil
}

// copyFileForSymlink copies src to dst. Relative sources are resolved
// against the directory containing dst, as a symlink target would be.
func copyFileForSymlink(src, dst string) error {
	resolvedSrc := src
	if !filepath.IsAbs(src) {
		resolvedSrc = filepath.Join(filepath.Dir(dst), src)
	}

	in, err := os.Open(resolvedSrc)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
