package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	homeDirectoryPrefix        = "~"
	blankInstallDirMessage     = "install directory is blank"
	resolveHomeErrorFormat     = "resolve home directory: %w"
	resolveAbsoluteErrorFormat = "resolve absolute path: %w"
)

// Layout names every path the pipeline touches. Names are relative to
// InstallDir except ReadmeDirectory, which is a directory of its own.
type Layout struct {
	InstallDir      string
	ArchiveName     string
	PatchDirectory  string
	ReadmeName      string
	ReadmeDirectory string
}

// ArchivePath is where the downloaded archive is written.
func (l Layout) ArchivePath() string { return filepath.Join(l.InstallDir, l.ArchiveName) }

// PatchPath is the extracted patch tree merged into InstallDir.
func (l Layout) PatchPath() string { return filepath.Join(l.InstallDir, l.PatchDirectory) }

// ReadmePath is where the readme lands after extraction.
func (l Layout) ReadmePath() string { return filepath.Join(l.InstallDir, l.ReadmeName) }

func (l Layout) ReadmeTargetPath() string { return filepath.Join(l.ReadmeDirectory, l.ReadmeName) }

// Resolve returns a copy with InstallDir and ReadmeDirectory made absolute and
// a leading ~ expanded to the home directory.
func (l Layout) Resolve() (Layout, error) {
	if strings.TrimSpace(l.InstallDir) == "" {
		return Layout{}, errors.New(blankInstallDirMessage)
	}
	installDir, err := normalizePath(l.InstallDir)
	if err != nil {
		return Layout{}, fmt.Errorf("install directory: %w", err)
	}
	readmeDirectory := installDir
	if strings.TrimSpace(l.ReadmeDirectory) != "" {
		readmeDirectory, err = normalizePath(l.ReadmeDirectory)
		if err != nil {
			return Layout{}, fmt.Errorf("readme directory: %w", err)
		}
	}
	resolved := l
	resolved.InstallDir = installDir
	resolved.ReadmeDirectory = readmeDirectory
	return resolved, nil
}

func normalizePath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if strings.HasPrefix(trimmed, homeDirectoryPrefix) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf(resolveHomeErrorFormat, err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, homeDirectoryPrefix))
	}
	if !filepath.IsAbs(trimmed) {
		abs, err := filepath.Abs(trimmed)
		if err != nil {
			return "", fmt.Errorf(resolveAbsoluteErrorFormat, err)
		}
		trimmed = abs
	}
	return filepath.Clean(trimmed), nil
}
