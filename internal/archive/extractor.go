package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/patcher/internal/fsops"
	"github.com/temirov/patcher/internal/patcherrors"
)

const (
	directoryPermissions    = 0o755
	defaultFilePermissions  = 0o644
	openArchiveErrorFormat  = "open archive: %w"
	statArchiveErrorFormat  = "stat archive: %w"
	readArchiveErrorFormat  = "read zip: %w"
	createEntryErrorFormat  = "create %s: %w"
	copyEntryErrorFormat    = "copy %s: %w"
	unsafeEntryErrorMessage = "entry path escapes target directory"
)

// ErrUnsafeEntry marks an archive entry whose name would land outside the
// extraction target.
var ErrUnsafeEntry = errors.New(unsafeEntryErrorMessage)

// Extractor expands zip archives through an fsops.FS.
type Extractor struct {
	FS     fsops.FS
	Logger *zap.Logger
}

func New(fileSystem fsops.FS, logger *zap.Logger) Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Extractor{FS: fileSystem, Logger: logger}
}

// Extract writes every entry of archivePath under targetDir, keeping the
// archive's relative paths. Partial output is left in place on failure.
func (e Extractor) Extract(ctx context.Context, archivePath, targetDir string) error {
	archiveFile, openErr := e.FS.Open(archivePath)
	if openErr != nil {
		return patcherrors.NewExtractError(archivePath, "", fmt.Errorf(openArchiveErrorFormat, openErr))
	}
	defer func(closer io.Closer) { _ = closer.Close() }(archiveFile)

	info, statErr := archiveFile.Stat()
	if statErr != nil {
		return patcherrors.NewExtractError(archivePath, "", fmt.Errorf(statArchiveErrorFormat, statErr))
	}
	reader, zipErr := zip.NewReader(archiveFile, info.Size())
	if errors.Is(zipErr, zip.ErrInsecurePath) {
		return patcherrors.NewExtractError(archivePath, "", errors.Join(ErrUnsafeEntry, zipErr))
	}
	if zipErr != nil {
		return patcherrors.NewExtractError(archivePath, "", fmt.Errorf(readArchiveErrorFormat, zipErr))
	}

	extracted := 0
	for _, entry := range reader.File {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return patcherrors.NewExtractError(archivePath, entry.Name, ctxErr)
		}
		if err := e.extractEntry(entry, targetDir); err != nil {
			return patcherrors.NewExtractError(archivePath, entry.Name, err)
		}
		extracted++
	}
	e.logger().Info("archive extracted",
		zap.String("archive", archivePath),
		zap.String("target", targetDir),
		zap.Int("entries", extracted),
	)
	return nil
}

func (e Extractor) extractEntry(entry *zip.File, targetDir string) error {
	relativePath := filepath.FromSlash(entry.Name)
	if !filepath.IsLocal(relativePath) {
		return ErrUnsafeEntry
	}
	entryPath := filepath.Join(targetDir, relativePath)

	if entry.FileInfo().IsDir() {
		return e.FS.MkdirAll(entryPath, directoryPermissions)
	}
	if err := e.FS.MkdirAll(filepath.Dir(entryPath), directoryPermissions); err != nil {
		return err
	}

	source, openErr := entry.Open()
	if openErr != nil {
		return openErr
	}
	defer func(closer io.Closer) { _ = closer.Close() }(source)

	permissions := entry.Mode().Perm()
	if permissions == 0 {
		permissions = defaultFilePermissions
	}
	destination, createErr := e.FS.OpenFile(entryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, permissions)
	if createErr != nil {
		return fmt.Errorf(createEntryErrorFormat, entryPath, createErr)
	}
	if _, copyErr := io.Copy(destination, source); copyErr != nil {
		_ = destination.Close()
		return fmt.Errorf(copyEntryErrorFormat, entryPath, copyErr)
	}
	return destination.Close()
}

func (e Extractor) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
