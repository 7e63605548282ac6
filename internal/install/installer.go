// Package install binds the fetch, extract, merge and cleanup components to
// one installation directory and exposes them as pipeline stages.
package install

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/patcher/internal/fetch"
	"github.com/temirov/patcher/internal/fsops"
	"github.com/temirov/patcher/internal/merge"
	"github.com/temirov/patcher/internal/patcherrors"
)

const (
	directoryPermissions       = 0o755
	removeArchiveErrorFormat   = "remove archive: %w"
	removePatchTreeErrorFormat = "remove patch tree: %w"
	createReadmeDirErrorFormat = "create readme directory: %w"
	moveReadmeErrorFormat      = "move readme: %w"
	removeReadmeErrorFormat    = "remove installation readme: %w"
)

// ArchiveFetcher downloads the remote archive.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, ref fetch.Reference, destinationPath string) error
}

// ArchiveExtractor expands a local archive into a directory.
type ArchiveExtractor interface {
	Extract(ctx context.Context, archivePath, targetDir string) error
}

// TreeMerger moves a directory tree onto another.
type TreeMerger interface {
	Merge(ctx context.Context, sourceDir, destinationDir string) (merge.Result, error)
}

// Installer performs each pipeline step against Layout.
type Installer struct {
	Layout    Layout
	Reference fetch.Reference
	Product   Product

	FS        fsops.FS
	Fetcher   ArchiveFetcher
	Extractor ArchiveExtractor
	Merger    TreeMerger
	Logger    *zap.Logger
}

// Product holds the names used in operator-facing stage text.
type Product struct {
	Name       string
	Maintainer string
}

// Fetch downloads the archive to Layout.ArchivePath.
func (i Installer) Fetch(ctx context.Context) error {
	return i.Fetcher.Fetch(ctx, i.Reference, i.Layout.ArchivePath())
}

// ExtractAndMerge expands the archive into the installation directory, then
// merges the extracted patch tree over it.
func (i Installer) ExtractAndMerge(ctx context.Context) error {
	if err := i.Extractor.Extract(ctx, i.Layout.ArchivePath(), i.Layout.InstallDir); err != nil {
		return err
	}
	result, err := i.Merger.Merge(ctx, i.Layout.PatchPath(), i.Layout.InstallDir)
	if err != nil {
		return err
	}
	i.logger().Info("patch merged",
		zap.Int("placed", result.Count(merge.ActionPlace)),
		zap.Int("overwritten", result.Count(merge.ActionOverwrite)),
		zap.Int("skipped", result.Count(merge.ActionSkip)),
	)
	return nil
}

// Cleanup removes the archive and the extracted patch tree. Both removals are
// attempted; artifacts that are already gone are not an error.
func (i Installer) Cleanup(context.Context) error {
	ops := fsops.NewOps(i.FS)
	archivePath := i.Layout.ArchivePath()
	patchPath := i.Layout.PatchPath()

	var failures []error
	if err := ops.RemoveFile(archivePath); err != nil {
		failures = append(failures, fmt.Errorf(removeArchiveErrorFormat, err))
	}
	if err := i.FS.RemoveAll(patchPath); err != nil {
		failures = append(failures, fmt.Errorf(removePatchTreeErrorFormat, err))
	}
	if len(failures) > 0 {
		return patcherrors.NewCleanupError([]string{archivePath, patchPath}, errors.Join(failures...))
	}
	i.logger().Debug("temporary artifacts removed", zap.String("archive", archivePath), zap.String("patch", patchPath))
	return nil
}

// RelocateReadme moves the readme out of the installation directory,
// replacing an older copy at the target.
func (i Installer) RelocateReadme(context.Context) error {
	ops := fsops.NewOps(i.FS)
	source := i.Layout.ReadmePath()
	target := i.Layout.ReadmeTargetPath()
	if source == target {
		return nil
	}

	if err := i.FS.MkdirAll(i.Layout.ReadmeDirectory, directoryPermissions); err != nil {
		return patcherrors.NewRelocateError(source, target, fmt.Errorf(createReadmeDirErrorFormat, err))
	}
	if err := ops.MoveFile(source, target); err != nil {
		return patcherrors.NewRelocateError(source, target, fmt.Errorf(moveReadmeErrorFormat, err))
	}
	if err := ops.RemoveFile(source); err != nil {
		return patcherrors.NewRelocateError(source, target, fmt.Errorf(removeReadmeErrorFormat, err))
	}
	i.logger().Debug("readme relocated", zap.String("target", target))
	return nil
}

func (i Installer) logger() *zap.Logger {
	if i.Logger == nil {
		return zap.NewNop()
	}
	return i.Logger
}
