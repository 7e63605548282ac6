package merge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/patcher/internal/fsops"
	"github.com/temirov/patcher/internal/patcherrors"
)

const (
	directoryPermissions           = 0o755
	structuralMismatchFileOverDir  = "source is a file but destination is a directory"
	structuralMismatchDirOverFile  = "source is a directory but destination is a file"
	destinationStatErrorFormat     = "stat destination: %w"
	destinationCreateErrorFormat   = "create destination directory: %w"
	sameFileCheckErrorFormat       = "compare files: %w"
	moveFileErrorFormat            = "move file: %w"
	relativePathErrorFormat        = "resolve relative path: %w"
	sourceRootNotDirectoryErrorMsg = "source is not a directory"
)

// ErrStructuralMismatch marks a same-named entry that is a file on one side
// and a directory on the other.
var ErrStructuralMismatch = errors.New("structural mismatch")

// Action is what the merge did with a single source file.
type Action int

const (
	// ActionPlace moved the file into a destination that had no such file.
	ActionPlace Action = iota
	// ActionOverwrite replaced an existing, different destination file.
	ActionOverwrite
	// ActionSkip left the file alone because source and destination are the same file.
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionPlace:
		return "place"
	case ActionOverwrite:
		return "overwrite"
	case ActionSkip:
		return "skip"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Entry is one line of the merge plan.
type Entry struct {
	Source      string
	Destination string
	Action      Action
}

// Result summarizes a merge run.
type Result struct {
	CreatedDirectories []string
	Entries            []Entry
}

// Count returns how many entries took the given action.
func (r Result) Count(action Action) int {
	count := 0
	for _, entry := range r.Entries {
		if entry.Action == action {
			count++
		}
	}
	return count
}

// Merger moves a source tree into a destination tree, overwriting files that
// already exist there.
type Merger struct {
	FS     fsops.FS
	Logger *zap.Logger
}

func New(fileSystem fsops.FS, logger *zap.Logger) Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Merger{FS: fileSystem, Logger: logger}
}

// Merge walks sourceDir depth-first. Directories are mirrored under
// destinationDir; files are moved onto their mirrored path unless the
// destination already is the same file. The first failure stops the walk and
// nothing already moved is restored.
func (m Merger) Merge(ctx context.Context, sourceDir, destinationDir string) (Result, error) {
	ops := fsops.NewOps(m.FS)
	logger := m.logger()
	sourceRoot := filepath.Clean(sourceDir)
	destinationRoot := filepath.Clean(destinationDir)

	var result Result

	rootInfo, rootErr := m.FS.Stat(sourceRoot)
	if rootErr != nil {
		return result, patcherrors.NewMergeError(sourceRoot, destinationRoot, rootErr)
	}
	if !rootInfo.IsDir() {
		return result, patcherrors.NewMergeError(sourceRoot, destinationRoot, errors.New(sourceRootNotDirectoryErrorMsg))
	}

	walkErr := m.FS.WalkDir(sourceRoot, func(sourcePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return patcherrors.NewMergeError(sourcePath, destinationRoot, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return patcherrors.NewMergeError(sourcePath, destinationRoot, ctxErr)
		}

		relativePath, relErr := filepath.Rel(sourceRoot, sourcePath)
		if relErr != nil {
			return patcherrors.NewMergeError(sourcePath, destinationRoot, fmt.Errorf(relativePathErrorFormat, relErr))
		}
		destinationPath := filepath.Join(destinationRoot, relativePath)

		if entry.IsDir() {
			created, dirErr := m.mirrorDirectory(destinationPath)
			if dirErr != nil {
				return patcherrors.NewMergeError(sourcePath, destinationPath, dirErr)
			}
			if created {
				logger.Debug("created directory", zap.String("path", destinationPath))
				result.CreatedDirectories = append(result.CreatedDirectories, destinationPath)
			}
			return nil
		}

		action, planErr := m.planFile(sourcePath, destinationPath)
		if planErr != nil {
			return patcherrors.NewMergeError(sourcePath, destinationPath, planErr)
		}
		if action != ActionSkip {
			if moveErr := ops.MoveFile(sourcePath, destinationPath); moveErr != nil {
				return patcherrors.NewMergeError(sourcePath, destinationPath, fmt.Errorf(moveFileErrorFormat, moveErr))
			}
		}
		logger.Debug("merged file",
			zap.String("source", sourcePath),
			zap.String("destination", destinationPath),
			zap.Stringer("action", action),
		)
		result.Entries = append(result.Entries, Entry{Source: sourcePath, Destination: destinationPath, Action: action})
		return nil
	})
	if walkErr != nil {
		return result, walkErr
	}

	logger.Info("merge complete",
		zap.String("source", sourceRoot),
		zap.String("destination", destinationRoot),
		zap.Int("placed", result.Count(ActionPlace)),
		zap.Int("overwritten", result.Count(ActionOverwrite)),
		zap.Int("skipped", result.Count(ActionSkip)),
		zap.Int("directories_created", len(result.CreatedDirectories)),
	)
	return result, nil
}

func (m Merger) mirrorDirectory(destinationPath string) (bool, error) {
	info, statErr := m.FS.Stat(destinationPath)
	if statErr == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%w: %s", ErrStructuralMismatch, structuralMismatchDirOverFile)
		}
		return false, nil
	}
	if !errors.Is(statErr, fs.ErrNotExist) {
		return false, fmt.Errorf(destinationStatErrorFormat, statErr)
	}
	if err := m.FS.MkdirAll(destinationPath, directoryPermissions); err != nil {
		return false, fmt.Errorf(destinationCreateErrorFormat, err)
	}
	return true, nil
}

func (m Merger) planFile(sourcePath, destinationPath string) (Action, error) {
	info, statErr := m.FS.Stat(destinationPath)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return ActionPlace, nil
		}
		return ActionPlace, fmt.Errorf(destinationStatErrorFormat, statErr)
	}
	if info.IsDir() {
		return ActionPlace, fmt.Errorf("%w: %s", ErrStructuralMismatch, structuralMismatchFileOverDir)
	}
	same, sameErr := m.FS.SameFile(sourcePath, destinationPath)
	if sameErr != nil {
		return ActionPlace, fmt.Errorf(sameFileCheckErrorFormat, sameErr)
	}
	if same {
		return ActionSkip, nil
	}
	return ActionOverwrite, nil
}

func (m Merger) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}
