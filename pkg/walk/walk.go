// Package walk implements the directory iterator consumed by the
// orchestrator (spec §6.1), grounded on the teacher's
// FilesystemEnumerator.Enumerate (pkg/enum/filesystem.go): a
// filepath.WalkDir traversal with hidden-file and gitignore exclusion,
// adapted from a two-phase walk-then-read into a single lazy,
// cancelable, pull-based iterator (spec's "lazy sequence ...
// resumable only by restarting").
package walk

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileType distinguishes the two DirEntry kinds the iterator yields.
type FileType int

const (
	Regular FileType = iota
	Directory
	Other
)

// DirEntry is one entry from the walk (spec §6.1).
type DirEntry struct {
	Path     string
	FileType FileType
	Depth    int
	Size     int64
	Info     fs.FileInfo
}

// Options configures exclusion behavior. IncludeHidden defaults to
// true for search mode per spec §4.7, unlike the teacher's
// default-excluded convention.
type Options struct {
	IncludeHidden  bool
	FollowSymlinks bool
	UseGitignore   bool
}

// DefaultOptions matches spec §4.7 step 1: hidden files included by
// default, no symlink following, gitignore honored when present.
func DefaultOptions() Options {
	return Options{IncludeHidden: true, FollowSymlinks: false, UseGitignore: true}
}

// Iterator is a pull-based, cancelable directory walk. Call Next
// repeatedly until it returns false, then check Err.
type Iterator struct {
	ctx    context.Context
	cancel context.CancelFunc
	entries chan DirEntry
	errCh   chan error
	err     error
	done    bool
}

// Walk starts a background walk of root and returns an Iterator.
// Cancelling ctx (or calling Iterator.Stop) halts the walk promptly;
// entries already queued are still delivered via Next.
func Walk(ctx context.Context, root string, opts Options) *Iterator {
	wctx, cancel := context.WithCancel(ctx)
	it := &Iterator{
		ctx:     wctx,
		cancel:  cancel,
		entries: make(chan DirEntry, 256),
		errCh:   make(chan error, 1),
	}

	go it.run(root, opts)
	return it
}

func (it *Iterator) run(root string, opts Options) {
	defer close(it.entries)

	var ignore *gitignore.GitIgnore
	if opts.UseGitignore {
		gitignorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			ignore, _ = gitignore.CompileIgnoreFile(gitignorePath)
		}
	}

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-it.ctx.Done():
			return it.ctx.Err()
		default:
		}

		depth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth

		if d.IsDir() {
			if path != root && !opts.IncludeHidden && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !opts.IncludeHidden && isHidden(d.Name()) {
			return nil
		}

		if ignore != nil {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && ignore.MatchesPath(rel) {
				return nil
			}
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		ft := Regular
		if !info.Mode().IsRegular() {
			ft = Other
		}

		entry := DirEntry{Path: path, FileType: ft, Depth: depth, Size: info.Size(), Info: info}
		select {
		case it.entries <- entry:
		case <-it.ctx.Done():
			return it.ctx.Err()
		}
		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case it.errCh <- err:
		default:
		}
	}
}

// Next returns the next entry and true, or a zero DirEntry and false
// once the walk is exhausted or an error occurred (check Err).
func (it *Iterator) Next() (DirEntry, bool) {
	if it.done {
		return DirEntry{}, false
	}
	entry, ok := <-it.entries
	if !ok {
		it.done = true
		select {
		case err := <-it.errCh:
			it.err = err
		default:
		}
		return DirEntry{}, false
	}
	return entry, true
}

// Err returns any error the walk encountered, valid after Next
// returns false.
func (it *Iterator) Err() error { return it.err }

// Stop cancels the walk; safe to call multiple times.
func (it *Iterator) Stop() { it.cancel() }

// isHidden reports whether name starts with "." (excluding "." and
// "..", which filepath.WalkDir never yields as entry names anyway).
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
