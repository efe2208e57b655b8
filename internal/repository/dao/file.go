package dao

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

const lockRetryInterval = 10 * time.Millisecond

// FileDAO stores the document as one JSON file guarded by flock(2).
//
// Writes truncate and rewrite the file in place while holding an exclusive
// lock; readers take a shared lock so they never observe a half-written file.
// The file is never replaced by rename, since the lock lives on its inode.
type FileDAO struct {
	path string
}

func NewFileDAO(path string) *FileDAO {
	return &FileDAO{
		path: path,
	}
}

func (d *FileDAO) Path() string {
	return d.path
}

// Ensure creates the parent directory and seeds the file when it does not exist yet.
func (d *FileDAO) Ensure(ctx context.Context, seed []byte) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o775); err != nil {
		return fmt.Errorf("os.MkdirAll -> %w", err)
	}

	f, err := os.OpenFile(d.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o664)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("os.OpenFile -> %w", err)
	}
	defer f.Close()

	if err = lock(ctx, f, unix.LOCK_EX); err != nil {
		return err
	}
	defer unlock(f)

	return rewrite(f, seed)
}

func (d *FileDAO) Read(ctx context.Context) ([]byte, error) {
	f, err := os.Open(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("os.Open -> %w", err)
	}
	defer f.Close()

	if err = lock(ctx, f, unix.LOCK_SH); err != nil {
		return nil, err
	}
	defer unlock(f)

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll -> %w", err)
	}

	return body, nil
}

func (d *FileDAO) Write(ctx context.Context, body []byte) error {
	f, err := os.OpenFile(d.path, os.O_RDWR|os.O_CREATE, 0o664)
	if err != nil {
		return fmt.Errorf("os.OpenFile -> %w", err)
	}
	defer f.Close()

	if err = lock(ctx, f, unix.LOCK_EX); err != nil {
		return err
	}
	defer unlock(f)

	return rewrite(f, body)
}

// Transact holds the exclusive lock while fn computes the next content from the current one.
// When fn fails the file is left untouched.
func (d *FileDAO) Transact(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	f, err := os.OpenFile(d.path, os.O_RDWR|os.O_CREATE, 0o664)
	if err != nil {
		return fmt.Errorf("os.OpenFile -> %w", err)
	}
	defer f.Close()

	if err = lock(ctx, f, unix.LOCK_EX); err != nil {
		return err
	}
	defer unlock(f)

	current, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("io.ReadAll -> %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	return rewrite(f, next)
}

func rewrite(f *os.File, body []byte) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("f.Truncate -> %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("f.Seek -> %w", err)
	}
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("f.Write -> %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("f.Sync -> %w", err)
	}

	return nil
}

// lock polls a non-blocking flock so a cancelled context stops the wait.
func lock(ctx context.Context, f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("unix.Flock -> %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
