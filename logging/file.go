package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileOptions configures a rotating log file.
type FileOptions struct {
	Dir      string
	Name     string
	MaxBytes int64
	// MaxBackups is how many compressed rotations to keep.
	MaxBackups int
}

const (
	defaultMaxBytes   = 10 << 20
	defaultMaxBackups = 5
)

// FileWriter appends log lines to Dir/Name and rotates by size and by day.
// Rotated files are gzipped and pruned to MaxBackups.
type FileWriter struct {
	mu       sync.Mutex
	opts     FileOptions
	file     *os.File
	size     int64
	openedAt time.Time
	now      func() time.Time
	wg       sync.WaitGroup
}

// OpenFile creates the log directory and opens the current log file.
func OpenFile(opts FileOptions) (*FileWriter, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("log file name is required")
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = defaultMaxBackups
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	fw := &FileWriter{opts: opts, now: time.Now}
	if err := fw.open(); err != nil {
		return nil, err
	}
	return fw, nil
}

// Path is the location of the live log file.
func (fw *FileWriter) Path() string {
	return filepath.Join(fw.opts.Dir, fw.opts.Name)
}

func (fw *FileWriter) open() error {
	f, err := os.OpenFile(fw.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	fw.file = f
	fw.size = info.Size()
	fw.openedAt = fw.now()
	return nil
}

func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.file == nil {
		return 0, os.ErrClosed
	}
	if fw.size > 0 && (fw.size+int64(len(p)) > fw.opts.MaxBytes || fw.now().Sub(fw.openedAt) > 24*time.Hour) {
		if err := fw.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := fw.file.Write(p)
	fw.size += int64(n)
	return n, err
}

func (fw *FileWriter) rotate() error {
	if err := fw.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	rotated := fmt.Sprintf("%s.%s", fw.Path(), fw.now().Format("20060102-150405.000"))
	if err := os.Rename(fw.Path(), rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}

	fw.wg.Add(1)
	go func() {
		defer fw.wg.Done()
		compress(rotated)
		fw.prune()
	}()

	return fw.open()
}

func compress(path string) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return
	}
	gz := gzip.NewWriter(out)
	_, copyErr := io.Copy(gz, in)
	closeErr := gz.Close()
	out.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path + ".gz")
		return
	}
	os.Remove(path)
}

func (fw *FileWriter) prune() {
	matches, err := filepath.Glob(fw.Path() + ".*.gz")
	if err != nil || len(matches) <= fw.opts.MaxBackups {
		return
	}
	// Rotation stamps sort chronologically.
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-fw.opts.MaxBackups] {
		os.Remove(path)
	}
}

// Close waits for pending compression and closes the live file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	f := fw.file
	fw.file = nil
	fw.mu.Unlock()

	fw.wg.Wait()
	if f == nil {
		return nil
	}
	return f.Close()
}
