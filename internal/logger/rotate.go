package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rotatingFile is the zap sink for the log file. It rotates by size and age
// into numbered backups (todo.log.1, todo.log.2, ...).
type rotatingFile struct {
	config Config
	mu     sync.Mutex
	file   *os.File
	size   int64
	opened time.Time
}

func openRotatingFile(config Config) (*rotatingFile, error) {
	// Create log directory if it doesn't exist
	logDir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &rotatingFile{config: config}
	if err := r.open(); err != nil {
		return nil, err
	}

	// Check if rotation is needed
	if r.needsRotation() {
		if err := r.rotate(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	r.file = file
	r.size = info.Size()
	r.opened = info.ModTime()
	if r.size == 0 {
		r.opened = time.Now()
	}
	return nil
}

func (r *rotatingFile) needsRotation() bool {
	if r.config.MaxSize > 0 && r.size >= r.config.MaxSize {
		return true
	}
	if r.config.MaxAge > 0 && r.size > 0 &&
		time.Since(r.opened) > time.Duration(r.config.MaxAge)*24*time.Hour {
		return true
	}
	return false
}

// rotate performs log rotation. Caller holds mu or has exclusive access.
func (r *rotatingFile) rotate() error {
	if r.file != nil {
		r.file.Close()
	}

	// Rotate existing backups
	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.config.FilePath, i)
		newPath := fmt.Sprintf("%s.%d", r.config.FilePath, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	// Move current log to .1
	if _, err := os.Stat(r.config.FilePath); err == nil {
		backupPath := fmt.Sprintf("%s.1", r.config.FilePath)
		if err := os.Rename(r.config.FilePath, backupPath); err != nil {
			return err
		}
	}

	return r.open()
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return 0, os.ErrClosed
	}

	// Check rotation before writing
	if r.needsRotation() {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *rotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
