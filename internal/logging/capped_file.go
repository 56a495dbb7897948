package logging

import (
	"os"
	"sync"
)

// cappedFile appends to a file and starts it over once the next write would
// push it past maxBytes.
type cappedFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	size     int64
	resets   int
}

func newCappedFile(path string, maxMB int) (*cappedFile, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	cf := &cappedFile{path: path, maxBytes: int64(maxMB) << 20}
	if err := cf.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return cf, nil
}

func (c *cappedFile) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		if err := c.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	if c.size+int64(len(p)) > c.maxBytes {
		_ = c.file.Close()
		if err := c.open(os.O_TRUNC); err != nil {
			return 0, err
		}
		c.resets++
	}
	n, err := c.file.Write(p)
	c.size += int64(n)
	return n, err
}

func (c *cappedFile) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

func (c *cappedFile) open(mode int) error {
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		c.file = nil
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		c.file = nil
		return err
	}
	c.file = f
	c.size = info.Size()
	return nil
}
