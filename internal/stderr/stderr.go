//go:build !windows

// Package stderr captures output written directly to file descriptor 2 while
// the progress view owns the terminal, and forwards it to the log instead.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/hashicorp/go-hclog"
)

var mu sync.Mutex

// Capture redirects fd 2 into logger until the returned restore func is
// called. restore blocks until every captured line has been logged. If
// capture cannot be set up, the error is returned and stderr is untouched.
func Capture(logger hclog.Logger) (restore func(), err error) {
	mu.Lock()

	r, w, err := os.Pipe()
	if err != nil {
		mu.Unlock()
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		mu.Unlock()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		mu.Unlock()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				logger.Warn("stderr", "line", line)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = syscall.Dup2(orig, int(os.Stderr.Fd()))
			_ = syscall.Close(orig)
			w.Close()
			<-done
			r.Close()
			mu.Unlock()
		})
	}, nil
}
