package terminal

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// ReadLines scans r line by line onto the returned channel. The channel is
// closed at EOF or when ctx is cancelled.
func ReadLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimRight(scanner.Text(), "\r"):
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
