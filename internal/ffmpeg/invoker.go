// Package ffmpeg wraps the ffmpeg/ffprobe binaries: probing uploads,
// building filter graphs and rendering palette-optimized GIFs while
// streaming progress back to callers.
package ffmpeg

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"clipforge/log"
)

const maxStderrLines = 30

// Invoker runs engine subprocesses. A weighted semaphore caps how many
// renders run at once across the whole process.
type Invoker struct {
	ffmpegPath  string
	ffprobePath string
	slots       *semaphore.Weighted
}

func NewInvoker(ffmpegPath, ffprobePath string, maxConcurrent int64) *Invoker {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Invoker{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		slots:       semaphore.NewWeighted(maxConcurrent),
	}
}

// Run executes ffmpeg with the given args, invoking onLine for every
// output line as it arrives. It returns the tail of the output for error
// reporting. The context both cancels the subprocess and bounds the wait
// for a render slot.
func (i *Invoker) Run(ctx context.Context, args []string, onLine func(string)) ([]string, error) {
	if err := i.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer i.slots.Release(1)

	return runCommand(ctx, i.ffmpegPath, args, onLine)
}

// RunProbe executes ffprobe and returns its stdout. Probes are cheap and
// do not consume a render slot.
func (i *Invoker) RunProbe(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, i.ffprobePath, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		log.GetLogger().Error("ffprobe failed",
			zap.Strings("args", args),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err))
		return nil, err
	}
	return out, nil
}

func runCommand(ctx context.Context, bin string, args []string, onLine func(string)) ([]string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	// ffmpeg writes progress to stderr; merge both streams into one pipe.
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var tail []string

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanLinesWithCR)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if onLine != nil {
			onLine(line)
		}
		// frame= lines are per-frame progress noise, not worth keeping.
		if !strings.Contains(line, "frame=") {
			mu.Lock()
			tail = append(tail, line)
			if len(tail) > maxStderrLines {
				tail = tail[1:]
			}
			mu.Unlock()
		}
	}

	waitErr := cmd.Wait()

	mu.Lock()
	defer mu.Unlock()
	return tail, waitErr
}

// scanLinesWithCR handles both \r and \n as line delimiters. ffmpeg
// rewrites its status line with bare carriage returns.
func scanLinesWithCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	for i := 0; i < len(data); i++ {
		if data[i] == '\r' || data[i] == '\n' {
			advance = i + 1
			for advance < len(data) && (data[advance] == '\r' || data[advance] == '\n') {
				advance++
			}
			return advance, data[0:i], nil
		}
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}
