package input

import (
	"context"
	"fmt"
	"os"

	"github.com/nxadm/tail"
	"github.com/rs/zerolog/log"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// DefaultLogPath is where the firewall log is read from unless configured.
const DefaultLogPath = "/ram/iptables.log"

// FileSource reads a log file once from the beginning to its current end.
// It does not follow the file; every invocation is a closed batch.
type FileSource struct {
	filepath   string
	bufferSize int
}

func NewFileSource(filepath string, bufferSize int) *FileSource {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &FileSource{
		filepath:   filepath,
		bufferSize: bufferSize,
	}
}

func (s *FileSource) Name() string {
	return s.filepath
}

// Lines opens the file and streams its lines. Opening errors are returned
// synchronously and wrap domain.ErrSourceUnavailable.
func (s *FileSource) Lines(ctx context.Context) (<-chan string, <-chan error, error) {
	info, err := os.Stat(s.filepath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.filepath, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is a directory", domain.ErrSourceUnavailable, s.filepath)
	}

	t, err := tail.TailFile(s.filepath, tail.Config{
		Follow:    false,
		ReOpen:    false,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: 0},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.filepath, err)
	}

	lineChan := make(chan string, s.bufferSize)
	errChan := make(chan error, 10)

	go func() {
		defer close(lineChan)
		defer close(errChan)
		defer t.Cleanup()

		log.Debug().Str("file", s.filepath).Msg("Reading log file")

		for {
			select {
			case <-ctx.Done():
				_ = t.Stop()
				return
			case line, ok := <-t.Lines:
				if !ok {
					if err := t.Wait(); err != nil {
						errChan <- err
					}
					return
				}
				if line.Err != nil {
					log.Warn().Err(line.Err).Msg("Error reading line")
					select {
					case errChan <- line.Err:
					default:
					}
					continue
				}

				select {
				case lineChan <- line.Text:
				case <-ctx.Done():
					_ = t.Stop()
					return
				}
			}
		}
	}()

	return lineChan, errChan, nil
}

// SliceSource serves lines from memory.
type SliceSource struct {
	name  string
	lines []string
}

func NewSliceSource(name string, lines []string) *SliceSource {
	return &SliceSource{name: name, lines: lines}
}

func (s *SliceSource) Name() string {
	return s.name
}

func (s *SliceSource) Lines(ctx context.Context) (<-chan string, <-chan error, error) {
	lineChan := make(chan string)
	errChan := make(chan error)

	go func() {
		defer close(lineChan)
		defer close(errChan)
		for _, line := range s.lines {
			select {
			case lineChan <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	return lineChan, errChan, nil
}
