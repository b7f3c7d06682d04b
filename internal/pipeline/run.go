package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// DefaultQueueSize bounds the lines buffered between the reader and the
// processing loop.
const DefaultQueueSize = 1024

// MaxLineBytes is the longest line handed to the aggregator. Longer lines are
// discarded up to the next newline and counted as malformed.
const MaxLineBytes = 1 << 20

type inputLine struct {
	text     string
	overlong bool
}

// Run feeds every line of r through a, then flushes the final frame.
//
// Reading happens on its own goroutine so that frame writes overlap with
// input; lines are still processed strictly in order by a single goroutine.
// Run returns as soon as processing fails or ctx is canceled, even if the
// reader is still blocked; r is closed in that case when it is an io.Closer.
func Run(ctx context.Context, r io.Reader, a *Aggregator, queueSize int) error {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	lines := make(chan inputLine, queueSize)
	readErr := make(chan error, 1)
	go func() {
		readErr <- readLines(ctx, r, lines)
		close(lines)
	}()

	var completed atomic.Bool
	g.Go(func() error {
		defer stop()
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			var (
				l  inputLine
				ok bool
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case l, ok = <-lines:
			}
			if !ok {
				if err := <-readErr; err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := a.Finish(); err != nil {
					return err
				}
				completed.Store(true)
				return nil
			}
			if l.overlong {
				a.SkipOverlongLine()
				continue
			}
			if err := a.ProcessLine(l.text); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		if completed.Load() {
			return nil
		}
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}
		return nil
	})

	return g.Wait()
}

// readLines sends each line of r, without its line ending, until EOF, a read
// error or cancellation.
func readLines(ctx context.Context, r io.Reader, out chan<- inputLine) error {
	br := bufio.NewReaderSize(r, MaxLineBytes)
	for {
		b, err := br.ReadSlice('\n')
		var l inputLine
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			for errors.Is(err, bufio.ErrBufferFull) {
				_, err = br.ReadSlice('\n')
			}
			l.overlong = true
		case len(b) == 0 && errors.Is(err, io.EOF):
			return nil
		default:
			l.text = string(bytes.TrimSuffix(bytes.TrimSuffix(b, []byte("\n")), []byte("\r")))
		}
		if err != nil && !errors.Is(err, io.EOF) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		select {
		case out <- l:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err != nil {
			return nil
		}
	}
}
