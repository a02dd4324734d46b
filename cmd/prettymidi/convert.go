package main

import (
	"bufio"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/Garik-/prettymidi/pkg/prettymidi"
	"gitlab.com/gomidi/midi/v2/smf"
	"go.uber.org/zap"
)

type result struct {
	index  int
	name   string
	result *prettymidi.Result
	err    error
}

type job struct {
	index int
	name  string
}

type converter struct {
	reader    *prettymidi.Reader
	useGomidi bool
}

func (c *converter) convertFile(name string) (*prettymidi.Result, error) {
	if !c.useGomidi {
		return c.reader.ReadFile(name)
	}

	s, err := smf.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return c.reader.ReadSMF(s)
}

// readList streams the non-empty lines of r as jobs until r ends or ctx is
// done.
func readList(ctx context.Context, r io.Reader) <-chan job {
	out := make(chan job)

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)

	go func() {
		defer close(out)

		i := 0
		for scanner.Scan() {
			if scanner.Text() == "" {
				continue
			}
			select {
			case out <- job{index: i, name: scanner.Text()}:
			case <-ctx.Done():
				convertLog.Debug("readList context done", zap.Int("read", i))
				return
			}
			i++
		}
	}()

	return out
}

func convertWorker(ctx context.Context, c *converter, jobs <-chan job, cntRoutines int) (<-chan *result, <-chan struct{}) {
	log := convertLog.Named("convertWorker")
	out := make(chan *result)
	done := make(chan struct{}, 1)

	go func() {
		var wg sync.WaitGroup
		goroutines := make(chan struct{}, cntRoutines)

	loop:
		for j := range jobs {
			select {
			case goroutines <- struct{}{}:
			case <-ctx.Done():
				log.Debug("context done")
				break loop
			}
			wg.Add(1)
			go func(ctx context.Context, j job, goroutines <-chan struct{}, out chan<- *result, wg *sync.WaitGroup) {
				defer wg.Done()

				res := &result{index: j.index, name: j.name}
				res.result, res.err = c.convertFile(j.name)

				select {
				case out <- res:
				case <-ctx.Done():
					log.Debug("convertFile context done", zap.String("name", j.name))
				}
				<-goroutines

			}(ctx, j, goroutines, out, &wg)
		}

		wg.Wait()
		close(goroutines)
		close(out)

		done <- struct{}{}
		close(done)
	}()

	return out, done
}

// convertAll converts every listed file, returning results in list order.
func convertAll(parent context.Context, c *converter, jobs <-chan job, cntRoutines int) []*result {
	ctx, cancel := context.WithCancel(parent)
	results, done := convertWorker(ctx, c, jobs, cntRoutines)

	defer func() {
		cancel()
		<-done // wait convertWorker closed
	}()

	var all []*result
	for res := range results {
		if res.err != nil {
			readerLog.Debug("failed", zap.String("name", res.name), zap.Error(res.err))
		} else {
			readerLog.Debug("converted", zap.String("name", res.name), zap.Int("instruments", len(res.result.Instruments)))
		}
		all = append(all, res)
	}

	sort.Slice(all, func(a, b int) bool { return all[a].index < all[b].index })

	return all
}
