package parser

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/revelaction/segparse/engine"
	sent "github.com/revelaction/segparse/sentence"
)

// Pool parses the Docs of a corpus concurrently, one Parser and one engine
// per worker.
type Pool struct {
	parsers []*Parser
	engines []engine.Engine
}

// NewPool builds n workers, each with an engine from newEngine. The options
// apply to every worker.
func NewPool(n int, newEngine func() (engine.Engine, error), opts ...Option) (*Pool, error) {
	if n < 1 {
		n = 1
	}

	p := &Pool{}
	for i := 0; i < n; i++ {
		eng, err := newEngine()
		if err != nil {
			return nil, errors.Join(fmt.Errorf("engine %d: %w", i, err), p.Close())
		}
		p.engines = append(p.engines, eng)
		p.parsers = append(p.parsers, New(eng, opts...))
	}

	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.parsers)
}

// Parse parses every Doc of the corpus. Docs keep their corpus order; on
// error the corpus is not modified.
func (p *Pool) Parse(ctx context.Context, c *sent.Corpus) error {
	if c.Parsed() {
		return ErrAlreadyParsed
	}

	docs := make([]sent.Doc, len(c.Docs))
	jobs := make(chan int)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := range c.Docs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for _, ps := range p.parsers {
		ps := ps
		g.Go(func() error {
			for i := range jobs {
				d, err := ps.parseDoc(ctx, c.Docs[i])
				if err != nil {
					return fmt.Errorf("doc %d: %w", i, err)
				}
				docs[i] = d
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	c.Docs = docs
	return nil
}

// Close closes all engines.
func (p *Pool) Close() error {
	var errs []error
	for _, e := range p.engines {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
