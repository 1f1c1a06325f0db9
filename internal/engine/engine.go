// Package engine runs the catalogue behind a single worker goroutine and a
// correlated request/response command surface. All reads and writes funnel
// through the worker, so command steps never interleave.
package engine

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/avernet/melodex/internal/catalog"
	"github.com/avernet/melodex/internal/library"
	"github.com/avernet/melodex/internal/metadata"
	"github.com/avernet/melodex/internal/playlists"
)

// Request is one command addressed to the worker. ID correlates the eventual
// response; Dispatch assigns one when the caller left it empty.
type Request struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response carries either a result or an error message, never both.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type envelope struct {
	req   Request
	reply chan Response
}

// Engine owns the catalogue connection and processes commands in FIFO order
// on a single goroutine.
type Engine struct {
	cat         *catalog.Catalog
	meta        metadata.Reader
	lib         *library.Library
	lists       *playlists.Playlists
	scanWorkers int

	requests chan envelope
	done     chan struct{}

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// New starts the worker goroutine over an open catalogue. meta is used for
// tag extraction during scans; scanWorkers <= 0 keeps the default.
func New(cat *catalog.Catalog, meta metadata.Reader, scanWorkers int) *Engine {
	e := &Engine{
		cat:         cat,
		meta:        meta,
		scanWorkers: scanWorkers,
		requests:    make(chan envelope, 64),
		done:        make(chan struct{}),
	}
	e.bind()
	go e.run()
	return e
}

// bind rebuilds the repositories over the current catalogue connection. Runs
// at startup and again after reset reopens the database.
func (e *Engine) bind() {
	e.lib = library.New(e.cat.DB(), e.meta)
	if e.scanWorkers > 0 {
		e.lib.SetScanWorkers(e.scanWorkers)
	}
	e.lists = playlists.New(e.cat.DB())
}

// Dispatch submits a request and blocks until the worker has replied.
// Requests after close are rejected without reaching the worker.
func (e *Engine) Dispatch(req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	env := envelope{req: req, reply: make(chan Response, 1)}

	// The send happens outside the mutex: a dispatcher blocked on a full
	// queue must never hold the lock the worker needs. The inflight count
	// lets the close path wait those senders out.
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Response{ID: req.ID, Error: "engine is closed"}
	}
	e.inflight.Add(1)
	e.mu.Unlock()

	e.requests <- env
	e.inflight.Done()

	return <-env.reply
}

// Close shuts the engine down through the command channel so queued commands
// finish first, and waits for the worker to exit.
func (e *Engine) Close() error {
	e.Dispatch(Request{Type: "close"})
	<-e.done
	return nil
}

// Done is closed once the worker goroutine has exited.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) run() {
	defer close(e.done)
	for env := range e.requests {
		res := Response{ID: env.req.ID}
		result, err := e.handle(env.req)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Result = result
		}
		env.reply <- res

		if env.req.Type == "close" {
			e.drain()
			return
		}
	}
}

// drain answers requests that reached the queue before close was handled.
// Dispatchers that passed the closed check are still entitled to a reply, so
// the worker keeps consuming until every in-flight send has completed, then
// flushes whatever remains in the buffer.
func (e *Engine) drain() {
	settled := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(settled)
	}()

	for {
		select {
		case env := <-e.requests:
			env.reply <- Response{ID: env.req.ID, Error: "engine is closed"}
		case <-settled:
			for {
				select {
				case env := <-e.requests:
					env.reply <- Response{ID: env.req.ID, Error: "engine is closed"}
				default:
					return
				}
			}
		}
	}
}
