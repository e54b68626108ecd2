// Package uzug drives an ueberzug or ueberzugpp subprocess over its JSON
// layer protocol. The client implements [ueberlay.Drawer]: Show and Hide map
// to add and remove commands, and Batch suppresses the draw flag on all but
// the final command of a group so the drawer repaints once per render pass.
package uzug

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/ueberlay/ueberlay"
)

var log = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger sets the logger used by this package. By default all logs are
// discarded
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	log = l
}

// DefaultCommand spawns ueberzugpp in layer mode. Plain ueberzug understands
// the same arguments
var DefaultCommand = []string{"ueberzug", "layer", "--parser", "json", "--silent"}

// ErrClosed is returned for commands issued after Close
var ErrClosed = errors.New("uzug: client closed")

type Options struct {
	// Command overrides the executable and arguments of the drawer
	// process. Defaults to [DefaultCommand]
	Command []string
	// SynchronousDraw asks the drawer to repaint before a batch returns,
	// rather than on its own schedule
	SynchronousDraw bool
	// Async hands command groups to a background goroutine, so callers
	// never block on the drawer pipe
	Async bool
}

// Client talks to a single drawer process. It is safe for concurrent use
type Client struct {
	opts    Options
	cmd     *exec.Cmd
	stdin   io.Closer
	done    chan struct{}
	quit    chan struct{}
	drained chan struct{}

	mu      sync.Mutex
	enc     *json.Encoder
	groups  *queue[[]command]
	pending []command
	depth   int
	err     error
	closed  bool
}

// New spawns the drawer process and returns a client connected to its stdin
func New(opts Options) (*Client, error) {
	argv := opts.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	log.Info("drawer started", "command", argv, "pid", cmd.Process.Pid)

	c := newClient(stdin, opts)
	c.cmd = cmd
	go c.logStderr(stderr)
	go c.wait()
	return c, nil
}

// NewWriter returns a client which encodes commands to w instead of a
// subprocess. Useful for tests and for callers which manage the drawer
// process themselves
func NewWriter(w io.Writer, opts Options) *Client {
	return newClient(w, opts)
}

func newClient(w io.Writer, opts Options) *Client {
	c := &Client{
		opts: opts,
		enc:  json.NewEncoder(w),
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}
	if wc, ok := w.(io.WriteCloser); ok {
		c.stdin = wc
	}
	if opts.Async {
		c.groups = newQueue[[]command]()
		c.drained = make(chan struct{})
		go c.run()
	}
	return c
}

// Show displays p at its current geometry
func (c *Client) Show(p *ueberlay.Placement) error {
	return c.dispatch(addCommand(p))
}

// Hide removes the placement with the given identifier. Hiding an unknown
// identifier is not an error
func (c *Client) Hide(identifier string) error {
	return c.dispatch(removeCommand(identifier))
}

// Batch invokes fn. Commands issued within fn are sent as one group: every
// command but the last has its draw flag cleared, so the drawer repaints a
// single time. Nested batches are flattened into the outermost one
func (c *Client) Batch(fn func() error) error {
	c.mu.Lock()
	if err := c.err; err != nil {
		c.mu.Unlock()
		return err
	}
	c.depth += 1
	c.mu.Unlock()

	ferr := fn()

	c.mu.Lock()
	c.depth -= 1
	var werr error
	if c.depth == 0 && len(c.pending) > 0 {
		group := c.pending
		c.pending = nil
		last := &group[len(group)-1]
		last.Draw = true
		last.Sync = c.opts.SynchronousDraw
		werr = c.send(group)
	}
	c.mu.Unlock()

	if ferr != nil {
		return ferr
	}
	return werr
}

// Err returns the first error the client has encountered: a failed write or
// an exited drawer process
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close flushes any commands still queued for async delivery, closes the
// drawer's stdin, and waits for the process to exit, killing it if it
// overstays
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.quit)
	if c.drained != nil {
		<-c.drained
	}
	var err error
	if c.stdin != nil {
		err = c.stdin.Close()
	}

	if c.cmd == nil {
		return err
	}
	select {
	case <-c.done:
	case <-time.After(3 * time.Second):
		log.Warn("drawer did not exit, killing", "pid", c.cmd.Process.Pid)
		_ = c.cmd.Process.Kill()
		<-c.done
	}
	return err
}

func (c *Client) dispatch(cmd command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.closed {
		return ErrClosed
	}
	if c.depth > 0 {
		c.pending = append(c.pending, cmd)
		return nil
	}
	cmd.Draw = true
	return c.send([]command{cmd})
}

// send writes or queues a command group. c.mu must be held
func (c *Client) send(group []command) error {
	if c.opts.Async {
		c.groups.push(group)
		return nil
	}
	return c.write(group)
}

// write encodes a command group. c.mu must be held
func (c *Client) write(group []command) error {
	for i := range group {
		if err := c.enc.Encode(&group[i]); err != nil {
			if c.err == nil {
				c.err = fmt.Errorf("write drawer command: %w", err)
			}
			return c.err
		}
	}
	return nil
}

// run services the command queue in async mode. On quit it drains whatever
// is still queued before reporting itself done, so Close never drops commands
func (c *Client) run() {
	defer close(c.drained)
	for {
		select {
		case <-c.groups.Ready():
			c.flushQueue()
		case <-c.quit:
			c.flushQueue()
			return
		}
	}
}

func (c *Client) flushQueue() {
	for {
		group, ok := c.groups.pop()
		if !ok {
			return
		}
		c.mu.Lock()
		err := c.write(group)
		c.mu.Unlock()
		if err != nil {
			log.Error("async write failed", "error", err)
		}
	}
}

func (c *Client) wait() {
	err := c.cmd.Wait()
	c.mu.Lock()
	if c.err == nil && !c.closed {
		switch err {
		case nil:
			c.err = errors.New("drawer exited")
		default:
			c.err = fmt.Errorf("drawer exited: %w", err)
		}
		log.Error("drawer exited unexpectedly", "error", err)
	}
	c.mu.Unlock()
	close(c.done)
}

func (c *Client) logStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		log.Debug("drawer stderr", "line", scanner.Text())
	}
}

var _ ueberlay.Drawer = (*Client)(nil)
