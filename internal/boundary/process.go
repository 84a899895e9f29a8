package boundary

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventdriver/pkg/types"
)

// Defaults applied when corresponding ProcessConfig fields are unset.
const (
	defaultReplyTimeout = 10 * time.Second
	defaultStopTimeout  = 3 * time.Second
	maxFrameBytes       = 1 << 20
)

// ProcessConfig describes the host process a ProcessClient spawns.
type ProcessConfig struct {
	Name    string
	Command string
	Args    []string
	// Env entries are appended to the current environment.
	Env []string
	Dir string
	// ReplyTimeout bounds the wait for each reply (in addition to ctx).
	ReplyTimeout time.Duration
	// StopTimeout bounds the graceful exit after stdin is closed; the process
	// is killed afterwards.
	StopTimeout time.Duration
	Logger      *zerolog.Logger
}

// ProcessClient forwards events to a host process. Calls are serialized:
// one frame is in flight at a time.
type ProcessClient struct {
	cfg     ProcessConfig
	log     zerolog.Logger
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  *tailBuffer
	replies chan Reply
	exited  chan struct{}
	waitErr error
	readErr error

	mu     sync.Mutex
	nextID uint64
	closed bool
}

// Start spawns the host process and begins reading its replies.
func Start(ctx context.Context, cfg ProcessConfig) (*ProcessClient, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("boundary: command is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = defaultReplyTimeout
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Command
	}
	lg := zerolog.Nop()
	if cfg.Logger != nil {
		lg = *cfg.Logger
	}
	lg = lg.With().Str("adapter", "process").Str("client", cfg.Name).Logger()

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}
	stderr := &tailBuffer{log: lg}
	cmd.Stderr = stderr
	// Bound Wait when a grandchild keeps the output pipes open.
	cmd.WaitDelay = cfg.StopTimeout
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cfg.Command, err)
	}
	lg.Info().Int("pid", cmd.Process.Pid).Str("command", cfg.Command).Msg("host started")

	c := &ProcessClient{
		cfg:     cfg,
		log:     lg,
		cmd:     cmd,
		stdin:   stdin,
		stderr:  stderr,
		replies: make(chan Reply, 16),
		exited:  make(chan struct{}),
	}
	go c.readLoop(stdout)
	return c, nil
}

func (c *ProcessClient) Name() string { return c.cfg.Name }

// PID returns the host process id.
func (c *ProcessClient) PID() int { return c.cmd.Process.Pid }

// readLoop decodes reply frames until stdout closes, then reaps the process.
func (c *ProcessClient) readLoop(stdout io.Reader) {
	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 0, 64<<10), maxFrameBytes)
	for sc.Scan() {
		line := sc.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var r Reply
		if err := json.Unmarshal(line, &r); err != nil {
			c.log.Debug().Err(err).Str("line", string(line)).Msg("ignoring non-protocol output")
			continue
		}
		select {
		case c.replies <- r:
		default:
			c.log.Warn().Uint64("id", r.ID).Msg("reply buffer full; dropping reply")
		}
	}
	if err := sc.Err(); err != nil {
		// stdout is no longer drained, so the host would block on its next write.
		c.readErr = fmt.Errorf("read reply: %w", err)
		c.log.Error().Err(err).Msg("reply stream broken; killing host")
		if kerr := c.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			c.log.Warn().Err(kerr).Msg("kill host")
		}
	}
	c.waitErr = c.cmd.Wait()
	if c.waitErr != nil {
		c.log.Warn().Err(c.waitErr).Msg("host exited")
	} else {
		c.log.Info().Msg("host exited")
	}
	close(c.exited)
	close(c.replies)
}

func (c *ProcessClient) exitError() error {
	if c.readErr != nil {
		return fmt.Errorf("%w: %w", ErrProcessExited, c.readErr)
	}
	tail := c.stderr.String()
	switch {
	case c.waitErr != nil && tail != "":
		return fmt.Errorf("%w: %v: %s", ErrProcessExited, c.waitErr, tail)
	case c.waitErr != nil:
		return fmt.Errorf("%w: %v", ErrProcessExited, c.waitErr)
	case tail != "":
		return fmt.Errorf("%w: %s", ErrProcessExited, tail)
	default:
		return ErrProcessExited
	}
}

// HandleEvent sends ev to the host and waits for its reply.
func (c *ProcessClient) HandleEvent(ctx context.Context, ev types.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case <-c.exited:
		return c.exitError()
	default:
	}

	c.drainStale()

	env, err := types.Wrap(ev)
	if err != nil {
		return err
	}
	c.nextID++
	id := c.nextID
	frame, err := json.Marshal(Request{ID: id, Method: MethodHandleEvent, Event: env})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if _, err := c.stdin.Write(append(frame, '\n')); err != nil {
		// A broken pipe usually means the host died; give the reaper a moment.
		select {
		case <-c.exited:
			return c.exitError()
		case <-time.After(time.Second):
			return fmt.Errorf("write request: %w", err)
		}
	}

	timer := time.NewTimer(c.cfg.ReplyTimeout)
	defer timer.Stop()
	for {
		select {
		case r, ok := <-c.replies:
			if !ok {
				<-c.exited
				return c.exitError()
			}
			if r.ID != id {
				c.log.Debug().Uint64("id", r.ID).Uint64("want", id).Msg("dropping stale reply")
				continue
			}
			return replyErr(r)
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return fmt.Errorf("%w after %s (id=%d)", ErrReplyTimeout, c.cfg.ReplyTimeout, id)
		}
	}
}

// drainStale discards replies left over from requests that timed out.
func (c *ProcessClient) drainStale() {
	for {
		select {
		case r, ok := <-c.replies:
			if !ok {
				return
			}
			c.log.Debug().Uint64("id", r.ID).Msg("dropping stale reply")
		default:
			return
		}
	}
}

// Close ends the session: stdin is closed so the host sees EOF, and the
// process is killed if it does not exit within StopTimeout.
func (c *ProcessClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	_ = c.stdin.Close()
	select {
	case <-c.exited:
		return nil
	case <-time.After(c.cfg.StopTimeout):
	}
	c.log.Warn().Dur("timeout", c.cfg.StopTimeout).Msg("host did not exit; killing")
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill host: %w", err)
	}
	select {
	case <-c.exited:
		return nil
	case <-time.After(c.cfg.StopTimeout):
		return fmt.Errorf("host %d did not exit after kill", c.cmd.Process.Pid)
	}
}
