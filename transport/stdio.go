package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// StdioTransport implements Transport over a reader/writer pair using
// newline-delimited JSON frames. It is typically backed by a child
// process's stdout/stdin via NewCommandTransport.
type StdioTransport struct {
	reader io.Reader
	writer io.Writer
	config Config

	// waitFn, when set, is invoked after shutdown to reap a subprocess.
	waitFn func() error

	recv   chan json.RawMessage
	done   chan struct{}
	wmu    sync.Mutex
	mu     sync.Mutex
	closed bool
}

// NewStdioTransport creates a transport over an arbitrary reader/writer
// pair and starts reading frames.
func NewStdioTransport(r io.Reader, w io.Writer, cfg Config) *StdioTransport {
	cfg.applyDefaults()

	t := &StdioTransport{
		reader: r,
		writer: w,
		config: cfg,
		recv:   make(chan json.RawMessage, cfg.RecvBufferSize),
		done:   make(chan struct{}),
	}

	go t.readLoop()
	return t
}

// CommandConfig configures a subprocess-backed stdio transport.
type CommandConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// NewCommandTransport spawns the server subprocess and returns a stdio
// transport over its pipes. The subprocess's stderr passes through for
// diagnostics.
func NewCommandTransport(cfg CommandConfig, tcfg Config) (*StdioTransport, error) {
	cmd := exec.Command(cfg.Command, cfg.Args...)

	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start server: %w", err)
	}

	t := NewStdioTransport(stdout, stdin, tcfg)
	t.waitFn = func() error {
		stdin.Close()
		return cmd.Wait()
	}
	return t, nil
}

// Recv returns the channel of incoming frames.
func (t *StdioTransport) Recv() <-chan json.RawMessage {
	return t.recv
}

// Send marshals and writes one newline-terminated frame.
func (t *StdioTransport) Send(msg interface{}) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	_, err = t.writer.Write(append(data, '\n'))
	return err
}

// Close initiates shutdown. Idempotent.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.done)
	t.mu.Unlock()

	if t.waitFn != nil {
		return t.waitFn()
	}
	return nil
}

// readLoop reads newline-delimited frames and forwards them to recv.
func (t *StdioTransport) readLoop() {
	defer close(t.recv)

	scanner := bufio.NewScanner(t.reader)
	scanner.Buffer(make([]byte, 64*1024), t.config.MaxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// scanner reuses its buffer
		frame := make(json.RawMessage, len(line))
		copy(frame, line)

		select {
		case t.recv <- frame:
		case <-t.done:
			return
		}
	}
}
