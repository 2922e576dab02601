package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/luma/warchat/internal/metrics"
	"github.com/luma/warchat/protocol"
)

var (
	ErrConnClosed     = errors.New("connection is closed")
	ErrWriteQueueFull = errors.New("write queue is full")
)

// TCPConn is one logged in session: a read loop framing inbound data into
// blocks and a write loop draining queued commands.
type TCPConn struct {
	ctx        context.Context
	cancel     context.CancelFunc
	loopWaiter sync.WaitGroup
	closeOnce  sync.Once

	conn net.Conn

	writeQueue chan string

	log   *zap.Logger
	trace bool
}

func NewTCPConn(parentCtx context.Context, conn net.Conn, trace bool, log *zap.Logger) *TCPConn {
	ctx, cancel := context.WithCancel(parentCtx)

	return &TCPConn{
		ctx:        ctx,
		cancel:     cancel,
		conn:       conn,
		writeQueue: make(chan string, WriteQueueSize),
		log:        log,
		trace:      trace,
	}
}

// Start runs the read and write loops until the connection ends, handing
// every framed block to onBlock. It returns the read error that ended the
// session, or nil for a clean EOF or a cancelled context.
func (t *TCPConn) Start(onBlock func(block string)) error {
	var readErr error

	t.loopWaiter.Add(2)

	go func() {
		defer t.loopWaiter.Done()
		readErr = t.ReadLoop(onBlock)

		// The server hung up, stop writing too
		t.cancel()
	}()

	go func() {
		defer t.loopWaiter.Done()
		t.WriteLoop()
	}()

	// Unblock the read loop when the context ends
	go func() {
		<-t.ctx.Done()
		t.closeConn()
	}()

	t.loopWaiter.Wait()

	return readErr
}

// Close ends the session.
func (t *TCPConn) Close() error {
	t.cancel()
	return nil
}

func (t *TCPConn) ReadLoop(onBlock func(block string)) error {
	log := t.log.Named("readLoop")

	var framer protocol.Framer
	buf := make([]byte, readBufferSize)

	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			if block, ok := framer.Feed(buf[:n]); ok {
				t.traceBlock("<<", block)
				onBlock(block)
			}
		}

		if err == nil {
			continue
		}

		if block, ok := framer.Flush(); ok {
			t.traceBlock("<<", block)
			onBlock(block)
		}

		if errors.Is(err, io.EOF) || t.ctx.Err() != nil {
			log.Debug("Read loop exiting")
			return nil
		}

		return err
	}
}

func (t *TCPConn) WriteLoop() {
	log := t.log.Named("writeLoop")

	for {
		select {
		case <-t.ctx.Done():
			log.Debug("Write loop exiting")
			return

		case line := <-t.writeQueue:
			t.traceBlock(">>", line)

			if err := protocol.WriteCommand(t.conn, line); err != nil {
				metrics.ObserveTransportError("write")
				log.Error("Failed to write command",
					zap.String("command", line),
					zap.Error(err))
				continue
			}
		}
	}
}

// Write queues a command for the write loop.
func (t *TCPConn) Write(command string) error {
	if !t.isRunning() {
		return ErrConnClosed
	}

	select {
	case t.writeQueue <- command:
		return nil
	default:
		return ErrWriteQueueFull
	}
}

func (t *TCPConn) closeConn() {
	t.closeOnce.Do(func() {
		if err := t.conn.Close(); err != nil && !strings.Contains(err.Error(), "use of closed network connection") {
			t.log.Warn("Connection did not close cleanly", zap.Error(err))
		}
	})
}

func (t *TCPConn) traceBlock(direction, block string) {
	if t.trace {
		t.log.Debug("Trace", zap.String("dir", direction), zap.String("data", block))
	}
}

// isRunning returns true if Close has not been called
func (t *TCPConn) isRunning() bool {
	select {
	case <-t.ctx.Done():
		return false

	default:
		return true
	}
}
