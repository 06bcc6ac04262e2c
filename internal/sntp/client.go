package sntp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Defaults for a query when the caller does not override them.
const (
	DefaultServer  = "pool.ntp.org"
	DefaultPort    = 123
	DefaultTimeout = 10 * time.Second
)

// Error kinds reported by a query. Exactly one of these (or success) is
// produced per query; match with errors.Is.
var (
	// ErrTimeout means no reply arrived within the configured window.
	ErrTimeout = errors.New("sntp: no reply within timeout")

	// ErrSend means the request could not be dispatched, including
	// hostname resolution failures.
	ErrSend = errors.New("sntp: request could not be sent")

	// ErrSocket means the networking stack reported a transport-level
	// failure before a valid reply, e.g. a connection-refused ICMP.
	ErrSocket = errors.New("sntp: socket error")

	// ErrMalformedResponse means the reply was shorter than a full
	// 48-byte NTP packet.
	ErrMalformedResponse = errors.New("sntp: malformed reply")
)

// QueryOptions overrides the query defaults. The zero value means
// "use defaults".
type QueryOptions struct {
	// Port is the server's UDP port. 0 means DefaultPort.
	Port int

	// Timeout bounds the whole exchange. 0 means DefaultTimeout.
	Timeout time.Duration
}

// QueryResult is the outcome of an asynchronous query. Exactly one of
// Time and Err is meaningful.
type QueryResult struct {
	Time time.Time
	Err  error
}

// Query asks the server for the current time using default options.
func Query(server string) (time.Time, error) {
	return QueryWithOptions(server, QueryOptions{})
}

// QueryWithOptions performs one complete SNTP exchange: build the request,
// open a UDP socket, send, wait for exactly one reply or the timeout, and
// decode the server's Transmit Timestamp. The returned time is UTC.
//
// Each call owns its socket for the duration of the exchange and releases
// it on every path, so concurrent queries are fully independent.
func QueryWithOptions(server string, opts QueryOptions) (time.Time, error) {
	if server == "" {
		return time.Time{}, errors.New("sntp: server must not be empty")
	}

	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 1 || port > 65535 {
		return time.Time{}, fmt.Errorf("sntp: port %d out of range [1, 65535]", port)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout < 0 {
		return time.Time{}, errors.New("sntp: timeout must be positive")
	}

	// One deadline bounds the whole query. Hostname resolution inside
	// Dial draws from the same budget as the exchange, so a slow
	// resolver cannot stretch the total wait beyond the timeout.
	deadline := time.Now().Add(timeout)

	// A connected socket filters inbound datagrams to the server's address
	// and surfaces ICMP errors (port unreachable etc.) as read errors.
	conn, err := net.DialTimeout("udp4", net.JoinHostPort(server, strconv.Itoa(port)), time.Until(deadline))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrSend, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrSocket, err)
	}

	if _, err := conn.Write(newRequest()); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrSend, err)
	}

	reply := make([]byte, PacketSize)
	n, err := conn.Read(reply)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return time.Time{}, fmt.Errorf("%w (%v)", ErrTimeout, timeout)
		}
		return time.Time{}, fmt.Errorf("%w: %v", ErrSocket, err)
	}

	return parseTransmitTime(reply[:n])
}

// QueryAsync runs QueryWithOptions in its own goroutine and delivers the
// outcome on the returned channel, exactly once. The channel is buffered,
// so a caller that abandons the query leaks nothing.
func QueryAsync(server string, opts QueryOptions) <-chan QueryResult {
	ch := make(chan QueryResult, 1)
	go func() {
		t, err := QueryWithOptions(server, opts)
		ch <- QueryResult{Time: t, Err: err}
	}()
	return ch
}
