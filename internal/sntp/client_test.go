package sntp

import (
	"encoding/binary"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"
)

// testServer is a loopback UDP responder standing in for an NTP server.
// handler receives each request and returns the datagram to send back,
// or nil to stay silent.
type testServer struct {
	pc   net.PacketConn
	host string
	port int
}

func startTestServer(t *testing.T, handler func(req []byte) []byte) *testServer {
	t.Helper()

	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket failed: %v", err)
	}
	t.Cleanup(func() { pc.Close() })

	go func() {
		buf := make([]byte, 1024)
		for {
			n, addr, err := pc.ReadFrom(buf)
			if err != nil {
				return
			}
			req := make([]byte, n)
			copy(req, buf[:n])
			if resp := handler(req); resp != nil {
				pc.WriteTo(resp, addr)
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("SplitHostPort failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	return &testServer{pc: pc, host: host, port: port}
}

// echoTime returns a handler that replies with a valid packet whose
// Transmit Timestamp is the given time.
func echoTime(at time.Time) func([]byte) []byte {
	return func([]byte) []byte {
		reply := make([]byte, PacketSize)
		reply[0] = 0x1C
		secs, frac := toTimestamp(at)
		binary.BigEndian.PutUint32(reply[transmitTimestampOffset:], secs)
		binary.BigEndian.PutUint32(reply[transmitTimestampOffset+4:], frac)
		return reply
	}
}

func TestQuery_Success(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	srv := startTestServer(t, echoTime(want))

	got, err := QueryWithOptions(srv.host, QueryOptions{Port: srv.port, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("decoded %v, want %v", got, want)
	}
}

func TestQuery_SendsWellFormedRequest(t *testing.T) {
	var mu sync.Mutex
	var captured []byte

	srv := startTestServer(t, func(req []byte) []byte {
		mu.Lock()
		captured = req
		mu.Unlock()
		return echoTime(time.Now())(req)
	})

	if _, err := QueryWithOptions(srv.host, QueryOptions{Port: srv.port, Timeout: 2 * time.Second}); err != nil {
		t.Fatalf("query failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(captured) != PacketSize {
		t.Fatalf("request was %d bytes, want %d", len(captured), PacketSize)
	}
	if captured[0] != 0x1B {
		t.Errorf("request header = %#02x, want 0x1B", captured[0])
	}
	for i := 1; i < len(captured); i++ {
		if captured[i] != 0 {
			t.Errorf("request byte %d = %#02x, want 0", i, captured[i])
		}
	}
}

func TestQuery_Timeout(t *testing.T) {
	srv := startTestServer(t, func([]byte) []byte { return nil }) // never replies

	timeout := 200 * time.Millisecond
	start := time.Now()
	_, err := QueryWithOptions(srv.host, QueryOptions{Port: srv.port, Timeout: timeout})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if elapsed < timeout {
		t.Errorf("completed after %v, before the %v timeout", elapsed, timeout)
	}
	// The resolution and exchange share one deadline, so the total wait
	// stays within the timeout plus scheduling slack, never a multiple
	// of it.
	if elapsed > timeout+time.Second {
		t.Errorf("completed after %v, beyond the %v timeout plus slack", elapsed, timeout)
	}
}

func TestQuery_SocketError(t *testing.T) {
	// Bind a loopback port, note it, and close it again. Querying the
	// now-closed port draws an ICMP port-unreachable, which the
	// connected socket reports on read.
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket failed: %v", err)
	}
	_, portStr, err := net.SplitHostPort(pc.LocalAddr().String())
	if err != nil {
		t.Fatalf("SplitHostPort failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	pc.Close()

	_, err = QueryWithOptions("127.0.0.1", QueryOptions{Port: port, Timeout: 2 * time.Second})
	if !errors.Is(err, ErrSocket) {
		t.Fatalf("got %v, want ErrSocket", err)
	}
}

func TestQuery_ShortReply(t *testing.T) {
	srv := startTestServer(t, func([]byte) []byte { return make([]byte, 20) })

	_, err := QueryWithOptions(srv.host, QueryOptions{Port: srv.port, Timeout: 2 * time.Second})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("got %v, want ErrMalformedResponse", err)
	}
}

func TestQuery_SendError(t *testing.T) {
	// A host name with spaces cannot resolve; the failure is synchronous.
	_, err := Query("no such host")
	if !errors.Is(err, ErrSend) {
		t.Fatalf("got %v, want ErrSend", err)
	}
}

func TestQuery_InvalidArguments(t *testing.T) {
	tests := []struct {
		name   string
		server string
		opts   QueryOptions
	}{
		{"empty server", "", QueryOptions{}},
		{"negative port", "127.0.0.1", QueryOptions{Port: -1}},
		{"port too large", "127.0.0.1", QueryOptions{Port: 70000}},
		{"negative timeout", "127.0.0.1", QueryOptions{Timeout: -time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := QueryWithOptions(tt.server, tt.opts); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestQuery_ConcurrentQueriesAreIndependent(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	answering := startTestServer(t, echoTime(want))
	silent := startTestServer(t, func([]byte) []byte { return nil })

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		got, err := QueryWithOptions(answering.host, QueryOptions{Port: answering.port, Timeout: 5 * time.Second})
		if err != nil {
			t.Errorf("query against answering server failed: %v", err)
			return
		}
		if !got.Equal(want) {
			t.Errorf("decoded %v, want %v", got, want)
		}
	}()

	go func() {
		defer wg.Done()
		_, err := QueryWithOptions(silent.host, QueryOptions{Port: silent.port, Timeout: 300 * time.Millisecond})
		if !errors.Is(err, ErrTimeout) {
			t.Errorf("query against silent server: got %v, want ErrTimeout", err)
		}
	}()

	wg.Wait()
}

func TestQuery_SequentialQueriesReleaseSockets(t *testing.T) {
	srv := startTestServer(t, echoTime(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))

	// Each query opens and closes its own socket; 100 in a row would
	// exhaust descriptors quickly if any leaked.
	for i := 0; i < 100; i++ {
		if _, err := QueryWithOptions(srv.host, QueryOptions{Port: srv.port, Timeout: 2 * time.Second}); err != nil {
			t.Fatalf("query %d failed: %v", i, err)
		}
	}
}

func TestQueryAsync_DeliversExactlyOnce(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	srv := startTestServer(t, echoTime(want))

	ch := QueryAsync(srv.host, QueryOptions{Port: srv.port, Timeout: 2 * time.Second})

	select {
	case res := <-ch:
		if res.Err != nil {
			t.Fatalf("async query failed: %v", res.Err)
		}
		if !res.Time.Equal(want) {
			t.Errorf("decoded %v, want %v", res.Time, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
	}

	// The channel must carry exactly one result.
	select {
	case res, ok := <-ch:
		if ok {
			t.Errorf("second result delivered: %+v", res)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestQuery_RealServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	got, err := Query(DefaultServer)
	if err != nil {
		t.Skipf("query failed (network may be unavailable): %v", err)
	}

	// Sanity only: the reply should be within a day of the local clock.
	if d := time.Since(got); d > 24*time.Hour || d < -24*time.Hour {
		t.Errorf("decoded time %v is implausibly far from local clock", got)
	}
}
