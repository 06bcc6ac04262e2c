// Package sntp implements a minimal SNTP client (the client-mode subset of
// RFC 5905): one 48-byte request, one reply, decode the server's Transmit
// Timestamp into a UTC time. No clock adjustment, no extension fields, no
// authentication.
package sntp

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// PacketSize is the size of an NTP packet without extension fields.
	PacketSize = 48

	// requestHeader packs the first byte of a client request:
	// LI=0 (no leap warning), VN=3, Mode=3 (client).
	requestHeader = 0x1B

	// transmitTimestampOffset is the byte offset of the Transmit Timestamp
	// field within the packet.
	transmitTimestampOffset = 40
)

// ntpEpoch is the zero point of the 32-bit seconds field.
var ntpEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// newRequest builds a client request packet. Only the header byte is set;
// everything else, including the originate timestamp, stays zero.
func newRequest() []byte {
	pkt := make([]byte, PacketSize)
	pkt[0] = requestHeader
	return pkt
}

// parseTransmitTime decodes the Transmit Timestamp field of a server reply.
// The field is a 64-bit fixed-point value: 32-bit big-endian seconds since
// the NTP epoch, then a 32-bit big-endian binary fraction of a second.
// Replies shorter than a full packet are rejected rather than padded.
func parseTransmitTime(reply []byte) (time.Time, error) {
	if len(reply) < PacketSize {
		return time.Time{}, fmt.Errorf("%w: got %d bytes, need %d", ErrMalformedResponse, len(reply), PacketSize)
	}

	secs := binary.BigEndian.Uint32(reply[transmitTimestampOffset:])
	frac := binary.BigEndian.Uint32(reply[transmitTimestampOffset+4:])

	// frac counts 1/2^32 seconds; scale to nanoseconds. Exact for the
	// millisecond resolution this client promises.
	nanos := (uint64(frac) * uint64(time.Second)) >> 32

	return ntpEpoch.Add(time.Duration(secs)*time.Second + time.Duration(nanos)), nil
}

// toTimestamp converts a time into the two halves of an NTP timestamp.
// Used by tests to craft server replies; exported logic stays decode-only.
func toTimestamp(t time.Time) (secs, frac uint32) {
	d := t.Sub(ntpEpoch)
	secs = uint32(d / time.Second)
	rem := d % time.Second
	frac = uint32((uint64(rem) << 32) / uint64(time.Second))
	return secs, frac
}
