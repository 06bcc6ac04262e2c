package time

import (
	"fmt"
	"time"

	"github.com/KagamiChan/go-ntp-client/internal/sntp"
)

// queryServer queries an NTP server and returns the local clock offset.
// The offset ignores network delay, which is fine at the seconds-scale
// thresholds health checks operate on.
func (th *TimeHealth) queryServer(server string) (time.Duration, error) {
	serverTime, err := sntp.QueryWithOptions(server, sntp.QueryOptions{
		Port:    th.port,
		Timeout: th.timeout,
	})
	if err != nil {
		return 0, fmt.Errorf("NTP query failed: %w", err)
	}

	return serverTime.Sub(time.Now()), nil
}
