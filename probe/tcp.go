package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// Dialer captures the subset of *net.Dialer used by NewTCPProbe.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NewTCPProbe creates a Func that succeeds once addr accepts a TCP
// connection. The connection is closed immediately. A nil dialer uses a zero
// net.Dialer.
func NewTCPProbe(name, addr string, dialer Dialer) Func {
	return func(ctx context.Context) error {
		target := strings.TrimSpace(addr)
		if target == "" {
			return fmt.Errorf("%s probe: address is required", name)
		}
		d := dialer
		if d == nil {
			d = &net.Dialer{}
		}

		conn, err := d.DialContext(contextOrBackground(ctx), "tcp", target)
		if err != nil {
			return failed(name, err)
		}
		return conn.Close()
	}
}
