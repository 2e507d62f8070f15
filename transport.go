package arpahost

import (
	"net"
	"time"
)

// A Transport owns the datagram socket to the IMP emulator: one fixed
// local port, one fixed remote destination. It does no retransmission
// or buffering of its own — the Framer above it handles sequencing,
// and the IMP emulator is assumed local enough that raw UDP loss is
// tolerable (spec.md §4.1).
type Transport struct {
	conn *net.UDPConn
	dst  *net.UDPAddr
}

// DialTransport binds a UDP socket on localAddr and fixes dst as the
// remote destination for subsequent Send calls.
func DialTransport(localAddr, dst string) (*Transport, error) {
	la, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, err
	}
	ra, err := net.ResolveUDPAddr("udp", dst)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", la)
	if err != nil {
		return nil, err
	}
	return &Transport{conn: conn, dst: ra}, nil
}

// Send transmits one datagram to the fixed remote destination.
func (t *Transport) Send(b []byte) error {
	_, err := t.conn.WriteToUDP(b, t.dst)
	return err
}

// Recv reads one datagram into b, returning the number of bytes read.
func (t *Transport) Recv(b []byte) (int, error) {
	n, _, err := t.conn.ReadFromUDP(b)
	return n, err
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// LocalAddr reports the bound local address.
func (t *Transport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// SetReadDeadline bounds the next Recv call, letting the event loop
// enforce the ≤1s wait spec.md §5 requires so timers keep firing even
// when the IMP is silent.
func (t *Transport) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}
