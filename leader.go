package arpahost

import "fmt"

// MessageType is the 1822 leader type field.
type MessageType uint8

// The 1822 message types. REGULAR carries NCP and user data; the
// rest are IMP-generated control notifications.
const (
	TypeRegular     MessageType = 0
	TypeLeaderError MessageType = 1
	TypeDown        MessageType = 2
	TypeBlocked     MessageType = 3
	TypeNOP         MessageType = 4
	TypeRFNM        MessageType = 5
	TypeFull        MessageType = 6
	TypeDead        MessageType = 7
	TypeDataError   MessageType = 8
	TypeIncompl     MessageType = 9
	TypeReset       MessageType = 10
)

var messageTypeNames = [...]string{
	"REGULAR", "LEADER_ERROR", "DOWN", "BLOCKED", "NOP",
	"RFNM", "FULL", "DEAD", "DATA_ERROR", "INCOMPL", "RESET",
}

// String renders a MessageType using the names from spec.md's type
// table, falling back to the numeric value for anything unassigned.
func (t MessageType) String() string {
	if int(t) < len(messageTypeNames) {
		return messageTypeNames[t]
	}
	return fmt.Sprintf("TYPE(%d)", uint8(t))
}

// LeaderLen is the size in bytes of a 1822 leader.
const LeaderLen = 4

// A Leader is the four-octet 1822 leader prefixed to every IMP
// message: type/flags packed into the first octet, then host, link
// and subtype.
type Leader struct {
	Type    MessageType
	Flags   uint8 // low 4 bits significant
	Host    HostAddress
	Link    uint8
	Subtype uint8
}

// ParseLeader decodes the four-byte 1822 leader from b. b must be at
// least LeaderLen bytes.
func ParseLeader(b []byte) (Leader, error) {
	if len(b) < LeaderLen {
		return Leader{}, fmt.Errorf("arpahost: short 1822 leader: %d bytes", len(b))
	}
	return Leader{
		Type:    MessageType(b[0] >> 4),
		Flags:   b[0] & 0x0f,
		Host:    HostAddress(b[1]),
		Link:    b[2],
		Subtype: b[3],
	}, nil
}

// Append encodes the leader and appends it to b, returning the
// extended slice.
func (l Leader) Append(b []byte) []byte {
	return append(b,
		byte(l.Type)<<4|l.Flags&0x0f,
		byte(l.Host),
		l.Link,
		l.Subtype,
	)
}

// Bytes encodes the leader as a standalone 4-byte slice.
func (l Leader) Bytes() []byte {
	return l.Append(make([]byte, 0, LeaderLen))
}
