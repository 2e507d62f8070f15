package arpahost

// Status1976 is the 1976-era IMP Status message (type 304, 72 bytes,
// 36 words), grounded on `decode_status_message` in
// original_source/mini/src/bbn-ncc/ncp.c.
type Status1976 struct {
	BANOM uint16 // low 11 bits of word 4

	MesgenOn, IosecOn, SnapshotOn, TrceOn     bool
	MemOff, SatUp, OverrideOn                 bool
	SS1On, SS2On, SS3On, SS4On                bool

	NSReload, NSRestart, RestartCode uint8 // word 5, 3 bits each

	TrapLocation uint16
	TrapData     uint32

	FreeCount, SFCount, ReasCount, AllocateCount uint16 // low 9 bits each

	IMPVersion uint16
	Hosts4, Hosts3 bool
	TIPVersion     uint16
	SatPresent, CDHPresent bool
	HostState      [4]uint8 // 4 bits each

	HostTestNum            int16
	NOPsSent, NOPsReceived uint16

	Modem [5]struct {
		RoutingMsgs uint16
		Dead        bool
		Looped      bool
		IMPOtherEnd uint8
		ErrorCount  uint8
	}

	ModemSpeed     uint16
	ReloadLocation uint16
	ReloadData     uint32
	Checksum       uint16
}

func decodeStatus1976(data []byte) Status1976 {
	var m Status1976

	w4 := word(data, 3)
	m.BANOM = w4 & 0x7FF
	m.MesgenOn = (w4>>10)&1 != 0
	m.IosecOn = (w4>>9)&1 != 0
	m.SnapshotOn = (w4>>8)&1 != 0
	m.TrceOn = (w4>>7)&1 != 0
	m.MemOff = (w4>>6)&1 != 0
	m.SatUp = (w4>>5)&1 != 0
	m.OverrideOn = (w4>>4)&1 != 0
	m.SS1On = (w4>>3)&1 != 0
	m.SS2On = (w4>>2)&1 != 0
	m.SS3On = (w4>>1)&1 != 0
	m.SS4On = w4&1 != 0

	w5 := word(data, 4)
	m.NSReload = uint8(w5>>6) & 0x7
	m.NSRestart = uint8(w5>>3) & 0x7
	m.RestartCode = uint8(w5) & 0x7

	m.TrapLocation = word(data, 5)
	m.TrapData = uint32(word(data, 6))<<16 | uint32(word(data, 7))

	m.FreeCount = word(data, 8) & 0x1FF
	m.SFCount = word(data, 9) & 0x1FF
	m.ReasCount = word(data, 10) & 0x1FF
	m.AllocateCount = word(data, 11) & 0x1FF

	m.IMPVersion = word(data, 12)

	w14 := word(data, 13)
	m.Hosts4 = (w14>>15)&1 != 0
	m.Hosts3 = (w14>>14)&1 != 0
	m.SatPresent = (w14>>1)&1 != 0
	m.CDHPresent = w14&1 != 0

	m.TIPVersion = word(data, 14)

	w16 := word(data, 15)
	m.HostState[0] = uint8(w16>>12) & 0xF
	m.HostState[1] = uint8(w16>>8) & 0xF
	m.HostState[2] = uint8(w16>>4) & 0xF
	m.HostState[3] = uint8(w16) & 0xF

	m.HostTestNum = int16(word(data, 16))
	m.NOPsSent = word(data, 17)
	m.NOPsReceived = word(data, 18)

	for i := 0; i < 5; i++ {
		base := 19 + i*2
		m.Modem[i].RoutingMsgs = word(data, base)
		status := word(data, base+1)
		m.Modem[i].Dead = (status>>15)&1 != 0
		m.Modem[i].Looped = (status>>14)&1 != 0
		m.Modem[i].IMPOtherEnd = uint8(status>>8) & 0x3F
		m.Modem[i].ErrorCount = uint8(status) & 0xFF
	}

	m.ModemSpeed = word(data, 29)
	m.ReloadLocation = word(data, 30)
	m.ReloadData = uint32(word(data, 31))<<16 | uint32(word(data, 32))
	m.Checksum = word(data, 33)

	return m
}

// Throughput1976 is the 1976-era IMP Throughput message (type 302,
// 118 bytes, 59 words), grounded on `decode_throughput_message`.
type Throughput1976 struct {
	Modem [5]struct {
		PacketsOut uint16
		WordsOut   uint16
	}
	Host [4]struct {
		MessToNet, MessFromNet     uint16
		PacketToNet, PacketFromNet uint16
		LocalMessSent, LocalMessRcvd     uint16
		LocalPacketSent, LocalPacketRcvd uint16
		WordsToNet, WordsFromNet         uint16
	}
	Background [3]uint16
	Checksum   uint16
}

func decodeThroughput1976(data []byte) Throughput1976 {
	var m Throughput1976

	for i := 0; i < 5; i++ {
		base := 3 + i*2
		m.Modem[i].PacketsOut = word(data, base)
		m.Modem[i].WordsOut = word(data, base+1)
	}

	for i := 0; i < 4; i++ {
		base := 13 + i*10
		m.Host[i].MessToNet = word(data, base)
		m.Host[i].MessFromNet = word(data, base+1)
		m.Host[i].PacketToNet = word(data, base+2)
		m.Host[i].PacketFromNet = word(data, base+3)
		m.Host[i].LocalMessSent = word(data, base+4)
		m.Host[i].LocalMessRcvd = word(data, base+5)
		m.Host[i].LocalPacketSent = word(data, base+6)
		m.Host[i].LocalPacketRcvd = word(data, base+7)
		m.Host[i].WordsToNet = word(data, base+8)
		m.Host[i].WordsFromNet = word(data, base+9)
	}

	m.Background[0] = word(data, 53)
	m.Background[1] = word(data, 54)
	m.Background[2] = word(data, 55)
	m.Checksum = word(data, 56)

	return m
}
