package arpahost

// TroubleReport is the 1973-era IMP Trouble Report (type 0301/0303,
// 64 bytes, 32 words). original_source/mini/src/bbn-ncc/ncp.c has no
// matching struct for this era (its own "1973" structures use
// different type codes and sizes than spec.md's dispatch table); the
// word layout here follows spec.md §3's field-order prose directly,
// with the marker word at word 0 (consistent with dispatch-by-first-
// word) and one trailing reserved word to round out to 32 words. See
// DESIGN.md.
type TroubleReport struct {
	Anomaly      uint16
	RestartReload uint16

	HaltPC uint16
	HaltA  uint16
	HaltX  uint16

	FreeCount, SFCount, ReasCount, AllocateCount uint16

	IMPVersion     uint16
	HostBits34     uint16
	TIPVersion     uint16
	HostInterfaceTested uint16
	TestSent, TestReceived uint16

	Routing [5]struct {
		Received uint16
		Errors   uint16
	}

	LineSpeed uint16
	Trap      [3]uint16
	Checksum  uint16
}

func decodeTroubleReport(data []byte) TroubleReport {
	var m TroubleReport

	m.Anomaly = word(data, 1)
	m.RestartReload = word(data, 2)
	m.HaltPC = word(data, 3)
	m.HaltA = word(data, 4)
	m.HaltX = word(data, 5)

	m.FreeCount = word(data, 6)
	m.SFCount = word(data, 7)
	m.ReasCount = word(data, 8)
	m.AllocateCount = word(data, 9)

	m.IMPVersion = word(data, 10)
	m.HostBits34 = word(data, 11)
	m.TIPVersion = word(data, 12)
	m.HostInterfaceTested = word(data, 13)
	m.TestSent = word(data, 14)
	m.TestReceived = word(data, 15)

	for i := 0; i < 5; i++ {
		base := 16 + i*2
		m.Routing[i].Received = word(data, base)
		m.Routing[i].Errors = word(data, base+1)
	}

	m.LineSpeed = word(data, 26)
	m.Trap[0] = word(data, 27)
	m.Trap[1] = word(data, 28)
	m.Trap[2] = word(data, 29)
	m.Checksum = word(data, 30)

	return m
}

// Throughput1973 is the 1973-era IMP Throughput message (type 0302,
// 106 bytes, 53 words): the same modem/host-block shape as
// Throughput1976 but without the three background-count words or the
// trailing checksum, per spec.md §3's "same shape ... without the
// three background-count words".
type Throughput1973 struct {
	Modem [5]struct {
		PacketsOut uint16
		WordsOut   uint16
	}
	Host [4]struct {
		MessToNet, MessFromNet           uint16
		PacketToNet, PacketFromNet       uint16
		LocalMessSent, LocalMessRcvd     uint16
		LocalPacketSent, LocalPacketRcvd uint16
		WordsToNet, WordsFromNet         uint16
	}
}

func decodeThroughput1973(data []byte) Throughput1973 {
	var m Throughput1973

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

	return m
}
