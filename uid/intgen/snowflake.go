package intgen

import (
	"net"
	"sync/atomic"
	"time"
)

type SnowflakeOptions struct {
	// 机器 ID，为空时取本机 IPv4 地址的低 16 位
	MachineID *int64 `cfg:"machineID" validate:"omitempty,gte=0,lte=1023"`
}

// SnowflakeGenerator 1 位符号 + 41 位时间戳 + 10 位机器 ID + 12 位序列号
type SnowflakeGenerator struct {
	state     atomic.Int64 // 高位时间戳，低 12 位序列号
	machineID int64
	epoch     int64
}

const (
	sequenceBits  = 12
	machineIDBits = 10

	maxSequence  = (1 << sequenceBits) - 1
	maxMachineID = (1 << machineIDBits) - 1

	machineIDShift = sequenceBits
	timestampShift = sequenceBits + machineIDBits
)

// 2020-01-01 00:00:00 UTC
var snowflakeEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

func NewSnowflakeGeneratorWithOptions(options *SnowflakeOptions) *SnowflakeGenerator {
	var machineID int64
	if options != nil && options.MachineID != nil {
		machineID = *options.MachineID
	} else {
		machineID = machineIDFromIP()
	}

	g := &SnowflakeGenerator{machineID: machineID & maxMachineID, epoch: snowflakeEpoch}
	g.state.Store((time.Now().UnixMilli() - g.epoch) << sequenceBits)
	return g
}

func machineIDFromIP() int64 {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return 0
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipv4 := ipnet.IP.To4(); ipv4 != nil {
				return int64(ipv4[2])<<8 | int64(ipv4[3])
			}
		}
	}
	return 0
}

func (g *SnowflakeGenerator) Generate() int64 {
	for {
		oldState := g.state.Load()
		oldTimestamp := oldState >> sequenceBits
		oldSequence := oldState & maxSequence

		timestamp := time.Now().UnixMilli() - g.epoch
		sequence := int64(0)
		if timestamp <= oldTimestamp {
			// 同一毫秒或时钟回拨，沿用上次的时间戳
			timestamp = oldTimestamp
			sequence = (oldSequence + 1) & maxSequence
			if sequence == 0 {
				for timestamp <= oldTimestamp {
					timestamp = time.Now().UnixMilli() - g.epoch
				}
			}
		}

		if g.state.CompareAndSwap(oldState, timestamp<<sequenceBits|sequence) {
			return timestamp<<timestampShift | g.machineID<<machineIDShift | sequence
		}
	}
}
