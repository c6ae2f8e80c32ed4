package spray

import (
	"encoding/binary"
	"math"
)

// DispatchArgsSize is the byte size of the indirect argument record:
// three u32 workgroup counts (x, y, z).
const DispatchArgsSize = 12

// DispatchGroups returns the side length of the smallest square workgroup
// grid covering emission threads, i.e. the minimal g with
// g*g*ThreadsPerGroup >= emission. Emission above MaxParticles is clamped;
// slots beyond capacity do not exist, so dispatching for them only wastes
// idle threads.
func DispatchGroups(emission uint32) uint32 {
	if emission == 0 {
		return 0
	}
	if emission > MaxParticles {
		emission = MaxParticles
	}
	g := uint32(math.Ceil(math.Sqrt(float64(emission)) / ThreadsPerGroupAxis))
	// Guard against sqrt rounding just under the true root.
	for g*g*ThreadsPerGroup < emission {
		g++
	}
	return g
}

// EncodeDispatchArgs packs the (x, y, 1) workgroup triple consumed by
// DispatchWorkgroupsIndirect for both kernels.
func EncodeDispatchArgs(groups uint32) []byte {
	buf := make([]byte, DispatchArgsSize)
	binary.LittleEndian.PutUint32(buf[0:4], groups)
	binary.LittleEndian.PutUint32(buf[4:8], groups)
	binary.LittleEndian.PutUint32(buf[8:12], 1)
	return buf
}
