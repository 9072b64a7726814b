package platform

import (
	"runtime"

	"commtest-go/types"
)

// ReadMemInfo samples the runtime heap for the memory banner. FreePSRAM stays
// zero: the Go runtime does not account external RAM separately.
func ReadMemInfo() types.MemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return types.MemInfo{
		FreeHeap: m.HeapSys - m.HeapAlloc,
		MaxAlloc: m.HeapIdle,
		HeapSize: m.HeapSys,
	}
}
