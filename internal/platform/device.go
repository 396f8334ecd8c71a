package platform

import (
	"runtime"
	"time"
)

// DeviceSnapshot captures environment metadata attached to crash records
// during diagnostic enrichment.
type DeviceSnapshot struct {
	OS             string    `json:"os"`
	Arch           string    `json:"arch"`
	GoVersion      string    `json:"go_version"`
	NumCPU         int       `json:"num_cpu"`
	NumGoroutine   int       `json:"num_goroutine"`
	HeapAllocBytes uint64    `json:"heap_alloc_bytes"`
	HeapSysBytes   uint64    `json:"heap_sys_bytes"`
	CollectedAt    time.Time `json:"collected_at"`
}

// CollectDeviceSnapshot gathers a point-in-time snapshot of the runtime.
func CollectDeviceSnapshot() DeviceSnapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return DeviceSnapshot{
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
		GoVersion:      runtime.Version(),
		NumCPU:         runtime.NumCPU(),
		NumGoroutine:   runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		CollectedAt:    time.Now(),
	}
}
