package telemetry

// Snapshot is one immutable capture of device telemetry. Fields are
// independent reads and are not guaranteed to be mutually consistent.
type Snapshot struct {
	DeviceName     string  `json:"device_name"`
	DriverVersion  string  `json:"driver_version"`
	CUDAVersion    float64 `json:"cuda_version"`
	FanSpeedPct    int     `json:"fan_speed_pct"`
	GPUTempC       int     `json:"gpu_temp_c"`
	PowerUsedW     int     `json:"power_used_w"`
	PowerCapW      int     `json:"power_cap_w"`
	MemUsedGB      float64 `json:"mem_used_gb"`
	MemTotalGB     float64 `json:"mem_total_gb"`
	GPUUtilPct     int     `json:"gpu_util_pct"`
	EncoderUtilPct int     `json:"encoder_util_pct"`
	DecoderUtilPct int     `json:"decoder_util_pct"`
}

// Source produces a fresh Snapshot per call.
type Source interface {
	Collect() Snapshot
}

// Fallbacks used when a read is unsupported or fails.
const (
	UnknownDeviceName    = "unknown"
	UnknownDriverVersion = "N/A"
)

const (
	milliWattsToWatts = 1000
	bytesPerGB        = 1 << 30
	cudaVersionScale  = 1000
)
