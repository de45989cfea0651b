// Package perfeval scores a host's CPU/RAM/GPU into a single 0–100
// performance number, used by the assignment engine to rank workers.
//
// Detection is cross-platform and best-effort: failure to detect any
// single attribute must not fail the whole record. Each detector falls
// back to a documented, stable constant so a worker with undetectable
// hardware still gets a deterministic score (spec §4.1).
package perfeval

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fogmesh/fogllm/internal/domain"
)

// Fallback constants — these must never change across releases.
const (
	fallbackCPUFrequencyGHz = 2.5
	fallbackRAMGB           = 8.0
	fallbackGPUInfo         = "Unknown GPU"
)

// Evaluate produces a HardwareSpecs record for the local host.
func Evaluate() domain.HardwareSpecs {
	specs := domain.HardwareSpecs{
		CPUCores:        detectCPUCores(),
		CPUFrequencyGHz: detectCPUFrequencyGHz(),
		RAMGB:           detectRAMGB(),
		GPUInfo:         detectGPUInfo(),
		GPUMemoryGB:     detectGPUMemoryGB(),
		OSInfo:          detectOSInfo(),
	}
	specs.PerformanceScore = Score(specs)
	return specs
}

// Score computes the 0–100 performance score per spec §4.1:
//
//	cpu = min(20, cores·1.5) + min(20, freq_ghz·6)   (0–40)
//	ram = min(30, ram_gb·1.5)                         (0–30)
//	gpu = tieredLookup(gpu_string)                    (0–30)
//	total = clip(cpu+ram+gpu, 0, 100)
func Score(specs domain.HardwareSpecs) float64 {
	cpu := minF(20, float64(specs.CPUCores)*1.5) + minF(20, specs.CPUFrequencyGHz*6)
	ram := minF(30, specs.RAMGB*1.5)
	gpu := gpuScore(specs.GPUInfo)

	total := cpu + ram + gpu
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// gpuTier is one rung of the published GPU scoring ladder (spec §4.1).
// Matching is case-insensitive substring, first match wins, so more
// specific tiers must be listed before their more general fallbacks.
type gpuTier struct {
	score      float64
	substrings []string
}

// gpuLadder is the ordered, published GPU scoring ladder. An empty GPU
// string scores as the "unknown" tier (5), matching the boundary
// behavior in spec §8 ("A worker whose GPU string is empty produces
// score = cpu + ram + 5").
var gpuLadder = []gpuTier{
	// Datacenter accelerators.
	{30, []string{"h100", "a100", "h200", "mi300"}},
	// Current-gen consumer GPUs.
	{28, []string{"rtx 40", "rtx40", "v100", "a40", "m3"}},
	// Previous-gen.
	{25, []string{"rtx 30", "rtx30", "rtx 20", "rtx20", "gtx 16", "quadro", "m2"}},
	// Older discrete GPUs.
	{22, []string{"rtx"}},
	{20, []string{"arc", "rx 7", "rx 6", "m1"}},
	{18, []string{"gtx", "rx 5", "vega"}},
	// Integrated GPUs.
	{15, []string{"amd", "radeon"}},
	{12, []string{"iris xe", "iris"}},
	{8, []string{"intel"}},
}

const unknownGPUScore = 5

func gpuScore(gpuInfo string) float64 {
	lower := strings.ToLower(strings.TrimSpace(gpuInfo))
	if lower == "" {
		return unknownGPUScore
	}
	for _, tier := range gpuLadder {
		for _, sub := range tier.substrings {
			if strings.Contains(lower, sub) {
				return tier.score
			}
		}
	}
	return unknownGPUScore
}

// ─── Detectors ──────────────────────────────────────────────────────────────

func detectCPUCores() int32 {
	n := runtime.NumCPU()
	if n <= 0 {
		return 4
	}
	return int32(n)
}

func detectCPUFrequencyGHz() float64 {
	if runtime.GOOS == "linux" {
		if ghz, ok := linuxCPUFreqGHz(); ok {
			return ghz
		}
	}
	return fallbackCPUFrequencyGHz
}

func linuxCPUFreqGHz() (float64, bool) {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "cpu MHz") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		mhz, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		return mhz / 1000, true
	}
	return 0, false
}

func detectRAMGB() float64 {
	if runtime.GOOS == "linux" {
		if gb, ok := linuxRAMGB(); ok {
			return gb
		}
	}
	return fallbackRAMGB
}

func linuxRAMGB() (float64, bool) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		return kb / (1024 * 1024), true
	}
	return 0, false
}

func detectGPUInfo() string {
	const timeout = 5 * time.Second
	switch runtime.GOOS {
	case "windows":
		if out, err := runCommand(timeout, "wmic", "path", "win32_VideoController", "get", "name"); err == nil {
			if name, ok := firstNonEmptyLine(out, 1); ok {
				return name
			}
		}
	case "darwin":
		if out, err := runCommand(timeout, "system_profiler", "SPDisplaysDataType"); err == nil {
			for _, line := range strings.Split(out, "\n") {
				if idx := strings.Index(line, "Chipset Model:"); idx >= 0 {
					return strings.TrimSpace(line[idx+len("Chipset Model:"):])
				}
			}
		}
	case "linux":
		if out, err := runCommand(timeout, "lspci", "-nn"); err == nil {
			for _, line := range strings.Split(out, "\n") {
				if strings.Contains(line, "VGA compatible controller") || strings.Contains(line, "3D controller") {
					parts := strings.SplitN(line, ": ", 2)
					if len(parts) == 2 {
						name := parts[1]
						if b := strings.Index(name, " ["); b >= 0 {
							name = name[:b]
						}
						return name
					}
				}
			}
		}
		if out, err := runCommand(timeout, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader,nounits"); err == nil {
			if name, ok := firstNonEmptyLine(out, 0); ok {
				return name
			}
		}
	}
	return fallbackGPUInfo
}

func detectGPUMemoryGB() float64 {
	if runtime.GOOS != "linux" {
		return 0
	}
	out, err := runCommand(5*time.Second, "nvidia-smi", "--query-gpu=memory.total", "--format=csv,noheader,nounits")
	if err != nil {
		return 0
	}
	line, ok := firstNonEmptyLine(out, 0)
	if !ok {
		return 0
	}
	mb, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0
	}
	return mb / 1024
}

func detectOSInfo() string {
	if runtime.GOOS == "linux" {
		if name, ok := linuxPrettyName(); ok {
			return name
		}
	}
	return runtime.GOOS
}

func linuxPrettyName() (string, bool) {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			name := strings.TrimPrefix(line, "PRETTY_NAME=")
			return strings.Trim(name, `"`), true
		}
	}
	return "", false
}

func runCommand(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func firstNonEmptyLine(output string, skip int) (string, bool) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if skip >= len(lines) {
		return "", false
	}
	for _, line := range lines[skip:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}
