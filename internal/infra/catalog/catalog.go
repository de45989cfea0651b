// Package catalog discovers and tracks the models a worker pool can run.
//
// Discovery is purely textual: workers advertise model identifiers, and
// the catalog infers parameter count, size, complexity rank, and vision
// capability from the identifier using an ordered family pattern table,
// grounded on the same heuristic a local model runtime's own naming
// convention encodes (e.g. "llama3.1:8b", "mixtral:8x7b").
package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fogmesh/fogllm/internal/domain"
)

// familyPattern is one entry of the ordered family table. extract turns a
// regex match into a parameter count; vision marks whether models of this
// family support image inputs.
type familyPattern struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string) int64
	vision  bool
}

func billions(n int64) int64 { return n * 1_000_000_000 }

func atoi(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// families is checked in order; the first match wins, so more specific
// patterns (mixture-of-experts, vision variants) are listed ahead of
// their plain counterparts.
var families = []familyPattern{
	{"llava", regexp.MustCompile(`llava(?:[:\-](\d+)b)?`), func(m []string) int64 {
		if m[1] == "" {
			return billions(7)
		}
		return billions(atoi(m[1]))
	}, true},
	{"bakllava", regexp.MustCompile(`bakllava`), func(m []string) int64 { return billions(7) }, true},
	{"mixtral", regexp.MustCompile(`mixtral:(\d+)x(\d+)b`), func(m []string) int64 {
		return billions(atoi(m[1]) * atoi(m[2]))
	}, false},
	{"llama3.2-vl", regexp.MustCompile(`llama3\.2-vision:(\d+)b`), func(m []string) int64 {
		return billions(atoi(m[1]))
	}, true},
	{"llama3.2", regexp.MustCompile(`llama3\.2:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"llama3.1", regexp.MustCompile(`llama3\.1:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"llama3", regexp.MustCompile(`llama3:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"llama2", regexp.MustCompile(`llama2:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"codellama", regexp.MustCompile(`codellama:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"mistral", regexp.MustCompile(`mistral:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"gemma3-vl", regexp.MustCompile(`gemma3:(\d+)b`), func(m []string) int64 {
		n := atoi(m[1])
		return billions(n)
	}, true}, // gemma3 >= 4B is vision-capable per §4.9; filtered below
	{"gemma2", regexp.MustCompile(`gemma2:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"gemma", regexp.MustCompile(`gemma:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"phi3", regexp.MustCompile(`phi3:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"phi", regexp.MustCompile(`phi:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"qwen2.5", regexp.MustCompile(`qwen2\.5:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"qwen2", regexp.MustCompile(`qwen2:(\d+)b`), func(m []string) int64 { return billions(atoi(m[1])) }, false},
	{"tinyllama", regexp.MustCompile(`tinyllama`), func(m []string) int64 { return billions(1) }, false},
}

// genericSizeToken is the fallback extractor: the first "{N}b" token in
// the identifier, case-insensitive.
var genericSizeToken = regexp.MustCompile(`(\d+)b`)

// gemma3VisionThreshold is the parameter floor at which a gemma3 model is
// considered vision-capable; below it gemma3 is text-only.
const gemma3VisionThreshold = 4_000_000_000

// Parse extracts a ModelInfo from a raw model identifier. ok is false
// when no pattern and no generic token match — callers should log a
// warning and drop the identifier.
func Parse(identifier string) (domain.ModelInfo, bool) {
	lower := strings.ToLower(identifier)

	for _, fam := range families {
		m := fam.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		params := fam.extract(m)
		vision := fam.vision
		if fam.name == "gemma3-vl" {
			vision = params >= gemma3VisionThreshold
		}
		return domain.NewModelInfo(identifier, params, vision), true
	}

	if m := genericSizeToken.FindStringSubmatch(lower); m != nil {
		params := billions(atoi(m[1]))
		return domain.NewModelInfo(identifier, params, false), true
	}

	return domain.ModelInfo{}, false
}

// defaultModels seeds every new catalog, mirroring the original
// manager's "use default models" fallback. The seeded entries stay in
// the catalog alongside whatever workers advertise later.
func defaultModels() []domain.ModelInfo {
	return []domain.ModelInfo{
		domain.NewModelInfo("llama3.2:1b", billions(1), false),
		domain.NewModelInfo("llama3.2:3b", billions(3), false),
		domain.NewModelInfo("llama3.1:8b", billions(8), false),
	}
}

// Catalog is the totally-ordered set of models known to the system. It is
// safe for concurrent use. Models are held unordered; every read that
// returns a list sorts a fresh snapshot under the lock, so the order
// always reflects the latest mutation.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]domain.ModelInfo
}

func New() *Catalog {
	c := &Catalog{models: make(map[string]domain.ModelInfo)}
	for _, m := range defaultModels() {
		c.models[m.Name] = m
	}
	return c
}

// Discover merges a worker-advertised list of identifiers into the
// catalog. Identifiers that fail to parse are skipped; the caller is
// expected to log those. Returns the identifiers that were actually
// added or updated.
func (c *Catalog) Discover(identifiers []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var applied []string
	for _, id := range identifiers {
		info, ok := Parse(id)
		if !ok {
			continue
		}
		c.models[info.Name] = info
		applied = append(applied, info.Name)
	}
	return applied
}

// AddCustom inserts a model with an explicitly supplied parameter count,
// bypassing pattern inference entirely.
func (c *Catalog) AddCustom(name string, parameters int64, supportsVision bool) domain.ModelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := domain.NewModelInfo(name, parameters, supportsVision)
	c.models[name] = info
	return info
}

// Lookup returns the descriptor for name, if known.
func (c *Catalog) Lookup(name string) (domain.ModelInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.models[name]
	return info, ok
}

// Len reports how many distinct models the catalog currently holds.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// SortedByParameters returns every model, ascending by parameter count,
// ties broken by name ascending — the ordering used for round-robin
// residual assignment.
func (c *Catalog) SortedByParameters() []domain.ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.snapshotLocked()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parameters != out[j].Parameters {
			return out[i].Parameters < out[j].Parameters
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SortedByComplexityDesc returns every model, descending by complexity
// rank, ties broken by parameter count descending then name ascending —
// the ordering used to hand the heaviest model to the strongest group
// (spec §4.3 step 4).
func (c *Catalog) SortedByComplexityDesc() []domain.ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.snapshotLocked()
	sort.Slice(out, func(i, j int) bool {
		if out[i].ComplexityScore != out[j].ComplexityScore {
			return out[i].ComplexityScore > out[j].ComplexityScore
		}
		if out[i].Parameters != out[j].Parameters {
			return out[i].Parameters > out[j].Parameters
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (c *Catalog) snapshotLocked() []domain.ModelInfo {
	out := make([]domain.ModelInfo, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	return out
}

// Stats summarizes the catalog for the admin/status surface.
type Stats struct {
	TotalModels int               `json:"total_models"`
	Models      []domain.ModelInfo `json:"models"`
}

func (c *Catalog) Stats() Stats {
	models := c.SortedByParameters()
	return Stats{TotalModels: len(models), Models: models}
}
