package source

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"

	"salonscout/internal/model"
)

// Name-pattern grids for placeholder entries, mirroring the common naming
// conventions of the vertical.
var (
	generatedPatterns = []string{
		"%s美甲工作室", "%s美睫工作室", "%s指甲彩繪", "%s睫毛嫁接",
		"%s美甲店", "%s美睫店", "%sNail Salon", "%s美甲美睫",
	}
	generatedPrefixes = []string{
		"時尚", "專業", "精緻", "優雅", "甜心", "星光", "典雅", "美學",
	}
	generatedStreets = []string{
		"中山路", "中正路", "民族路", "建國路", "復興路", "和平路", "自由路", "民權路",
	}
)

// perAnchorGenerated is how many placeholder entries one anchor yields.
const perAnchorGenerated = 8

// GeneratedAdapter tops the set up with plausible placeholder entries when
// live sources run dry. Entries are deterministic per anchor so repeated
// runs produce the same names and dedup cleanly, and they are clearly
// tagged with the generated origin so downstream consumers can drop them.
type GeneratedAdapter struct {
	city   string
	logger *slog.Logger
}

// NewGeneratedAdapter creates a generator for the given city token
// (e.g. "高雄市"), used to assemble placeholder addresses.
func NewGeneratedAdapter(city string, logger *slog.Logger) *GeneratedAdapter {
	return &GeneratedAdapter{city: city, logger: logger}
}

func (a *GeneratedAdapter) Name() string         { return "generated" }
func (a *GeneratedAdapter) Origin() model.Origin { return model.OriginGenerated }

// Harvest generates the placeholder grid for one anchor. The keyword is
// ignored; the grid depends only on the anchor, so offering it under every
// keyword just produces duplicates the index rejects.
func (a *GeneratedAdapter) Harvest(_ context.Context, _ string, anchor string) ([]model.RawRecord, error) {
	seed := anchorSeed(anchor)

	records := make([]model.RawRecord, 0, perAnchorGenerated)
	for i := 0; i < perAnchorGenerated; i++ {
		prefix := generatedPrefixes[(seed+uint32(i))%uint32(len(generatedPrefixes))]
		pattern := generatedPatterns[i%len(generatedPatterns)]
		name := fmt.Sprintf(pattern, prefix)

		street := generatedStreets[(seed+uint32(i)*7)%uint32(len(generatedStreets))]
		number := 100 + int((seed+uint32(i)*37)%900)
		address := fmt.Sprintf("%s%s區%s%d號", a.city, anchor, street, number)

		phone := fmt.Sprintf("07-%03d%04d", 200+int((seed+uint32(i)*13)%700), 1000+int((seed+uint32(i)*101)%9000))

		records = append(records, rawRecord(name, address, phone, ""))
	}

	a.logger.Debug("placeholder grid generated", "anchor", anchor, "count", len(records))
	return records, nil
}

func anchorSeed(anchor string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(anchor))
	return h.Sum32()
}
