package items

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Material describes a base-game item kind. Block marks materials that can be
// placed into the world and Solid marks blocks an actor can stand on.
type Material struct {
	Name  string `json:"name"`
	Block bool   `json:"block"`
	Solid bool   `json:"solid"`
}

const (
	MaterialAir           = "AIR"
	MaterialPaper         = "PAPER"
	MaterialStone         = "STONE"
	MaterialFlintAndSteel = "FLINT_AND_STEEL"
)

var materialTable = buildMaterialTable()

func buildMaterialTable() map[string]Material {
	defs := []Material{
		{Name: MaterialAir},
		{Name: MaterialPaper},
		{Name: MaterialFlintAndSteel},
		{Name: "APPLE"},
		{Name: "BLAZE_ROD"},
		{Name: "BOOK"},
		{Name: "COAL"},
		{Name: "COPPER_INGOT"},
		{Name: "DIAMOND"},
		{Name: "EMERALD"},
		{Name: "ENDER_PEARL"},
		{Name: "FIREWORK_STAR"},
		{Name: "FLINT"},
		{Name: "GOLD_INGOT"},
		{Name: "GOLDEN_APPLE"},
		{Name: "GUNPOWDER"},
		{Name: "IRON_INGOT"},
		{Name: "LAPIS_LAZULI"},
		{Name: "LEATHER"},
		{Name: "NETHER_STAR"},
		{Name: "REDSTONE"},
		{Name: "STICK"},
		{Name: "STRING"},
		{Name: "BARREL", Block: true, Solid: true},
		{Name: "BIRCH_PLANKS", Block: true, Solid: true},
		{Name: "BLACK_WOOL", Block: true, Solid: true},
		{Name: "BROWN_WOOL", Block: true, Solid: true},
		{Name: "CHEST", Block: true, Solid: true},
		{Name: "COAL_BLOCK", Block: true, Solid: true},
		{Name: "COBBLESTONE", Block: true, Solid: true},
		{Name: "COPPER_BLOCK", Block: true, Solid: true},
		{Name: "DIAMOND_BLOCK", Block: true, Solid: true},
		{Name: "DIRT", Block: true, Solid: true},
		{Name: "EMERALD_BLOCK", Block: true, Solid: true},
		{Name: "GLASS", Block: true, Solid: true},
		{Name: "GOLD_BLOCK", Block: true, Solid: true},
		{Name: "GRASS_BLOCK", Block: true, Solid: true},
		{Name: "GRAY_WOOL", Block: true, Solid: true},
		{Name: "IRON_BLOCK", Block: true, Solid: true},
		{Name: "LAPIS_BLOCK", Block: true, Solid: true},
		{Name: "OAK_PLANKS", Block: true, Solid: true},
		{Name: "REDSTONE_BLOCK", Block: true, Solid: true},
		{Name: "SPRUCE_PLANKS", Block: true, Solid: true},
		{Name: MaterialStone, Block: true, Solid: true},
		{Name: "TNT", Block: true, Solid: true},
		{Name: "WHITE_CONCRETE", Block: true, Solid: true},
		{Name: "WHITE_WOOL", Block: true, Solid: true},
		{Name: "LAVA", Block: true},
		{Name: "TORCH", Block: true},
		{Name: "WATER", Block: true},
	}

	table := make(map[string]Material, len(defs))
	for _, def := range defs {
		if _, dup := table[def.Name]; dup {
			panic("items: duplicate material " + def.Name)
		}
		table[def.Name] = def
	}
	return table
}

// MatchMaterial resolves a material by name. Matching ignores case, an optional
// "minecraft:" prefix, and treats spaces and dashes as underscores.
func MatchMaterial(name string) (Material, bool) {
	normalized := NormalizeMaterialName(name)
	if normalized == "" {
		return Material{}, false
	}
	mat, ok := materialTable[normalized]
	return mat, ok
}

// NormalizeMaterialName uppercases name, drops a minecraft: prefix and turns
// spaces and dashes into underscores.
func NormalizeMaterialName(name string) string {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.TrimPrefix(normalized, "MINECRAFT:")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
}

// MustMaterial returns the named material and panics when it is unknown.
func MustMaterial(name string) Material {
	mat, ok := MatchMaterial(name)
	if !ok {
		panic("items: unknown material " + name)
	}
	return mat
}

// Materials lists every known material sorted by name.
func Materials() []Material {
	out := make([]Material, 0, len(materialTable))
	for _, mat := range materialTable {
		out = append(out, mat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsAir reports whether the material represents an empty slot.
func (m Material) IsAir() bool {
	return m.Name == "" || m.Name == MaterialAir
}

// DisplayName renders the material name the way the client shows an unnamed
// item, e.g. DIAMOND_BLOCK becomes "Diamond Block".
func (m Material) DisplayName() string {
	words := strings.ReplaceAll(strings.ToLower(m.Name), "_", " ")
	return cases.Title(language.English).String(words)
}
