package items

import "strings"

var blockEquivalents = map[string]string{
	"DIAMOND":      "DIAMOND_BLOCK",
	"EMERALD":      "EMERALD_BLOCK",
	"IRON_INGOT":   "IRON_BLOCK",
	"GOLD_INGOT":   "GOLD_BLOCK",
	"COPPER_INGOT": "COPPER_BLOCK",
	"REDSTONE":     "REDSTONE_BLOCK",
	"COAL":         "COAL_BLOCK",
	"LAPIS_LAZULI": "LAPIS_BLOCK",
	"STICK":        "OAK_PLANKS",
	"STRING":       "WHITE_WOOL",
	"LEATHER":      "BROWN_WOOL",
	"PAPER":        "WHITE_CONCRETE",
}

var itemEquivalents = map[string]string{
	"DIAMOND_BLOCK":  "DIAMOND",
	"EMERALD_BLOCK":  "EMERALD",
	"IRON_BLOCK":     "IRON_INGOT",
	"GOLD_BLOCK":     "GOLD_INGOT",
	"COPPER_BLOCK":   "COPPER_INGOT",
	"REDSTONE_BLOCK": "REDSTONE",
	"COAL_BLOCK":     "COAL",
	"LAPIS_BLOCK":    "LAPIS_LAZULI",
	"OAK_PLANKS":     "STICK",
	"BIRCH_PLANKS":   "STICK",
	"SPRUCE_PLANKS":  "STICK",
	"WHITE_WOOL":     "STRING",
	"GRAY_WOOL":      "STRING",
	"BLACK_WOOL":     "STRING",
	"STONE":          "FLINT",
	"COBBLESTONE":    "FLINT",
}

// BlockEquivalent returns a placeable material standing in for m. Blocks are
// returned unchanged and unmapped items fall back to stone.
func BlockEquivalent(m Material) Material {
	if m.Block {
		return m
	}
	if name, ok := blockEquivalents[strings.ToUpper(m.Name)]; ok {
		return MustMaterial(name)
	}
	return MustMaterial(MaterialStone)
}

// ItemEquivalent returns a non-placeable material standing in for m. Items are
// returned unchanged and unmapped blocks fall back to paper.
func ItemEquivalent(m Material) Material {
	if !m.Block {
		return m
	}
	if name, ok := itemEquivalents[strings.ToUpper(m.Name)]; ok {
		return MustMaterial(name)
	}
	return MustMaterial(MaterialPaper)
}

// TranslateColorCodes rewrites '&' formatting codes into the section-sign form
// the client renders. Unknown codes are left untouched.
func TranslateColorCodes(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '&' && i+1 < len(runes) && strings.ContainsRune("0123456789abcdefklmnorABCDEFKLMNOR", runes[i+1]) {
			b.WriteRune('§')
			b.WriteRune(runes[i+1])
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
