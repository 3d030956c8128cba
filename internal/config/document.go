package config

// Document mirrors the configuration file layout. The runtime reads the file
// through Section; these types exist to describe it to external tooling.
type Document struct {
	Items   map[string]ItemDocument   `json:"items,omitempty" jsonschema:"description=Custom item templates keyed by id"`
	Bundles map[string]BundleDocument `json:"bundles,omitempty" jsonschema:"description=Pack/unpack recipe pairs keyed by bundle id"`
	Recipes map[string]RecipeDocument `json:"recipes,omitempty" jsonschema:"description=Authored crafting recipes keyed by recipe id"`
}

type ItemDocument struct {
	Material        string                     `json:"material,omitempty" jsonschema:"description=Base material name,default=PAPER"`
	Name            string                     `json:"name,omitempty" jsonschema:"description=Display name; & color codes allowed"`
	Lore            []string                   `json:"lore,omitempty"`
	CustomModelData *int                       `json:"custom-model-data,omitempty" jsonschema:"minimum=0"`
	Abilities       map[string]AbilityDocument `json:"abilities,omitempty" jsonschema:"description=Abilities run in document order"`
}

type AbilityDocument struct {
	Type              string   `json:"type" jsonschema:"enum=flashbang,enum=heal,enum=teleport"`
	Cooldown          *float64 `json:"cooldown,omitempty" jsonschema:"description=Seconds between uses; 0 disables the cooldown"`
	Triggers          []string `json:"triggers,omitempty" jsonschema:"description=Trigger kinds the ability answers; interact and ignite when omitted"`
	Range             *float64 `json:"range,omitempty" jsonschema:"description=Flash radius in blocks,default=10"`
	Duration          *float64 `json:"duration,omitempty" jsonschema:"description=Flash blindness seconds,default=5"`
	BlindnessDuration *float64 `json:"blindness-duration,omitempty" jsonschema:"description=Alias of duration"`
	Heal              *float64 `json:"heal,omitempty" jsonschema:"description=Health restored,default=4"`
	Distance          *float64 `json:"distance,omitempty" jsonschema:"description=Teleport distance in blocks,default=5"`
}

type BundleDocument struct {
	Item  string `json:"item" jsonschema:"description=Unit item: a material name or custom:<id>"`
	Count *int   `json:"count,omitempty" jsonschema:"minimum=1,default=9"`
	BoxID string `json:"box-id" jsonschema:"description=Template id of the container item"`
}

type RecipeDocument struct {
	Type        string   `json:"type" jsonschema:"enum=shaped,enum=shapeless"`
	Shape       []string `json:"shape,omitempty" jsonschema:"minItems=1,maxItems=3"`
	Ingredients any      `json:"ingredients" jsonschema:"description=Symbol map for shaped recipes or a list for shapeless ones"`
	Result      string   `json:"result" jsonschema:"description=A material name or custom:<id>"`
	Amount      *int     `json:"amount,omitempty" jsonschema:"minimum=1,maximum=64,default=1"`
}
