package tagging

// Field selects which search bag a rule is evaluated against.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldLabels      Field = "tags"
	FieldAll         Field = "all"
)

// Rule adds Tag when any of Keywords is a substring of the selected bag.
type Rule struct {
	Tag      string   `json:"tag"`
	Field    Field    `json:"field"`
	Keywords []string `json:"keywords"`
}

// RuleTable is the static rule configuration handed to a Classifier.
//
// Scene rules behave like generic rules but also add SceneParent on match.
type RuleTable struct {
	Rules       []Rule `json:"rules"`
	SceneRules  []Rule `json:"sceneRules"`
	SceneParent string `json:"sceneParent"`
}

// DefaultRuleTable returns a fresh copy of the first-pass rules for triggers,
// talking style, and roleplay scenes.
func DefaultRuleTable() RuleTable {
	return RuleTable{
		Rules: []Rule{
			// Talking style
			{Tag: Whisper, Field: FieldAll, Keywords: []string{"whisper", "耳语", "whispering"}},
			{Tag: SoftSpoken, Field: FieldAll, Keywords: []string{"soft spoken", "soft-spoken"}},
			{Tag: NoTalking, Field: FieldAll, Keywords: []string{"no talking", "silent", "不讲话", "no-talking"}},

			// Triggers
			{Tag: Tapping, Field: FieldAll, Keywords: []string{"tapping", "敲击", "knuckle tapping"}},
			{Tag: Scratching, Field: FieldAll, Keywords: []string{"scratching", "scratch", "抓挠"}},
			{Tag: Crinkling, Field: FieldAll, Keywords: []string{"crinkle", "crinkling", "包装袋", "塑料袋"}},
			{Tag: Brushing, Field: FieldAll, Keywords: []string{"brushing", "brush sounds", "耳刷", "hair brushing"}},
			{Tag: EarCleaning, Field: FieldAll, Keywords: []string{"ear cleaning", "ear massage", "耳搔", "耳朵清洁"}},
			{Tag: MouthSounds, Field: FieldAll, Keywords: []string{"mouth sounds", "口腔音", "tongue clicking"}},
			{Tag: WhiteNoise, Field: FieldAll, Keywords: []string{"white noise", "fan noise", "air conditioner", "雨声", "rain sounds"}},
			{Tag: Binaural, Field: FieldAll, Keywords: []string{"binaural", "3dio", "双耳"}},
			{Tag: VisualASMR, Field: FieldAll, Keywords: []string{"visual asmr", "light triggers", "hand movements", "tracing", "visual triggers"}},
			{Tag: Layered, Field: FieldAll, Keywords: []string{"layered asmr", "layered sounds", "soundscape", "multi-layer"}},

			// Generic roleplay flag
			{Tag: Roleplay, Field: FieldAll, Keywords: []string{"roleplay", "r.p", "场景", "girlfriend roleplay", "doctor roleplay"}},
		},
		SceneRules: []Rule{
			{Tag: RPHaircut, Field: FieldAll, Keywords: []string{"haircut", "hair cut", "barber", "理发"}},
			{Tag: RPCranial, Field: FieldAll, Keywords: []string{"cranial nerve exam", "cranial nerve", "神经检查"}},
			{Tag: RPDentist, Field: FieldAll, Keywords: []string{"dentist", "dental", "tooth exam", "牙医"}},
		},
		SceneParent: Roleplay,
	}
}
