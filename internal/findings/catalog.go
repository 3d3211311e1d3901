// Package findings defines the fixed catalog of features tracked by the
// verification pipeline: biometric parameters measured from the scan and
// anatomical structures checked for presence. The catalog is compile-time
// constant; every pipeline stage iterates the same ordered set so results
// line up across the image and report sides.
package findings

// Parameter describes a tracked biometric measurement.
type Parameter struct {
	Name      string   `json:"name"`      // canonical short name, e.g. "BPD"
	Unit      string   `json:"unit"`      // physical unit, always "mm"
	Tolerance float64  `json:"tolerance"` // acceptable AI/report difference in mm
	Reference float64  `json:"-"`         // mid-trimester reference value for the fallback path
	Synonyms  []string // report text labels, lowercase
}

// Structure describes a tracked anatomical structure.
type Structure struct {
	Category       string   `json:"category"`
	Name           string   `json:"name"`
	Keywords       []string // report text synonyms, lowercase
	BaseConfidence float64  // surrogate detector prior
}

// Parameters is the fixed set of biometric measurements, in report order.
var Parameters = []Parameter{
	{
		Name:      "BPD",
		Unit:      "mm",
		Tolerance: 2.0,
		Reference: 47.2,
		Synonyms:  []string{"bpd", "biparietal diameter"},
	},
	{
		Name:      "HC",
		Unit:      "mm",
		Tolerance: 5.0,
		Reference: 175.0,
		Synonyms:  []string{"hc", "head circumference"},
	},
	{
		Name:      "AC",
		Unit:      "mm",
		Tolerance: 5.0,
		Reference: 152.0,
		Synonyms:  []string{"ac", "abdominal circumference"},
	},
	{
		Name:      "FL",
		Unit:      "mm",
		Tolerance: 2.0,
		Reference: 31.5,
		Synonyms:  []string{"fl", "femur length", "femoral length"},
	},
}

// Structures is the fixed anatomical catalog, grouped by category.
// Base confidences are the surrogate detector's priors for a clean
// mid-trimester scan.
var Structures = []Structure{
	{Category: "brain", Name: "skull", Keywords: []string{"skull", "cranium"}, BaseConfidence: 0.92},
	{Category: "brain", Name: "ventricles", Keywords: []string{"ventricle", "ventricles", "lateral ventricles"}, BaseConfidence: 0.87},
	{Category: "brain", Name: "cerebellum", Keywords: []string{"cerebellum", "cerebellar"}, BaseConfidence: 0.85},
	{Category: "heart", Name: "four_chamber_view", Keywords: []string{"four-chamber", "four chamber", "cardiac chambers"}, BaseConfidence: 0.89},
	{Category: "organs", Name: "stomach", Keywords: []string{"stomach", "gastric bubble"}, BaseConfidence: 0.91},
	{Category: "organs", Name: "kidneys", Keywords: []string{"kidney", "kidneys", "renal"}, BaseConfidence: 0.88},
	{Category: "organs", Name: "bladder", Keywords: []string{"bladder"}, BaseConfidence: 0.90},
	{Category: "spine", Name: "vertebrae", Keywords: []string{"vertebra", "vertebrae", "vertebral", "spine", "spinal"}, BaseConfidence: 0.93},
	{Category: "spine", Name: "skin_coverage", Keywords: []string{"skin coverage", "skin line"}, BaseConfidence: 0.91},
	{Category: "limbs", Name: "arms", Keywords: []string{"arm", "arms", "upper limb", "upper limbs"}, BaseConfidence: 0.89},
	{Category: "limbs", Name: "legs", Keywords: []string{"leg", "legs", "lower limb", "lower limbs"}, BaseConfidence: 0.90},
	{Category: "limbs", Name: "hands", Keywords: []string{"hand", "hands"}, BaseConfidence: 0.85},
	{Category: "limbs", Name: "feet", Keywords: []string{"foot", "feet"}, BaseConfidence: 0.86},
	{Category: "face", Name: "profile", Keywords: []string{"profile", "facial profile"}, BaseConfidence: 0.88},
	{Category: "face", Name: "nasal_bone", Keywords: []string{"nasal bone"}, BaseConfidence: 0.84},
	{Category: "face", Name: "lips", Keywords: []string{"lip", "lips"}, BaseConfidence: 0.87},
	{Category: "maternal", Name: "placenta", Keywords: []string{"placenta", "placental"}, BaseConfidence: 0.90},
	{Category: "maternal", Name: "amniotic_fluid", Keywords: []string{"amniotic fluid", "liquor", "fluid volume"}, BaseConfidence: 0.92},
	{Category: "maternal", Name: "umbilical_cord", Keywords: []string{"umbilical cord", "three-vessel cord", "cord vessels"}, BaseConfidence: 0.88},
	// Incidental findings are tracked so an explicit negation in the report
	// ("no calcifications seen") can be reconciled against the detector.
	{Category: "incidental", Name: "calcifications", Keywords: []string{"calcification", "calcifications", "calcified focus"}, BaseConfidence: 0.20},
	{Category: "incidental", Name: "cysts", Keywords: []string{"cyst", "cysts", "cystic"}, BaseConfidence: 0.20},
}

// ParameterByName returns the parameter definition, or false when the name is
// not in the catalog.
func ParameterByName(name string) (Parameter, bool) {
	for _, p := range Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// StructureByName returns the structure definition, or false when the name is
// not in the catalog.
func StructureByName(name string) (Structure, bool) {
	for _, s := range Structures {
		if s.Name == name {
			return s, true
		}
	}
	return Structure{}, false
}
