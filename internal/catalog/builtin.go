package catalog

const defaultColor = "#888"

var builtinColors = map[string]string{
	"wu-spr":      "#4CAF50",
	"ukk":         "#2196F3",
	"okk":         "#FF9800",
	"ukex":        "#E91E63",
	"okex":        "#9C27B0",
	"ukp":         "#00BCD4",
	"okp":         "#009688",
	"ukiso":       "#795548",
	"okiso":       "#607D8B",
	"bh1":         "#8BC34A",
	"bh2":         "#CDDC39",
	"kv1":         "#FFC107",
	"kv2":         "#FF5722",
	"praevention": "#3F51B5",
	"spielen":     "#555",
	"match":       "#c0392b",
	"frei":        "#777",
}

// Blocks without an entry here carry no exercise detail.
var builtinMappings = map[string]*ExerciseMapping{
	"ukk":   {BodyPart: LowerBody, Buckets: []string{"strengthA", "strengthB"}},
	"okk":   {BodyPart: UpperBody, Buckets: []string{"strengthA", "strengthB"}},
	"ukex":  {BodyPart: LowerBody, Buckets: []string{"explosiv"}},
	"okex":  {BodyPart: UpperBody, Buckets: []string{"explosiv"}},
	"ukiso": {BodyPart: LowerBody, Buckets: []string{"isometrics"}},
	"okiso": {BodyPart: UpperBody, Buckets: []string{"isometrics"}},
	"ukp":   {BodyPart: LowerBody, Buckets: []string{"strengthB"}},
	"okp":   {BodyPart: UpperBody, Buckets: []string{"strengthB"}},
}

func builtinBlocks() []BlockDefinition {
	def := func(id, code string, rpe, minutes int) BlockDefinition {
		return BlockDefinition{
			ID:              id,
			Code:            code,
			Name:            code,
			DefaultRPE:      rpe,
			DefaultDuration: Flat(minutes),
			Color:           builtinColors[id],
		}
	}
	return []BlockDefinition{
		def("wu-spr", "WU Spr", 5, 30),
		def("ukk", "UKK", 6, 20),
		def("okk", "OKK", 6, 20),
		def("ukex", "Ukex", 4, 10),
		def("okex", "Okex", 4, 10),
		def("ukp", "Ukp", 4, 15),
		def("okp", "Okp", 4, 15),
		def("ukiso", "UKiso", 5, 10),
		def("okiso", "OKiso", 4, 10),
		def("bh1", "BH1", 3, 10),
		def("bh2", "BH2", 3, 10),
		def("kv1", "KV1", 1, 10),
		def("kv2", "KV2", 2, 10),
		def("praevention", "Prävention", 2, 10),
	}
}
