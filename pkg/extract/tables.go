package extract

// Domain lookup tables shared by the extractors and the scorers. All matching
// is done against lowercased input; entries that carry display casing (stone
// types, cert labs, watch brands) are lowercased at the match site.

// GemstoneTypes enumerates recognized stone species in canonical display form.
var GemstoneTypes = []string{
	"Sapphire",
	"Ruby",
	"Emerald",
	"Diamond",
	"Aquamarine",
	"Topaz",
	"Amethyst",
	"Citrine",
	"Garnet",
	"Peridot",
	"Tanzanite",
	"Tourmaline",
	"Opal",
	"Morganite",
	"Alexandrite",
	"Spinel",
	"Zircon",
	"Tsavorite",
	"Apatite",
	"Iolite",
	"Kunzite",
	"Beryl",
}

// StoneShapes enumerates recognized cut shapes in canonical display form.
// "Emerald" doubles as a stone type; the title extractor requires an adjacent
// cut/shape token before treating it as a shape.
var StoneShapes = []string{
	"Round",
	"Oval",
	"Cushion",
	"Emerald",
	"Princess",
	"Pear",
	"Marquise",
	"Radiant",
	"Asscher",
	"Heart",
	"Trillion",
	"Baguette",
	"Square",
	"Octagon",
	"Cabochon",
}

// DiamondClarities is the GIA clarity ladder, best first.
var DiamondClarities = []string{
	"FL", "IF", "VVS1", "VVS2", "VS1", "VS2", "SI1", "SI2", "I1", "I2", "I3",
}

// Certification lab tiers. Premium labs carry the highest deal-score bonus.
var (
	PremiumCertLabs  = []string{"GIA", "AGS", "SSEF", "Gubelin", "AGL"}
	StandardCertLabs = []string{"IGI", "GCAL", "GRS", "GIT", "Lotus"}
	BudgetCertLabs   = []string{"EGL", "GLA", "IGL", "GSL"}
)

// LabCreatedTerms mark a stone as non-natural. Used both for natural/lab
// detection and for the gemstone pipeline's lab-created gate.
var LabCreatedTerms = []string{
	"lab created",
	"lab-created",
	"lab grown",
	"lab-grown",
	"laboratory created",
	"laboratory grown",
	"man made",
	"man-made",
	"manmade",
	"synthetic",
	"cultured",
	"chatham",
	"cvd",
	"hpht",
}

// LabRiskTerms are the title words that raise the risk score once per listing.
// Short entries are matched on word boundaries to avoid hits inside words
// ("collaboration" must not match "lab").
var LabRiskTerms = []string{"lab", "synthetic", "created", "cvd", "hpht", "simulant"}

// HeavyTreatmentTerms describe treatments that materially reduce stone value.
var HeavyTreatmentTerms = []string{
	"glass filled",
	"glass-filled",
	"fracture filled",
	"fracture-filled",
	"composite",
	"diffusion",
	"diffused",
	"irradiated",
	"dyed",
	"coated",
	"beryllium",
}

// Treatment phrases recognized by the Treatment extractor.
var (
	NotEnhancedTerms = []string{"not enhanced", "no treatment", "untreated", "none", "unheated"}
	HeatOnlyTerms    = []string{"heated", "heat only", "heat treated", "heat treatment"}
)

// VagueTerms are provenance red flags that raise the risk score once per listing.
var VagueTerms = []string{
	"estate",
	"unmarked",
	"untested",
	"as-is",
	"as is",
	"mystery",
	"unknown stone",
	"grandma",
	"grandmother",
	"attic find",
	"barn find",
}

// StoneColors are recognized colors for non-diamond stones.
var StoneColors = []string{
	"blue", "pink", "red", "green", "yellow", "purple", "violet", "orange",
	"white", "black", "brown", "teal", "colorless", "bi-color", "bicolor",
	"padparadscha",
}

// dialColors are recognized watch dial colors for title extraction.
var dialColors = []string{
	"black", "white", "blue", "silver", "gold", "green", "red", "grey", "gray",
	"brown", "champagne", "salmon", "cream", "ivory", "orange", "purple",
	"yellow", "pink",
}

// WatchBrands enumerates recognized watch brands in canonical display form.
// Longest containment match wins so "Grand Seiko" beats "Seiko".
var WatchBrands = []string{
	"Rolex",
	"Omega",
	"Seiko",
	"Grand Seiko",
	"Citizen",
	"Casio",
	"TAG Heuer",
	"Breitling",
	"Tudor",
	"Cartier",
	"Longines",
	"Tissot",
	"Hamilton",
	"Bulova",
	"Timex",
	"Orient",
	"Patek Philippe",
	"Audemars Piguet",
	"IWC",
	"Panerai",
	"Zenith",
	"Oris",
	"Rado",
	"Movado",
	"Vacheron Constantin",
	"Jaeger-LeCoultre",
	"Glashutte",
	"Sinn",
	"Doxa",
	"Accutron",
}

// WatchMaterials are recognized case/band materials in canonical display form.
// Ordered longest-ish first so "Stainless Steel" is preferred over "Steel".
var WatchMaterials = []string{
	"Stainless Steel",
	"Steel",
	"Rose Gold",
	"Gold",
	"Two-Tone",
	"Titanium",
	"Ceramic",
	"Bronze",
	"Carbon",
	"Leather",
	"Rubber",
	"Silicone",
	"Nylon",
	"Canvas",
	"Mesh",
}

// MovementPatterns maps canonical movement names to the terms that identify
// them. Ordered so specific families are tried before the generic
// "Mechanical" catch-all.
var MovementPatterns = []struct {
	Name  string
	Terms []string
}{
	{Name: "Automatic", Terms: []string{"automatic", "self-winding", "self winding"}},
	{Name: "Manual", Terms: []string{"manual", "hand-wind", "hand wind", "handwound", "hand-wound"}},
	{Name: "Quartz", Terms: []string{"quartz", "battery"}},
	{Name: "Solar", Terms: []string{"solar", "eco-drive", "eco drive"}},
	{Name: "Kinetic", Terms: []string{"kinetic"}},
	{Name: "Spring Drive", Terms: []string{"spring drive"}},
	{Name: "Mechanical", Terms: []string{"mechanical"}},
}

// metalKeywords expands a task's configured metal into the variant keywords
// searched individually. Keys are lowercased for lookup.
var metalKeywords = map[string][]string{
	"yellow gold": {
		"Yellow Gold", "18K Gold", "14K Gold", "10K Gold", "24K Gold",
		"18kt Gold", "14kt Gold", "10kt Gold",
	},
	"white gold": {
		"White Gold", "18K White Gold", "14K White Gold", "10K White Gold",
		"18kt White Gold", "14kt White Gold",
	},
	"rose gold": {
		"Rose Gold", "18K Rose Gold", "14K Rose Gold", "10K Rose Gold",
		"14kt Rose Gold",
	},
	"gold": {
		"Gold", "24K Gold", "22K Gold", "18K Gold", "14K Gold", "10K Gold",
		"9K Gold",
	},
	"silver":          {"Silver", "Sterling Silver", "925 Silver", "Fine Silver"},
	"sterling silver": {"Sterling Silver", "925 Silver", "925 Sterling"},
	"platinum":        {"Platinum", "950 Platinum", "Plat"},
	"palladium":       {"Palladium", "950 Palladium"},
}

// weightAspectNames is the whitelist of aspect sheet fields that hold a gram
// weight. Fields naming carat weight are deliberately absent: the marketplace
// reuses "total carat weight" for purity counts, not grams.
var weightAspectNames = []string{
	"weight",
	"total weight",
	"gram weight",
	"grams",
	"metal weight",
	"metal weight (grams)",
	"metal weight(grams)",
	"gold weight",
	"silver weight",
	"platinum weight",
	"net weight",
	"item weight",
	"total gram weight",
	"total metal weight",
	"weight (grams)",
	"total weight (grams)",
	"weight in grams",
	"approximate weight",
}
