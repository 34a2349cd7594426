package pipeline

// Denylists and category sets used by the classification chains. All matching
// is against lowercased input.

// platedTitleTerms reject a jewelry listing outright from the title.
var platedTitleTerms = []string{
	"plated",
	"gold-plated",
	"silver-plated",
	"filled",
	"gold-filled",
	"vermeil",
	"gold tone",
	"goldtone",
}

// baseMetalsToReject are non-precious metals with no scrap value.
var baseMetalsToReject = []string{
	"brass",
	"bronze",
	"copper",
	"pewter",
	"alloy",
	"stainless",
	"titanium",
	"tungsten",
	"nickel",
	"zinc",
	"aluminum",
}

// titleBaseMetals is the subset checked against titles; zinc and aluminum
// show up legitimately in titles ("zinc-free clasp"), so the title gate is
// narrower than the aspect gate.
var titleBaseMetals = []string{
	"brass",
	"bronze",
	"copper",
	"pewter",
	"alloy",
	"stainless",
	"titanium",
	"tungsten",
	"nickel",
}

// descriptionPlatedPhrases are scanned against the HTML-stripped description.
// Phrases rather than words: descriptions legitimately mention "filled" in
// unrelated contexts.
var descriptionPlatedPhrases = []string{
	"gold plated",
	"rose gold plated",
	"silver plated",
	"plated brass",
	"brass plated",
	"plated metal",
	"electroplated",
	"gold filled",
	"gold-filled",
	"rose gold filled",
	"silver filled",
	"gold toned",
	"goldtone",
	"silvertone",
}

var descriptionBaseMetalPhrases = []string{
	"made of brass",
	"brass base",
	"base metal: brass",
	"brass with",
	"brass material",
	"solid brass",
}

// badMetalAspects are substrings that disqualify the metal/material aspects.
var badMetalAspects = []string{
	"plated",
	"filled",
	"vermeil",
	"electroplate",
	"overlay",
	"bonded",
	"clad",
	"rolled gold",
	"gold tone",
	"goldtone",
	"silver tone",
	"silvertone",
}

// metalAspectNames are the aspect-sheet fields inspected by the metal rules.
var metalAspectNames = []string{"metal", "base metal", "material"}

// realToneTerms exempt legitimate two-tone pieces from the fake-tone rule.
var realToneTerms = []string{"two-tone", "tri-tone", "bicolor", "tricolor"}

// costumeJewelryTerms mark costume and fashion brands with no melt value.
var costumeJewelryTerms = []string{
	"costume",
	"fashion jewelry",
	"avon",
	"monet",
	"trifari",
	"napier",
	"coro",
	"lisner",
	"sarah coventry",
	"weiss",
	"hobe",
	"paparazzi",
}

// toolsExclusions catch jewelry tools, supplies, and display gear that shares
// search keywords with actual jewelry.
var toolsExclusions = []string{
	"display",
	"mannequin",
	"jewelry box",
	"pouch",
	"cleaner",
	"cleaning",
	"polishing cloth",
	"tool",
	"tools",
	"pliers",
	"mandrel",
	"jewelry scale",
	"tester",
	"testing",
	"repair kit",
	"findings",
	"organizer",
	"jewelry stand",
	"holder",
	"tray",
}

// noStoneValues are aspect placeholders meaning the piece carries no stone.
var noStoneValues = map[string]struct{}{
	"none":           {},
	"no stone":       {},
	"no stones":      {},
	"n/a":            {},
	"na":             {},
	"not applicable": {},
	"no":             {},
	"without stone":  {},
	"without stones": {},
	"plain":          {},
	"-":              {},
	"--":             {},
}

// stoneAspectNames are the aspect fields inspected by the no-stone rule.
var stoneAspectNames = []string{"main stone", "gemstone", "stone"}

// stoneKeywords catch stone-bearing pieces from the title when the aspect
// sheet is silent.
var stoneKeywords = []string{
	"diamond",
	"sapphire",
	"ruby",
	"emerald",
	"opal",
	"pearl",
	"topaz",
	"amethyst",
	"garnet",
	"citrine",
	"peridot",
	"aquamarine",
	"tanzanite",
	"turquoise",
	"onyx",
	"jade",
	"moonstone",
	"morganite",
	"tourmaline",
	"zircon",
	"cz",
	"cubic zirconia",
	"moissanite",
	"birthstone",
	"gemstone",
}

// gemstoneBlacklist rejects simulants regardless of task settings. Terms of
// three characters or fewer are matched on word boundaries.
var gemstoneBlacklist = []string{
	"cz",
	"cubic zirconia",
	"moissanite",
	"simulant",
	"simulated",
	"imitation",
	"faux",
	"fake",
	"rhinestone",
	"paste",
	"doublet",
	"triplet",
	"strass",
}

// Marketplace category sets. Listing category ids arrive as strings.
var jewelryCategoryIDs = idSet(
	"281", "164331", "67681", "67680", "261990", "261988", "261989", "261993",
	"261994", "261995", "262003", "262004", "262008", "262011", "262013",
	"262014", "262016", "261975", "50637", "155101", "50610", "50647", "50692",
	"48579", "48585", "48583", "48581", "110633", "75576",
)

var jewelryBlacklistCategories = idSet(
	"182901", "262017", "13837", "31387", "261669", "10034", "166725", "16102",
	"38199", "1378", "261642",
)

var gemstoneCategoryIDs = idSet(
	"10207", "51089", "164694", "262026", "262027",
)

func idSet(ids ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
