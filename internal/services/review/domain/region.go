package domain

import (
	"strings"
	"unicode"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Region is a coarse applicant region derived from a nationality or country answer.
type Region string

const (
	RegionLATAM    Region = "LATAM"
	RegionNonLATAM Region = "NON_LATAM"
	RegionUnknown  Region = "UNKNOWN"
)

// regionResponseKeys are consulted in order; the first non-blank answer wins.
var regionResponseKeys = []string{"nationality", "country"}

// RegionResponseKeys returns the question keys used to derive a region.
func RegionResponseKeys() []string {
	out := make([]string, len(regionResponseKeys))
	copy(out, regionResponseKeys)
	return out
}

// latamNames holds accent-free lowercase country names, demonyms and ISO
// alpha-2/alpha-3 codes for Latin America.
var latamNames = buildNameSet(
	"argentina", "argentine", "argentinian", "argentino", "ar", "arg",
	"bolivia", "bolivian", "boliviano", "bo", "bol",
	"brazil", "brasil", "brazilian", "brasileiro", "brasileira", "br", "bra",
	"chile", "chilean", "chileno", "chilena", "cl", "chl",
	"colombia", "colombian", "colombiano", "colombiana", "co", "col",
	"costa rica", "costa rican", "costarricense", "cr", "cri",
	"cuba", "cuban", "cubano", "cubana", "cu", "cub",
	"dominican republic", "republica dominicana", "dominican", "dominicano", "dominicana", "do", "dom",
	"ecuador", "ecuadorian", "ecuatoriano", "ecuatoriana", "ec", "ecu",
	"el salvador", "salvadoran", "salvadoreno", "salvadorena", "sv", "slv",
	"guatemala", "guatemalan", "guatemalteco", "guatemalteca", "gt", "gtm",
	"haiti", "haitian", "ht", "hti",
	"honduras", "honduran", "hondureno", "hondurena", "hn", "hnd",
	"mexico", "mexican", "mexicano", "mexicana", "mx", "mex",
	"nicaragua", "nicaraguan", "nicaraguense", "ni", "nic",
	"panama", "panamanian", "panameno", "panamena", "pa", "pan",
	"paraguay", "paraguayan", "paraguayo", "paraguaya", "py", "pry",
	"peru", "peruvian", "peruano", "peruana", "pe", "per",
	"puerto rico", "puerto rican", "puertorriqueno", "puertorriquena", "pr", "pri",
	"uruguay", "uruguayan", "uruguayo", "uruguaya", "uy", "ury",
	"venezuela", "venezuelan", "venezolano", "venezolana", "ve", "ven",
)

func buildNameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// ClassifyRegion maps a free-text nationality or country answer to a region.
// Blank answers are UNKNOWN; unrecognized answers are NON_LATAM.
func ClassifyRegion(answer string) Region {
	key := normalizeName(answer)
	if key == "" {
		return RegionUnknown
	}
	if _, ok := latamNames[key]; ok {
		return RegionLATAM
	}
	return RegionNonLATAM
}

// RegionFromResponses classifies the first non-blank region answer.
func RegionFromResponses(responses map[string]string) Region {
	for _, key := range regionResponseKeys {
		if answer := strings.TrimSpace(responses[key]); answer != "" {
			return ClassifyRegion(answer)
		}
	}
	return RegionUnknown
}

// ParseRegionFilter parses a consensus region filter. Blank means no filter.
func ParseRegionFilter(raw string) (Region, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.ReplaceAll(value, "-", "_")
	switch Region(value) {
	case "":
		return "", nil
	case RegionLATAM, RegionNonLATAM:
		return Region(value), nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeConsensusInvalidRegion, "invalid region filter", map[string]string{"Region": raw})
	}
}

func normalizeName(value string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, value)
	if err != nil {
		folded = value
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}
