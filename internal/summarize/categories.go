package summarize

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// merchantCategories maps known merchant keywords to categories. Matching
// is case-insensitive substring over the display name.
var merchantCategories = map[string]string{
	"netflix":         "Entertainment",
	"spotify":         "Entertainment",
	"hulu":            "Entertainment",
	"disney":          "Entertainment",
	"hbo":             "Entertainment",
	"youtube premium": "Entertainment",
	"audible":         "Entertainment",
	"playstation":     "Entertainment",
	"xbox":            "Entertainment",

	"adobe":     "Software",
	"microsoft": "Software",
	"dropbox":   "Software",
	"icloud":    "Software",
	"github":    "Software",
	"notion":    "Software",
	"slack":     "Software",

	"planet fitness": "Health & Fitness",
	"peloton":        "Health & Fitness",
	"gym":            "Health & Fitness",
	"fitness":        "Health & Fitness",

	"verizon":  "Utilities",
	"at&t":     "Utilities",
	"t-mobile": "Utilities",
	"comcast":  "Utilities",
	"electric": "Utilities",
	"water":    "Utilities",
	"internet": "Utilities",
	"broadband": "Utilities",

	"geico":     "Insurance",
	"allstate":  "Insurance",
	"insurance": "Insurance",

	"rent":     "Housing",
	"mortgage": "Housing",

	"nytimes": "News",
	"medium":  "News",

	"amazon prime": "Shopping",
	"costco":       "Shopping",
}

// KeywordClassifier is the rule-based category classifier used when no
// external categorization collaborator is wired in. Extra mappings can be
// layered on from a YAML file.
type KeywordClassifier struct {
	keywords map[string]string
}

// NewKeywordClassifier creates a classifier seeded with the built-in
// merchant keyword table.
func NewKeywordClassifier() *KeywordClassifier {
	keywords := make(map[string]string, len(merchantCategories))
	for k, v := range merchantCategories {
		keywords[k] = v
	}
	return &KeywordClassifier{keywords: keywords}
}

// categoryMappings is the YAML shape for overrides:
//
//	categories:
//	  Entertainment:
//	    - netflix
//	    - spotify
type categoryMappings struct {
	Categories map[string][]string `yaml:"categories"`
}

// LoadMappings merges keyword mappings from a YAML document. Later entries
// win over the built-ins.
func (k *KeywordClassifier) LoadMappings(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("LoadMappings: read: %w", err)
	}
	var mappings categoryMappings
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return fmt.Errorf("LoadMappings: parse YAML: %w", err)
	}
	for category, words := range mappings.Categories {
		for _, w := range words {
			k.keywords[strings.ToLower(strings.TrimSpace(w))] = category
		}
	}
	return nil
}

// Categorize implements CategoryClassifier.
func (k *KeywordClassifier) Categorize(merchantName string) (string, bool) {
	name := strings.ToLower(merchantName)
	// Longest keyword wins so "youtube premium" beats "premium".
	best := ""
	bestLen := 0
	for keyword, category := range k.keywords {
		if strings.Contains(name, keyword) && len(keyword) > bestLen {
			best = category
			bestLen = len(keyword)
		}
	}
	return best, best != ""
}
