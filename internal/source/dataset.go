package source

import (
	"encoding/json"
	"fmt"
	"os"
)

// DatasetEntry is one country record from the bulk open dataset
// (mledoze/countries schema). Consumed read-only at the start of a seed run.
type DatasetEntry struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	CCA2       string                 `json:"cca2"`
	CCA3       string                 `json:"cca3"`
	Capital    []string               `json:"capital"`
	Region     string                 `json:"region"`
	Subregion  string                 `json:"subregion"`
	Latlng     []float64              `json:"latlng"`
	Area       *float64               `json:"area"`
	Flag       string                 `json:"flag"`
	Currencies map[string]interface{} `json:"currencies"`
	Languages  map[string]interface{} `json:"languages"`
	Borders    []string               `json:"borders"`
	// Independent is a tri-state in the dataset; null means not independent.
	Independent *bool `json:"independent"`
	UNMember    bool  `json:"unMember"`
}

// LoadDataset reads the bulk countries file. A missing or unreadable file is
// a configuration error and fatal to the run.
func LoadDataset(path string) ([]DatasetEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file %s: %w", path, err)
	}
	var entries []DatasetEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file %s: %w", path, err)
	}
	return entries, nil
}
