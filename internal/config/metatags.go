package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadMetatags reads the tag code to category name map, e.g.
// {"HP": "History & Physical", "LAB": "Laboratory"}.
func LoadMetatags(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metatag map %s: %w", path, err)
	}

	var tags map[string]string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("parse metatag map %s: %w", path, err)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("metatag map %s defines no tags", path)
	}
	return tags, nil
}
