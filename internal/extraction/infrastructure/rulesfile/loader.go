// Package rulesfile loads the declarative condition-code rule table from
// its YAML configuration file.
package rulesfile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	extraction "i90-ingest/internal/extraction/domain"
)

var (
	// ErrNoRules is returned when the file declares no rules at all.
	ErrNoRules = errors.New("rulesfile: no rules declared")
)

type ruleEntry struct {
	Sheet   int      `yaml:"sheet"`
	Markets []string `yaml:"markets"`
	Default bool     `yaml:"default"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

// Load reads and validates the rule file at path.
func Load(path string) (*extraction.RuleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rulesfile: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a RuleTable from raw YAML.
func Parse(raw []byte) (*extraction.RuleTable, error) {
	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("rulesfile: parse: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, ErrNoRules
	}

	table := extraction.NewRuleTable()
	for i, entry := range file.Rules {
		if entry.Sheet <= 0 {
			return nil, fmt.Errorf("rulesfile: rule %d: sheet id must be positive", i)
		}
		if !entry.Default && len(entry.Markets) == 0 {
			return nil, fmt.Errorf("rulesfile: rule %d: needs markets or default", i)
		}
		if len(entry.Include) == 0 && len(entry.Exclude) == 0 {
			return nil, fmt.Errorf("rulesfile: rule %d: needs include or exclude codes", i)
		}

		rule := extraction.ConditionRule{Include: entry.Include, Exclude: entry.Exclude}
		if entry.Default {
			table.AddDefault(entry.Sheet, rule)
		}
		for _, market := range entry.Markets {
			table.Add(entry.Sheet, market, rule)
		}
	}
	return table, nil
}
