package triage

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordsYAML []byte

type categoryEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type inferenceEntry struct {
	Category string   `yaml:"category"`
	Words    []string `yaml:"words"`
}

// keywordTable is the static trigger-phrase configuration. It is parsed once
// at process start and never mutated.
type keywordTable struct {
	Categories         []categoryEntry  `yaml:"categories"`
	UrgentKeywords     []string         `yaml:"urgent_keywords"`
	HighKeywords       []string         `yaml:"high_keywords"`
	FunctionalKeywords []string         `yaml:"functional_keywords"`
	LowKeywords        []string         `yaml:"low_keywords"`
	Inference          []inferenceEntry `yaml:"inference"`
	Symptoms           []string         `yaml:"symptoms"`
}

var table = mustLoadTable()

func mustLoadTable() keywordTable {
	var t keywordTable
	if err := yaml.Unmarshal(keywordsYAML, &t); err != nil {
		panic(fmt.Sprintf("triage: invalid embedded keyword table: %v", err))
	}
	if len(t.Categories) == 0 {
		panic("triage: embedded keyword table has no categories")
	}
	return t
}
