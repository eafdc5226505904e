// Package config loads externally supplied analysis data: the stopword
// list and default analysis knobs. Files are YAML.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// stopwordFile is the on-disk shape of the stopword list.
type stopwordFile struct {
	Words []string `yaml:"words"`
}

// LoadStopwords reads a stopword list from a YAML file. A missing or
// corrupt file degrades to an empty list; stopwords are an optional
// refinement, never a reason to refuse analysis.
func LoadStopwords(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var f stopwordFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil
	}
	return f.Words
}

// Defaults holds analysis knobs applied when a request leaves them unset.
type Defaults struct {
	TopN             int      `yaml:"top_n"`
	MinWordLength    int      `yaml:"min_word_length"`
	MaxWordLength    int      `yaml:"max_word_length"`
	MinMessageLength int      `yaml:"min_message_length"`
	MaxMessageLength int      `yaml:"max_message_length"`
	MinWordCount     int      `yaml:"min_word_count"`
	MinMessageCount  int      `yaml:"min_message_count"`
	ExcludePOS       []string `yaml:"exclude_pos"`
}

// StandardDefaults returns the built-in knob values.
func StandardDefaults() Defaults {
	return Defaults{
		TopN:             50,
		MinWordLength:    2,
		MinMessageLength: 2,
		MinMessageCount:  2,
	}
}

// LoadDefaults reads knob overrides from a YAML file, filling unset
// fields from StandardDefaults.
func LoadDefaults(path string) (Defaults, error) {
	d := StandardDefaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return StandardDefaults(), err
	}
	if d.TopN < 1 {
		d.TopN = StandardDefaults().TopN
	}
	return d, nil
}
