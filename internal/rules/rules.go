// Package rules implements keyword-based transaction categorization.
//
// Rules are an ordered list and evaluation stops at the first keyword that is
// a substring of the description, so whoever authors the rules file must put
// more specific keywords before more general ones ("COFFEE SHOP" before
// "SHOP"). Matching is case-sensitive.
package rules

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Uncategorized is assigned when no keyword matches a description. It is an
// explicit marker so the category column is never empty.
const Uncategorized = "uncategorized"

// Rule maps one keyword to a category label.
type Rule struct {
	Keyword  string `mapstructure:"keyword"`
	Category string `mapstructure:"category"`
}

// Ruleset is the immutable, ordered keyword table for one run.
type Ruleset struct {
	rules []Rule
}

// New builds a Ruleset from an ordered list of rules.
func New(rules []Rule) (*Ruleset, error) {
	for i, r := range rules {
		if r.Keyword == "" {
			return nil, fmt.Errorf("New: rule %d: empty keyword", i)
		}
		if r.Category == "" {
			return nil, fmt.Errorf("New: rule %d (%s): empty category", i, r.Keyword)
		}
	}
	return &Ruleset{rules: rules}, nil
}

// Load reads the rules file, a YAML or JSON document with a top-level "rules"
// list whose order is the evaluation order.
func Load(path string) (*Ruleset, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("Load: reading rules file %q: %w", path, err)
	}

	var doc struct {
		Rules []Rule `mapstructure:"rules"`
	}
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("Load: unmarshal rules file %q: %w", path, err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("Load: rules file %q contains no rules", path)
	}

	return New(doc.Rules)
}

// Categorize returns the category of the first rule whose keyword occurs in
// the description, or Uncategorized when none matches.
func (rs *Ruleset) Categorize(description string) string {
	for _, r := range rs.rules {
		if strings.Contains(description, r.Keyword) {
			return r.Category
		}
	}
	return Uncategorized
}

// Categories returns the distinct category labels in rule order.
func (rs *Ruleset) Categories() []string {
	seen := make(map[string]struct{}, len(rs.rules))
	var categories []string
	for _, r := range rs.rules {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		categories = append(categories, r.Category)
	}
	return categories
}

// Len reports the number of rules in the set.
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}
