package fault

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// CategoryOther is the fallback when no keyword rule matches.
const CategoryOther = "other"

type CategoryRule struct {
	Category string   `toml:"category"`
	Keywords []string `toml:"keywords"`
}

type categoryRuleFile struct {
	Rules []CategoryRule `toml:"rule"`
}

// Classifier derives a fault category from the description text. Rules are
// ordered; the first keyword hit wins.
type Classifier struct {
	rules []CategoryRule
}

// defaultCategoryRules mirror the alarm phrasing of the AGV fleet firmware.
var defaultCategoryRules = []CategoryRule{
	{Category: "charging", Keywords: []string{"充电"}},
	{Category: "obstacle-avoidance", Keywords: []string{"避障"}},
	{Category: "localization", Keywords: []string{"定位"}},
	{Category: "task", Keywords: []string{"任务"}},
}

func NewClassifier() *Classifier {
	return &Classifier{rules: defaultCategoryRules}
}

// LoadClassifier reads keyword rules from a TOML file. An empty path keeps
// the built-in rules.
func LoadClassifier(rulesFile string) (*Classifier, error) {
	path := strings.TrimSpace(rulesFile)
	if path == "" {
		return NewClassifier(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file categoryRuleFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if err := validateCategoryRules(file.Rules); err != nil {
		return nil, err
	}

	return &Classifier{rules: file.Rules}, nil
}

func validateCategoryRules(rules []CategoryRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: no rules defined", ErrCategoryRuleInvalid)
	}
	for i, rule := range rules {
		if strings.TrimSpace(rule.Category) == "" {
			return fmt.Errorf("%w: rule %d has no category", ErrCategoryRuleInvalid, i)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("%w: rule %d (%s) has no keywords", ErrCategoryRuleInvalid, i, rule.Category)
		}
		for _, keyword := range rule.Keywords {
			if strings.TrimSpace(keyword) == "" {
				return fmt.Errorf("%w: rule %d (%s) has an empty keyword", ErrCategoryRuleInvalid, i, rule.Category)
			}
		}
	}
	return nil
}

// Infer returns the category for a description, or CategoryOther when no
// rule matches.
func (c *Classifier) Infer(description string) string {
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(description, keyword) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}
