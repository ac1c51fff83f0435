package tagging

import (
	"sort"
	"strings"
)

// Fields is the text a video exposes to the classifier.
type Fields struct {
	Title       string
	Description string
	Labels      []string
}

// Classifier evaluates a RuleTable against video text.
type Classifier struct {
	table RuleTable
}

// NewClassifier creates a classifier over a lowercased copy of table, so
// keywords match regardless of case and later edits to table have no effect.
func NewClassifier(table RuleTable) *Classifier {
	return &Classifier{table: RuleTable{
		Rules:       lowerRules(table.Rules),
		SceneRules:  lowerRules(table.SceneRules),
		SceneParent: table.SceneParent,
	}}
}

func lowerRules(rules []Rule) []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		keywords := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			keywords[j] = strings.ToLower(k)
		}
		out[i] = Rule{Tag: r.Tag, Field: r.Field, Keywords: keywords}
	}
	return out
}

// Table returns the rule table the classifier was built with.
func (c *Classifier) Table() RuleTable {
	return c.table
}

// Classify returns the sorted set of tags whose rules match f.
//
// Matching is case-insensitive substring containment, not word matching:
// "grinding" matches inside "hand-grinding".
func (c *Classifier) Classify(f Fields) []string {
	bags := buildBags(f)
	tags := make(map[string]bool)

	for _, rule := range c.table.Rules {
		if rule.matches(bags) {
			tags[rule.Tag] = true
		}
	}

	for _, rule := range c.table.SceneRules {
		if rule.matches(bags) {
			tags[rule.Tag] = true
			if c.table.SceneParent != "" {
				tags[c.table.SceneParent] = true
			}
		}
	}

	result := make([]string, 0, len(tags))
	for tag := range tags {
		result = append(result, tag)
	}
	sort.Strings(result)
	return result
}

type searchBags map[Field]string

// buildBags lowercases each field; the "all" bag joins the three with spaces.
func buildBags(f Fields) searchBags {
	title := strings.ToLower(f.Title)
	description := strings.ToLower(f.Description)
	labels := strings.ToLower(strings.Join(f.Labels, " "))

	return searchBags{
		FieldTitle:       title,
		FieldDescription: description,
		FieldLabels:      labels,
		FieldAll:         strings.Join([]string{title, description, labels}, " "),
	}
}

func (b searchBags) pick(field Field) string {
	if field == "labels" {
		field = FieldLabels
	}
	if bag, ok := b[field]; ok {
		return bag
	}
	return b[FieldAll]
}

func (r Rule) matches(bags searchBags) bool {
	bag := bags.pick(r.Field)
	if bag == "" {
		return false
	}
	for _, keyword := range r.Keywords {
		if keyword != "" && strings.Contains(bag, keyword) {
			return true
		}
	}
	return false
}
