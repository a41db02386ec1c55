package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Topic is a quiz subject with its subtopics.
type Topic struct {
	Name      string   `yaml:"name" json:"name"`
	Subtopics []string `yaml:"subtopics" json:"subtopics"`
}

type file struct {
	Topics   []Topic             `yaml:"topics"`
	Branches map[string][]string `yaml:"branches"`
	Common   []string            `yaml:"common"`
}

// Catalog maps academic branches to topics and topics to subtopics.
// Lookups are case-insensitive; returned names use the canonical spelling.
type Catalog struct {
	topics   map[string]Topic
	order    []string
	branches map[string][]string
	common   []string
}

// Default is the catalog compiled into the binary.
var Default = MustParse(catalogYAML)

func key(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Parse builds a catalog from YAML and checks that every referenced topic exists.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		topics:   make(map[string]Topic, len(f.Topics)),
		branches: make(map[string][]string, len(f.Branches)),
	}
	for _, t := range f.Topics {
		if t.Name == "" {
			return nil, fmt.Errorf("catalog: topic without name")
		}
		if _, dup := c.topics[key(t.Name)]; dup {
			return nil, fmt.Errorf("catalog: duplicate topic %q", t.Name)
		}
		c.topics[key(t.Name)] = t
		c.order = append(c.order, t.Name)
	}

	resolve := func(names []string, where string) ([]string, error) {
		out := make([]string, 0, len(names))
		for _, n := range names {
			t, ok := c.topics[key(n)]
			if !ok {
				return nil, fmt.Errorf("catalog: %s references unknown topic %q", where, n)
			}
			out = append(out, t.Name)
		}
		return out, nil
	}

	for b, names := range f.Branches {
		topics, err := resolve(names, "branch "+b)
		if err != nil {
			return nil, err
		}
		c.branches[strings.ToUpper(strings.TrimSpace(b))] = topics
	}

	common, err := resolve(f.Common, "common")
	if err != nil {
		return nil, err
	}
	c.common = common
	return c, nil
}

func MustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Branches returns the known branch codes, sorted.
func (c *Catalog) Branches() []string {
	out := make([]string, 0, len(c.branches))
	for b := range c.branches {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) HasBranch(branch string) bool {
	_, ok := c.branches[strings.ToUpper(strings.TrimSpace(branch))]
	return ok
}

// TopicsFor returns the branch topics followed by the common aptitude topics.
// Unknown branches get only the common topics.
func (c *Catalog) TopicsFor(branch string) []Topic {
	names := c.branches[strings.ToUpper(strings.TrimSpace(branch))]
	out := make([]Topic, 0, len(names)+len(c.common))
	for _, n := range names {
		out = append(out, c.topics[key(n)])
	}
	for _, n := range c.common {
		out = append(out, c.topics[key(n)])
	}
	return out
}

// All returns every topic in file order.
func (c *Catalog) All() []Topic {
	out := make([]Topic, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.topics[key(n)])
	}
	return out
}

func (c *Catalog) Lookup(topic string) (Topic, bool) {
	t, ok := c.topics[key(topic)]
	return t, ok
}

func (c *Catalog) Subtopics(topic string) []string {
	return c.topics[key(topic)].Subtopics
}

// CanonicalSubtopic returns the canonical spelling of subtopic within topic.
func (c *Catalog) CanonicalSubtopic(topic, subtopic string) (string, bool) {
	t, ok := c.Lookup(topic)
	if !ok {
		return "", false
	}
	for _, s := range t.Subtopics {
		if key(s) == key(subtopic) {
			return s, true
		}
	}
	return "", false
}

func (c *Catalog) HasSubtopic(topic, subtopic string) bool {
	_, ok := c.CanonicalSubtopic(topic, subtopic)
	return ok
}
