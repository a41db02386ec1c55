// Package questionbank holds the static question set used when generated
// questions are unavailable.
package questionbank

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"placeprep_backend/internal/question"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var bankYAML []byte

type file struct {
	General []question.Question                         `yaml:"general"`
	Topics  map[string]map[string][]question.Question `yaml:"topics"`
}

type subtopicSet struct {
	name      string
	questions []question.Question
}

// Bank is an immutable, pre-validated question set keyed by topic and subtopic.
type Bank struct {
	general []question.Question
	topics  map[string][]subtopicSet
}

// Default is the bank compiled into the binary.
var Default = MustParse(bankYAML)

// Parse loads a bank from YAML. Every entry must satisfy the question
// invariant; a bad entry fails the whole load.
func Parse(data []byte) (*Bank, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	b := &Bank{topics: make(map[string][]subtopicSet, len(f.Topics))}

	general, err := prepare(f.General, "general")
	if err != nil {
		return nil, err
	}
	b.general = general

	for topic, subs := range f.Topics {
		sets := make([]subtopicSet, 0, len(subs))
		for sub, qs := range subs {
			prepared, err := prepare(qs, topic+"/"+sub)
			if err != nil {
				return nil, err
			}
			sets = append(sets, subtopicSet{name: sub, questions: prepared})
		}
		// map 解码顺序不稳定
		sort.Slice(sets, func(i, j int) bool { return sets[i].name < sets[j].name })
		b.topics[question.Normalize(topic)] = sets
	}
	return b, nil
}

func MustParse(data []byte) *Bank {
	b, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return b
}

func prepare(qs []question.Question, where string) ([]question.Question, error) {
	out := make([]question.Question, 0, len(qs))
	for i := range qs {
		q := qs[i]
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question bank %s #%d: %w", where, i+1, err)
		}
		q.Source = question.SourceFallback
		out = append(out, q)
	}
	return out, nil
}

// Lookup returns at most count questions for the topic and subtopic. The
// subtopic's own questions come first, then the topic's other subtopics, then
// the general pool. Within each of those tiers, entries whose difficulty is
// band (or unlabelled) come before the rest; an empty band disables the
// preference. Returned records are copies with Source set to fallback.
func (b *Bank) Lookup(topic, subtopic, band string, count int) []question.Question {
	if count <= 0 {
		return nil
	}

	out := make([]question.Question, 0, count)
	seen := make(map[string]struct{}, count)
	add := func(qs []question.Question, keep func(question.Question) bool) {
		for _, q := range qs {
			if len(out) >= count {
				return
			}
			if !keep(q) {
				continue
			}
			k := question.Normalize(q.Text)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, clone(q))
		}
	}
	inBand := func(q question.Question) bool {
		return band == "" || q.Difficulty == "" || strings.EqualFold(q.Difficulty, band)
	}
	all := func(question.Question) bool { return true }
	tier := func(qs []question.Question) {
		add(qs, inBand)
		add(qs, all)
	}

	sets := b.topics[question.Normalize(topic)]
	wantSub := question.Normalize(subtopic)
	var own, siblings []question.Question
	for _, s := range sets {
		if question.Normalize(s.name) == wantSub {
			own = append(own, s.questions...)
		} else {
			siblings = append(siblings, s.questions...)
		}
	}
	tier(own)
	tier(siblings)
	tier(b.general)
	return out
}

// Size reports how many questions a topic holds, general pool excluded.
func (b *Bank) Size(topic string) int {
	n := 0
	for _, s := range b.topics[question.Normalize(topic)] {
		n += len(s.questions)
	}
	return n
}

func clone(q question.Question) question.Question {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	q.Options = opts
	return q
}
