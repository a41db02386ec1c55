package question

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// OptionCount is the number of options every multiple-choice record carries.
const OptionCount = 4

// Source tells where a record came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Question is a single multiple-choice quiz record. It lives only for the
// duration of one quiz; finished quizzes are persisted as aggregate scores.
type Question struct {
	Text        string   `json:"question" yaml:"question"`
	Options     []string `json:"options" yaml:"options"`
	Answer      string   `json:"answer" yaml:"answer"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation"`
	Difficulty  string   `json:"difficulty" yaml:"difficulty"`
	Source      Source   `json:"source" yaml:"-"`
}

// Public is the view of a record sent to a student while the quiz is running.
type Public struct {
	Index   int      `json:"index"`
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

var (
	ErrEmptyText        = errors.New("question text is empty")
	ErrOptionCount      = fmt.Errorf("question must have exactly %d options", OptionCount)
	ErrEmptyOption      = errors.New("option text is empty")
	ErrDuplicateOptions = errors.New("options are not distinct")
	ErrNoAnswerMatch    = errors.New("answer does not match any option")
	ErrAmbiguousAnswer  = errors.New("answer matches more than one option")
)

// Normalize trims, collapses inner whitespace and case-folds s.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ResolveAnswer finds the single option the answer refers to.
// Matching order: exact normalized equality, then substring containment in
// either direction, then a letter label ("B", "c)", "option D") when the
// substring stage found no single option. A stage only decides when exactly
// one option qualifies.
func ResolveAnswer(answer string, options []string) (int, error) {
	na := Normalize(answer)
	if na == "" {
		return -1, ErrNoAnswerMatch
	}

	norm := make([]string, len(options))
	for i, o := range options {
		norm[i] = Normalize(o)
	}

	if idx, err := single(norm, func(o string) bool { return o == na }); err != errNone {
		return idx, err
	}

	idx, err := single(norm, func(o string) bool {
		return o != "" && (strings.Contains(o, na) || strings.Contains(na, o))
	})
	if err == nil {
		return idx, nil
	}
	if li, ok := letterIndex(na, len(options)); ok {
		return li, nil
	}
	return orNoMatch(idx, err)
}

var errNone = errors.New("no candidate")

// single returns the index of the only option satisfying match, errNone when
// nothing matched and ErrAmbiguousAnswer when several did.
func single(norm []string, match func(string) bool) (int, error) {
	found := -1
	for i, o := range norm {
		if !match(o) {
			continue
		}
		if found >= 0 {
			return -1, ErrAmbiguousAnswer
		}
		found = i
	}
	if found < 0 {
		return -1, errNone
	}
	return found, nil
}

func orNoMatch(idx int, err error) (int, error) {
	if err == errNone {
		return -1, ErrNoAnswerMatch
	}
	return idx, err
}

// letterIndex understands "a", "b)", "(c)", "d.", "option b" and "answer: c".
func letterIndex(na string, n int) (int, bool) {
	s := na
	for _, prefix := range []string{"option", "answer:", "answer", "ans"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("().:]", r)
	})
	if len(s) != 1 {
		return -1, false
	}
	idx := int(s[0] - 'a')
	if idx < 0 || idx >= n {
		return -1, false
	}
	return idx, true
}

// Validate checks the record invariant and, when the answer resolves, rewrites
// Answer to the canonical option text. Text and options are trimmed in place.
func (q *Question) Validate() error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return ErrEmptyText
	}
	if len(q.Options) != OptionCount {
		return ErrOptionCount
	}

	seen := make(map[string]struct{}, OptionCount)
	for i, o := range q.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return ErrEmptyOption
		}
		q.Options[i] = o
		key := Normalize(o)
		if _, dup := seen[key]; dup {
			return ErrDuplicateOptions
		}
		seen[key] = struct{}{}
	}

	idx, err := ResolveAnswer(q.Answer, q.Options)
	if err != nil {
		return err
	}
	q.Answer = q.Options[idx]
	return nil
}

// AnswerIndex returns the option index of the stored answer, or -1.
func (q *Question) AnswerIndex() int {
	na := Normalize(q.Answer)
	for i, o := range q.Options {
		if Normalize(o) == na {
			return i
		}
	}
	return -1
}

// IsCorrect reports whether a submitted response selects the answer. The
// response may be the option text or its letter label.
func (q *Question) IsCorrect(response string) bool {
	want := q.AnswerIndex()
	if want < 0 || Normalize(response) == "" {
		return false
	}
	if Normalize(response) == Normalize(q.Answer) {
		return true
	}
	idx, ok := letterIndex(Normalize(response), len(q.Options))
	return ok && idx == want
}

func (q *Question) Public(index int) Public {
	opts := make([]string, len(q.Options))
	copy(opts, q.Options)
	return Public{Index: index, Text: q.Text, Options: opts}
}

// PublicSet strips answers from a whole quiz.
func PublicSet(qs []Question) []Public {
	out := make([]Public, len(qs))
	for i := range qs {
		out[i] = qs[i].Public(i)
	}
	return out
}
