package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	assert.Contains(t, Default.Branches(), "CSE")

	topics := Default.TopicsFor("cse")
	require.NotEmpty(t, topics)
	assert.Equal(t, "Data Structures", topics[0].Name)
	assert.Equal(t, "Verbal Ability", topics[len(topics)-1].Name)
}

func TestTopicsFor_UnknownBranchGetsCommonTopics(t *testing.T) {
	topics := Default.TopicsFor("ARCH")
	names := make([]string, len(topics))
	for i, tp := range topics {
		names[i] = tp.Name
	}
	assert.Equal(t, []string{"Quantitative Aptitude", "Logical Reasoning", "Verbal Ability"}, names)
}

func TestCanonicalSubtopic(t *testing.T) {
	s, ok := Default.CanonicalSubtopic("data structures", "linked  lists")
	require.True(t, ok)
	assert.Equal(t, "Linked Lists", s)

	_, ok = Default.CanonicalSubtopic("Data Structures", "Quantum")
	assert.False(t, ok)

	_, ok = Default.CanonicalSubtopic("Astrology", "Stars")
	assert.False(t, ok)
}

func TestParse_RejectsUnknownTopicReference(t *testing.T) {
	_, err := Parse([]byte(`
topics:
  - name: A
    subtopics: [x]
branches:
  CSE: [B]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown topic")
}

func TestParse_RejectsDuplicateTopic(t *testing.T) {
	_, err := Parse([]byte(`
topics:
  - name: A
  - name: a
`))
	require.Error(t, err)
}
