package questiongenerator

import "strings"

// TemplateSet holds the question templates and lexical cue words for one
// taxonomy level. Templates contain zero, one or two %s slots filled with
// extracted entities or concepts.
type TemplateSet struct {
	Templates []string
	Keywords  []string
}

// taxonomyTemplates maps each taxonomy level to its fixed template list.
var taxonomyTemplates = map[TaxonomyLevel]TemplateSet{
	Remember: {
		Templates: []string{
			"What is %s?",
			"Define %s.",
			"List the main %s mentioned in the text.",
			"Who is %s?",
			"When did %s occur?",
			"Where does %s take place?",
		},
		Keywords: []string{"what", "who", "when", "where", "list", "define", "identify"},
	},
	Understand: {
		Templates: []string{
			"Explain the concept of %s.",
			"How does %s work?",
			"What is the significance of %s?",
			"Describe the relationship between %s and %s.",
			"Summarize the main idea about %s.",
		},
		Keywords: []string{"explain", "describe", "summarize", "interpret", "classify"},
	},
	Apply: {
		Templates: []string{
			"How would you use %s in a real-world scenario?",
			"Apply the concept of %s to solve this problem: %s",
			"What would happen if %s was implemented in %s?",
			"Demonstrate how %s can be applied to %s.",
		},
		Keywords: []string{"apply", "demonstrate", "use", "implement", "solve"},
	},
	Analyze: {
		Templates: []string{
			"Compare and contrast %s and %s.",
			"What are the causes of %s?",
			"Analyze the relationship between %s and %s.",
			"Break down the components of %s.",
			"What patterns can you identify in %s?",
		},
		Keywords: []string{"analyze", "compare", "contrast", "examine", "investigate"},
	},
	Evaluate: {
		Templates: []string{
			"Evaluate the effectiveness of %s.",
			"What are the strengths and weaknesses of %s?",
			"Justify your opinion about %s.",
			"Assess the impact of %s on %s.",
			"Which approach is better: %s or %s? Explain.",
		},
		Keywords: []string{"evaluate", "assess", "judge", "critique", "justify"},
	},
	Create: {
		Templates: []string{
			"Design a new approach to %s.",
			"Create a plan for implementing %s.",
			"Propose an alternative solution to %s.",
			"Develop a strategy for %s.",
			"Construct an argument for %s.",
		},
		Keywords: []string{"create", "design", "develop", "construct", "propose"},
	},
}

// TemplatesFor returns the template set for a taxonomy level.
func TemplatesFor(level TaxonomyLevel) TemplateSet {
	return taxonomyTemplates[level]
}

// slotCount returns the number of fill slots in a template.
func slotCount(template string) int {
	return strings.Count(template, "%s")
}

// questionTypePrefixes maps leading question words to a type label. The
// check order is significant: earlier groups win on a shared prefix.
var questionTypePrefixes = []struct {
	prefixes []string
	label    string
}{
	{[]string{"what", "who", "when", "where", "which"}, "Factual"},
	{[]string{"how", "why"}, "Explanatory"},
	{[]string{"compare", "analyze", "evaluate"}, "Analytical"},
	{[]string{"create", "design", "develop"}, "Creative"},
}

// ClassifyQuestionType derives a question type label from the question's
// leading word, case-insensitively. Unmatched questions are "General".
func ClassifyQuestionType(question string) string {
	lower := strings.ToLower(strings.TrimSpace(question))
	for _, group := range questionTypePrefixes {
		for _, prefix := range group.prefixes {
			if strings.HasPrefix(lower, prefix) {
				return group.label
			}
		}
	}
	return "General"
}
