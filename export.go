package questiongenerator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// WritePaperText renders a question paper as formatted plain text. The
// answer key is included unless includeAnswers is false.
func WritePaperText(w io.Writer, paper *QuestionPaper, includeAnswers bool) error {
	divider := strings.Repeat("=", 60)

	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "QUESTION PAPER: %s\n", paper.Title)
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "Instructions: %s\n", paper.Instructions)
	fmt.Fprintf(w, "Total Marks: %d\n", paper.TotalMarks)
	fmt.Fprintln(w, divider)

	for _, q := range paper.Questions {
		fmt.Fprintf(w, "\nQ%d. %s [%d marks]\n", q.QuestionNumber, q.Question, q.Marks)
		fmt.Fprintf(w, "    (Level: %s, Difficulty: %s)\n", q.TaxonomyLevel, q.Difficulty)
	}

	if !includeAnswers {
		return nil
	}

	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintln(w, "ANSWER KEY")
	fmt.Fprintln(w, divider)
	for _, a := range paper.AnswerKey {
		fmt.Fprintf(w, "\nQ%d. Answer:\n", a.QuestionNumber)
		fmt.Fprintf(w, "    %s\n", a.Answer)
		if a.ContextSnippet != "" {
			fmt.Fprintf(w, "    Context: %s\n", a.ContextSnippet)
		}
	}
	return nil
}

// SavePaperJSON writes a question paper to a JSON file.
func SavePaperJSON(paper *QuestionPaper, filename string) error {
	data, err := json.MarshalIndent(paper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal question paper: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write question paper: %w", err)
	}
	return nil
}
