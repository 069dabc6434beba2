package intent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed corpus/sample_questions.json
var corpusRaw []byte

type corpusFile struct {
	SampleQuestions []string `json:"sample_questions"`
}

// LoadCorpus returns the fixed example-question corpus embedded at build
// time. The corpus is immutable configuration for the process lifetime.
func LoadCorpus() ([]string, error) {
	var file corpusFile
	if err := json.Unmarshal(corpusRaw, &file); err != nil {
		return nil, fmt.Errorf("decode sample questions: %w", err)
	}
	questions := make([]string, 0, len(file.SampleQuestions))
	for _, q := range file.SampleQuestions {
		q = strings.TrimSpace(q)
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}
