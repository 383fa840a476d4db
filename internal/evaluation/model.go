// Package evaluation models the Amazon Connect evaluation export written to S3.
package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Document struct {
	Questions []Question `json:"questions"`
	Metadata  Metadata   `json:"metadata"`
}

type Question struct {
	QuestionText string `json:"questionText"`
	Answer       Answer `json:"answer"`
}

type Answer struct {
	Values []AnswerValue `json:"values"`
}

type AnswerValue struct {
	Selected  bool   `json:"selected"`
	ValueText string `json:"valueText"`
}

type Metadata struct {
	InstanceID                string    `json:"instanceId"`
	AgentID                   string    `json:"agentId"`
	ContactID                 string    `json:"contactId"`
	Evaluator                 string    `json:"evaluator"`
	EvaluationDefinitionTitle string    `json:"evaluationDefinitionTitle"`
	EvaluationSubmitTimestamp Timestamp `json:"evaluationSubmitTimestamp"`
}

// Complete reports whether the document carries enough to route a notification.
func (d *Document) Complete() bool {
	return d != nil && len(d.Questions) > 0 && d.Metadata.InstanceID != "" && d.Metadata.AgentID != ""
}

// SelectedAnswer returns the first selected value of the question whose text
// equals questionText exactly.
func (d *Document) SelectedAnswer(questionText string) (string, bool) {
	if d == nil || questionText == "" {
		return "", false
	}
	for _, q := range d.Questions {
		if q.QuestionText != questionText {
			continue
		}
		for _, v := range q.Answer.Values {
			if v.Selected && v.ValueText != "" {
				return v.ValueText, true
			}
		}
		return "", false
	}

	return "", false
}

// Timestamp holds the submit time as exported, either epoch milliseconds
// (number or string) or an RFC 3339 string.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	*t = Timestamp(n.String())

	return nil
}

// Time parses the timestamp.
func (t Timestamp) Time() (time.Time, error) {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp: %v", err)
	}

	return ts, nil
}
