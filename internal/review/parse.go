package review

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// trailingComma matches a comma that directly precedes a closing bracket.
var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

type recoveryStrategy struct {
	stage     Stage
	candidate func(reply string) (string, bool)
}

// recoveryChain is tried in order; the first candidate that decodes to a
// JSON object wins.
var recoveryChain = []recoveryStrategy{
	{StageStrict, func(reply string) (string, bool) { return reply, true }},
	{StageEnclosed, enclosedObject},
	{StageRepaired, func(reply string) (string, bool) {
		obj, ok := enclosedObject(reply)
		if !ok {
			return "", false
		}
		return trailingComma.ReplaceAllString(obj, "$1"), true
	}},
}

// ParseReply recovers a Response from a model reply. It never fails: when no
// strategy yields a JSON object, the whole reply is returned in RawOutput.
func ParseReply(reply string) Response {
	for _, s := range recoveryChain {
		candidate, ok := s.candidate(reply)
		if !ok {
			continue
		}
		if resp, ok := decodeResponse(candidate); ok {
			resp.Stage = s.stage
			return resp
		}
	}
	return Response{RawOutput: reply, Stage: StageRaw}
}

// enclosedObject slices from the first '{' to the last '}'.
func enclosedObject(reply string) (string, bool) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}

// decodeResponse strictly parses a JSON object and then reads the known
// fields one by one. A field with an unusable value is treated as not
// reported rather than failing the whole object, and the candidate is kept
// in RawOutput so that value still reaches the caller.
func decodeResponse(candidate string) (Response, bool) {
	data := bytes.TrimSpace([]byte(candidate))
	if len(data) == 0 || data[0] != '{' {
		return Response{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Response{}, false
	}

	var resp Response
	clean := decodeField(fields, FieldSyntaxErrors, &resp.SyntaxErrors)
	clean = decodeField(fields, FieldLogicalIssues, &resp.LogicalIssues) && clean
	clean = decodeField(fields, FieldStyleIssues, &resp.StyleIssues) && clean
	clean = decodeField(fields, FieldExplanation, &resp.Explanation) && clean
	clean = decodeField(fields, FieldFixed, &resp.FixedCodeOrText) && clean
	clean = decodeField(fields, FieldSuggestedTests, &resp.SuggestedTests) && clean
	clean = decodeField(fields, FieldConfidence, &resp.Confidence) && clean
	if !clean {
		resp.RawOutput = string(data)
	}
	return resp, true
}

// decodeField reports false when the field is present but unusable.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T) bool {
	raw, ok := fields[name]
	if !ok {
		return true
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}
