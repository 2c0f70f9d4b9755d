package gateway

import (
	"encoding/json"
	"strings"
)

// response covers the shapes the layout-parsing endpoint has been observed
// to return: markdown at the top level, markdown nested under data, or a
// structural layout_parsing_result with no markdown at all. Data is kept
// raw so a non-object data field never fails the decode; the provider has
// returned arrays there on empty results.
type response struct {
	MdResults           string          `json:"md_results"`
	Data                json.RawMessage `json:"data"`
	LayoutParsingResult json.RawMessage `json:"layout_parsing_result"`
	Code                int             `json:"code"`
	Msg                 string          `json:"msg"`
}

// noContentResult is returned when the provider reports success but the
// body contains no recognizable markdown.
const noContentResult = "OCR completed but no Markdown content found in response."

// An extractor attempts to pull markdown out of one response shape.
// Extractors are tried in priority order; the first match wins.
type extractor func(*response) (string, bool)

var extractors = []extractor{
	extractTopLevel,
	extractNested,
	extractLayoutFallback,
}

func extractTopLevel(r *response) (string, bool) {
	if r.MdResults != "" {
		return r.MdResults, true
	}
	return "", false
}

func extractNested(r *response) (string, bool) {
	if len(r.Data) == 0 {
		return "", false
	}

	var nested struct {
		MdResults string `json:"md_results"`
	}
	if err := json.Unmarshal(r.Data, &nested); err != nil {
		return "", false
	}
	if nested.MdResults != "" {
		return nested.MdResults, true
	}
	return "", false
}

// extractLayoutFallback pretty-prints the structural result as JSON when
// no markdown is present, so the caller still gets inspectable output.
func extractLayoutFallback(r *response) (string, bool) {
	if len(r.LayoutParsingResult) == 0 || string(r.LayoutParsingResult) == "null" {
		return "", false
	}

	var parsed any
	if err := json.Unmarshal(r.LayoutParsingResult, &parsed); err != nil {
		return "", false
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", false
	}

	return string(pretty), true
}

// extract resolves a decoded provider response to markdown text. When no
// extractor matches, a success indicator in the body yields an explicit
// no-content placeholder; otherwise ok is false.
func extract(r *response) (text string, ok bool) {
	for _, fn := range extractors {
		if text, ok := fn(r); ok {
			return text, true
		}
	}

	if r.Code == 200 || r.Msg == "success" {
		return noContentResult, true
	}

	return "", false
}

// normalizeNewlines converts Windows line endings to Unix.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
