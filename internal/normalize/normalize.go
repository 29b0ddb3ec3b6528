// Package normalize maps the untyped JSON returned by a sentiment service onto
// a fixed {sentiment, score} pair, and turns that pair into display values.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/spacesedan/sentilens/internal/models"
)

const UNKNOWN_LABEL = "unknown"

// Dotted lookup paths, tried in order. The first one that is present and not
// null wins. Extend by appending.
var (
	LabelPaths = []string{"sentiment", "label", "prediction", "result.sentiment"}
	ScorePaths = []string{"score", "confidence", "probability", "result.score"}
)

// Normalize extracts the label and canonical score from a raw upstream body.
// Invalid JSON, or anything that is not an object, yields {unknown, 0}.
func Normalize(raw []byte) models.AnalysisResult {
	if !gjson.ValidBytes(raw) {
		return models.AnalysisResult{Sentiment: UNKNOWN_LABEL}
	}
	return fromResult(gjson.ParseBytes(raw))
}

// NormalizeValue is Normalize for an already decoded value such as a
// map[string]any.
func NormalizeValue(v any) models.AnalysisResult {
	raw, err := json.Marshal(v)
	if err != nil {
		return models.AnalysisResult{Sentiment: UNKNOWN_LABEL}
	}
	return Normalize(raw)
}

func fromResult(doc gjson.Result) models.AnalysisResult {
	result := models.AnalysisResult{Sentiment: UNKNOWN_LABEL}
	if !doc.IsObject() {
		return result
	}

	if label, ok := firstPresent(doc, LabelPaths); ok {
		result.Sentiment = label.String()
	}
	if score, ok := firstPresent(doc, ScorePaths); ok {
		result.Score = coerceScore(score)
	}

	return result
}

func firstPresent(doc gjson.Result, paths []string) (gjson.Result, bool) {
	for _, path := range paths {
		value := lookup(doc, path)
		if value.Exists() && value.Type != gjson.Null {
			return value, true
		}
	}
	return gjson.Result{}, false
}

// lookup resolves a dotted path with last-key-wins semantics for objects
// that repeat a key, so {"sentiment":"a","sentiment":"b"} reads as "b".
func lookup(doc gjson.Result, path string) gjson.Result {
	current := doc
	for _, key := range strings.Split(path, ".") {
		if !current.IsObject() {
			return gjson.Result{}
		}
		var found gjson.Result
		current.ForEach(func(k, v gjson.Result) bool {
			if k.String() == key {
				found = v
			}
			return true
		})
		current = found
	}
	return current
}

// coerceScore treats values above 1 as percentages. Anything that is not a
// JSON number counts as 0, even when a later path holds a number.
func coerceScore(value gjson.Result) float64 {
	if value.Type != gjson.Number {
		return 0
	}
	score := value.Float()
	if score > 1 {
		return score / 100
	}
	return score
}
