// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"regexp"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/pdiddy/paper-sorter/pkg/types"
)

// Model replies are free text with no schema guarantee. The parsers below
// are best-effort: they never fail, they only keep what matches.

// ordinalPrefix matches a leading "N. " list marker.
var ordinalPrefix = regexp.MustCompile(`^\d+\.\s`)

// classificationLine matches "N. [A, B]" anywhere in a reply.
var classificationLine = regexp.MustCompile(`\d+\.\s\[(.+?)\]`)

// ParseCategoryList turns a discovery reply into labels: one per non-empty
// line, with any "N. " prefix removed. The count is not enforced.
func ParseCategoryList(reply string) types.CategorySet {
	cats := types.CategorySet{}
	for _, line := range strings.Split(reply, "\n") {
		label := strings.TrimSpace(ordinalPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if label != "" {
			cats = append(cats, label)
		}
	}
	return cats
}

// ParseClassifications extracts one label list per "N. [..]" line, in
// reply order, splitting bracket contents on ", ". Lines without brackets
// are dropped. If fewer than want lists are found the tail is padded with
// the Uncategorized sentinel; extra lists are kept.
func ParseClassifications(reply string, want int) [][]string {
	matches := classificationLine.FindAllStringSubmatch(reply, -1)
	out := make([][]string, 0, max(want, len(matches)))
	for _, m := range matches {
		out = append(out, strings.Split(m[1], ", "))
	}
	for len(out) < want {
		out = append(out, []string{types.UncategorizedLabel})
	}
	return out
}

// canonicalThreshold is the minimum Jaro-Winkler similarity for a label
// to be replaced by a vocabulary entry.
const canonicalThreshold = 0.9

// Canonicalize maps each label onto the closest vocabulary entry when they
// differ only cosmetically ("deep learning" vs "Deep Learning"). Labels
// with no close entry, and the Uncategorized sentinel, are kept as-is.
func Canonicalize(labels []string, vocabulary types.CategorySet) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = closestLabel(strings.TrimSpace(l), vocabulary)
	}
	return out
}

func closestLabel(label string, vocabulary types.CategorySet) string {
	if label == types.UncategorizedLabel || vocabulary.Contains(label) {
		return label
	}
	best, bestScore := label, float32(0)
	for _, v := range vocabulary {
		score, err := edlib.StringsSimilarity(strings.ToLower(label), strings.ToLower(v), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = v, score
		}
	}
	if bestScore >= canonicalThreshold {
		return best
	}
	return label
}
