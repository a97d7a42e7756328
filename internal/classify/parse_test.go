// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-sorter/pkg/types"
)

func TestParseCategoryList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  types.CategorySet
	}{
		{
			name:  "numbered lines",
			reply: "1. Deep Learning\n2. Computer Vision\n3. Reinforcement Learning\n4. NLP\n5. Optimization\n",
			want:  types.CategorySet{"Deep Learning", "Computer Vision", "Reinforcement Learning", "NLP", "Optimization"},
		},
		{
			name:  "plain lines with blanks",
			reply: "Deep Learning\n\n  Graph Learning  \n\n",
			want:  types.CategorySet{"Deep Learning", "Graph Learning"},
		},
		{
			name:  "only leading ordinal is stripped",
			reply: "10. Theory 2. Practice",
			want:  types.CategorySet{"Theory 2. Practice"},
		},
		{
			name:  "empty reply",
			reply: "",
			want:  types.CategorySet{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCategoryList(tt.reply))
		})
	}
}

func TestParseClassifications(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
		exp   [][]string
	}{
		{
			name:  "well formed",
			reply: "1. [Deep Learning, NLP]\n2. [Optimization]",
			want:  2,
			exp:   [][]string{{"Deep Learning", "NLP"}, {"Optimization"}},
		},
		{
			name:  "pads missing tail",
			reply: "1. [Computer Vision]",
			want:  3,
			exp:   [][]string{{"Computer Vision"}, {"Uncategorized"}, {"Uncategorized"}},
		},
		{
			name:  "unbracketed lines dropped not padded inline",
			reply: "1. [NLP]\n2. Optimization\n3. [Deep Learning]",
			want:  3,
			exp:   [][]string{{"NLP"}, {"Deep Learning"}, {"Uncategorized"}},
		},
		{
			name:  "surrounding chatter ignored",
			reply: "Here you go:\n1. [NLP]\nHope this helps.",
			want:  1,
			exp:   [][]string{{"NLP"}},
		},
		{
			name:  "extra lines kept",
			reply: "1. [A]\n2. [B]\n3. [C]",
			want:  2,
			exp:   [][]string{{"A"}, {"B"}, {"C"}},
		},
		{
			name:  "nothing parsable",
			reply: "I cannot help with that.",
			want:  2,
			exp:   [][]string{{"Uncategorized"}, {"Uncategorized"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, ParseClassifications(tt.reply, tt.want))
		})
	}
}

func TestCanonicalize(t *testing.T) {
	vocab := types.CategorySet{"Deep Learning", "Computer Vision", "Optimization", "NLP", "Reinforcement Learning"}

	got := Canonicalize([]string{"deep learning", " NLP", "Optimisation", "Robotics", "Uncategorized"}, vocab)
	assert.Equal(t, []string{"Deep Learning", "NLP", "Optimization", "Robotics", "Uncategorized"}, got)
}
