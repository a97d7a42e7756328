// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/paper-sorter/pkg/types"
)

var promptFuncs = template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"join": strings.Join,
}

// discoveryPromptTmpl asks for the category vocabulary of a set of papers.
var discoveryPromptTmpl = template.Must(template.New("discovery").Funcs(promptFuncs).Parse(`Identify five common research categories from the following titles and abstracts:
{{range .Papers}}Title: {{.Title}}
Abstract: {{.Abstract}}
{{end}}
Do not give any additional explanation. Reply with exactly five category names, one per line, each a single word or short phrase (e.g. Deep Learning, Computer Vision, Reinforcement Learning, NLP, Optimization).
`))

// classificationPromptTmpl asks for one bracketed label list per paper.
// The numbering in the reply is what ParseClassifications keys on.
var classificationPromptTmpl = template.Must(template.New("classification").Funcs(promptFuncs).Parse(`You are a classification model. Categorize each research paper into at least one of these predefined categories: {{join .Categories ", "}}.

Below are the research paper titles and abstracts:
{{range $i, $p := .Papers}}{{inc $i}}. Title: {{$p.Title}}
   Abstract: {{$p.Abstract}}
{{end}}
**STRICTLY return results in this format**:
1. [Category1, Category2]
2. [Category3]
3. [Category1, Category4, Category5]
...

DO NOT include any explanations, missing numbers, or blank lines. Ensure that every paper gets a category.
`))

type promptData struct {
	Papers     []types.PaperText
	Categories []string
}

func renderDiscoveryPrompt(papers []types.PaperText) (string, error) {
	return render(discoveryPromptTmpl, promptData{Papers: papers})
}

func renderClassificationPrompt(papers []types.PaperText, categories types.CategorySet) (string, error) {
	return render(classificationPromptTmpl, promptData{Papers: papers, Categories: categories})
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// geminiAPIBase is the Generative Language API root. Package-level var
// for test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// GeminiBackend sends prompts to the Gemini generateContent endpoint.
type GeminiBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate.
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.Model
	if model == "" {
		model = DefaultModel
	}

	bodyBytes, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", geminiAPIBase, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}
	if len(gResp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}

	var text strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
