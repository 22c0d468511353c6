package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"langagent/agents"
)

// Format selects the file output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat maps a config value to a Format, defaulting to JSON.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "markdown", "md":
		return FormatMarkdown
	case "html":
		return FormatHTML
	default:
		return FormatJSON
	}
}

func (f Format) extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatHTML:
		return "html"
	default:
		return "json"
	}
}

// Write saves the analysis in the given format under dir and returns the path.
func Write(dir string, state *agents.State, format Format) (string, error) {
	name := fmt.Sprintf("market_analysis_%s_%s.%s",
		sanitizeFilename(state.TargetCompany),
		state.AnalyzedAt.Format("20060102_150405"),
		format.extension(),
	)
	path := filepath.Join(dir, name)

	data, err := render(state, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func render(state *agents.State, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(state.FinalReport), nil
	case FormatHTML:
		return RenderHTML(state.FinalReport), nil
	default:
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal state: %w", err)
		}
		return data, nil
	}
}

// RenderHTML converts the Markdown report to sanitized HTML.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags,
	})
	unsafe := markdown.Render(doc, renderer)

	return bluemonday.UGCPolicy().SanitizeBytes(unsafe)
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFilename makes a company name safe to embed in a filename.
func sanitizeFilename(name string) string {
	s := strings.TrimSpace(name)
	s = unsafeFilenameRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "company"
	}
	return s
}

// Timestamp returns the state's analysis time, or now when unset.
// Used by callers archiving runs.
func Timestamp(state *agents.State) time.Time {
	if state.AnalyzedAt.IsZero() {
		return time.Now()
	}
	return state.AnalyzedAt
}
