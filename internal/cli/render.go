package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/me/nekohub/pkg/model"
)

// render writes v as JSON or YAML according to --output. It reports false
// when the output format is text and the caller should print a table.
func render(w io.Writer, v any) (bool, error) {
	switch flagOutput {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return true, enc.Encode(v)
	}
	return false, nil
}

// postRecord is the structured output shape of a post.
type postRecord struct {
	ID          int       `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Content     string    `json:"content" yaml:"content"`
	Status      string    `json:"status" yaml:"status"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
	IsPublished bool      `json:"isPublished" yaml:"isPublished"`
}

func toRecord(p model.Post) postRecord {
	r := postRecord{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Status:      p.Status(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		IsPublished: p.IsPublished,
	}
	if p.Author != nil {
		r.Author = *p.Author
	}
	return r
}

func printPostTable(w io.Writer, items []model.Post) {
	fmt.Fprintf(w, "%-6s  %-40s  %-10s  %s\n", "ID", "TITLE", "STATUS", "UPDATED")
	fmt.Fprintf(w, "%-6s  %-40s  %-10s  %s\n", "--", "-----", "------", "-------")
	for _, p := range items {
		fmt.Fprintf(w, "%-6d  %-40s  %-10s  %s\n", p.ID, truncate(p.Title, 40), p.Status(), humanTime(p.UpdatedAt))
	}
}

func printPost(w io.Writer, p model.Post) {
	fmt.Fprintf(w, "ID:        %d\n", p.ID)
	fmt.Fprintf(w, "Title:     %s\n", p.Title)
	fmt.Fprintf(w, "Status:    %s\n", p.Status())
	if p.Author != nil && *p.Author != "" {
		fmt.Fprintf(w, "Author:    %s\n", *p.Author)
	}
	fmt.Fprintf(w, "Created:   %s (%s)\n", p.CreatedAt.Format(time.RFC3339), humanTime(p.CreatedAt))
	fmt.Fprintf(w, "Updated:   %s (%s)\n", p.UpdatedAt.Format(time.RFC3339), humanTime(p.UpdatedAt))
	if p.Content != "" {
		fmt.Fprintf(w, "\n%s\n", p.Content)
	}
}

func humanTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
