package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/rivo/uniseg"

	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/posts"
)

const titleWidth = 48

func renderPostTable(w io.Writer, list []posts.Post) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No posts found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tLIKES\tCOMMENTS\tTAGS")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			p.ID,
			truncate(p.Title, titleWidth),
			p.Author.DisplayName(),
			p.Category.Name,
			len(p.Likes),
			len(p.Comments),
			posts.JoinTags(p.Tags, ", "),
		)
	}
	tw.Flush()
}

func renderPost(w io.Writer, p *posts.Post, imageBase string) {
	fmt.Fprintln(w, p.Title)
	fmt.Fprintln(w, strings.Repeat("=", min(uniseg.StringWidth(p.Title), 72)))
	fmt.Fprintf(w, "by %s", p.Author.DisplayName())
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(w, " on %s", p.CreatedAt.Format("Jan 2, 2006"))
	}
	fmt.Fprintln(w)
	if p.Category.Name != "" {
		fmt.Fprintf(w, "Category: %s\n", p.Category.Name)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", posts.JoinTags(p.Tags, ", "))
	}
	if p.FeaturedImage != "" {
		fmt.Fprintf(w, "Image: %s\n", imageURL(imageBase, p.FeaturedImage))
	}
	fmt.Fprintf(w, "\n%s\n\n", p.Content)
	fmt.Fprintf(w, "%d likes, %d comments\n", len(p.Likes), len(p.Comments))
	for _, c := range p.Comments {
		fmt.Fprintf(w, "  [%s] %s: %s\n", c.ID, c.User.DisplayName(), c.Content)
	}
}

func renderCategories(w io.Writer, list []categories.Category) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No categories")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	tw.Flush()
}

// imageURL resolves a stored image path against the backend origin. The
// API base carries an /api suffix that uploads are not served under.
func imageURL(apiBase, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	u, err := url.Parse(apiBase)
	if err != nil {
		return path
	}
	u.Path = "/" + strings.TrimPrefix(path, "/")
	u.RawQuery = ""
	return u.String()
}

// truncate shortens s to at most width terminal cells without splitting a
// grapheme cluster.
func truncate(s string, width int) string {
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	return b.String() + "…"
}
