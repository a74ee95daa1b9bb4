package tiktok

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// profileMeta is what the server-rendered profile page exposes without JavaScript.
type profileMeta struct {
	Title       string
	OGTitle     string
	Description string
}

var followersPattern = regexp.MustCompile(`(?i)([\d.,]+\s*[KMB]?)\s+Followers`)

func parseProfile(r io.Reader) (profileMeta, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return profileMeta{}, err
	}

	var meta profileMeta
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if meta.Title == "" && n.FirstChild != nil {
					meta.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case atom.Meta:
				content := attr(n, "content")
				switch {
				case attr(n, "name") == "description" && meta.Description == "":
					meta.Description = strings.TrimSpace(content)
				case attr(n, "property") == "og:title" && meta.OGTitle == "":
					meta.OGTitle = strings.TrimSpace(content)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return meta, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// displayName extracts "Name" from titles like "Name (@handle) | TikTok".
func (m profileMeta) displayName(handle string) string {
	for _, t := range []string{m.OGTitle, m.Title} {
		t = strings.TrimSpace(strings.TrimSuffix(t, "| TikTok"))
		if i := strings.Index(t, "(@"); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		if t != "" && !strings.EqualFold(t, "TikTok") {
			return t
		}
	}
	return handle
}

// followers reads the follower count from the meta description when present.
func (m profileMeta) followers() int64 {
	return m.count(followersPattern)
}

func (m profileMeta) count(pattern *regexp.Regexp) int64 {
	match := pattern.FindStringSubmatch(m.Description)
	if match == nil {
		return 0
	}
	return parseCount(match[1])
}

// parseCount reads abbreviated counters such as "987", "12.5K", "1,204" or "3M".
func parseCount(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	if s == "" {
		return 0
	}

	mult := 1.0
	switch s[len(s)-1] {
	case 'K':
		mult = 1e3
	case 'M':
		mult = 1e6
	case 'B':
		mult = 1e9
	}
	if mult > 1 {
		s = strings.TrimSpace(s[:len(s)-1])
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f*mult + 0.5)
}
