package extraction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BrowserUserAgent is sent with page fetches; many recipe sites reject bare clients
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// maxPageBytes bounds how much of a response body is parsed
const maxPageBytes = 5 << 20

// Page is the text content pulled from an HTML document
type Page struct {
	Text      string
	Title     string
	Thumbnail string
}

// PageFetcher fetches and reduces a web page to text
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*Page, error)
}

// Scraper fetches pages over HTTP
type Scraper struct {
	Client    *http.Client
	UserAgent string
}

// NewScraper returns a Scraper using client
func NewScraper(client *http.Client) *Scraper {
	return &Scraper{Client: client, UserAgent: BrowserUserAgent}
}

// FetchPage downloads url and extracts its visible text
func (s *Scraper) FetchPage(ctx context.Context, url string) (*Page, error) {
	body, err := fetch(ctx, s.Client, url, s.UserAgent)
	if err != nil {
		return nil, inputError(MsgFetchFailed, err)
	}
	defer body.Close()

	page, err := ParsePage(body)
	if err != nil {
		return nil, inputError(MsgFetchFailed, err)
	}
	return page, nil
}

func fetch(ctx context.Context, client *http.Client, url, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}
	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxPageBytes), resp.Body}, nil
}

// skipped subtrees never contribute visible text
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Svg:      true,
	atom.Head:     true,
}

// ParsePage extracts the main text, a fallback title and the og:image of an HTML document
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	page := &Page{}
	var body *html.Node
	var h1 string
	var candidates []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if page.Title == "" && n.Namespace == "" {
					page.Title = collapse(textOf(n, false))
				}
			case atom.Meta:
				if page.Thumbnail == "" && (attr(n, "property") == "og:image" || attr(n, "name") == "og:image") {
					page.Thumbnail = strings.TrimSpace(attr(n, "content"))
				}
			case atom.H1:
				if h1 == "" {
					h1 = collapse(textOf(n, true))
				}
			case atom.Body:
				body = n
			case atom.Article, atom.Main:
				candidates = append(candidates, n)
			}
			if class := strings.ToLower(attr(n, "class")); n.DataAtom != atom.Article && n.DataAtom != atom.Main &&
				(strings.Contains(class, "content") || strings.Contains(class, "recipe")) {
				candidates = append(candidates, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if page.Title == "" {
		page.Title = h1
	}

	for _, c := range candidates {
		if text := collapse(textOf(c, true)); len(text) > len(page.Text) {
			page.Text = text
		}
	}
	if page.Text == "" && body != nil {
		page.Text = collapse(textOf(body, true))
	}
	if page.Text == "" {
		page.Text = collapse(textOf(doc, true))
	}
	return page, nil
}

// textOf concatenates descendant text nodes, optionally skipping non-visible subtrees
func textOf(n *html.Node, visibleOnly bool) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		if visibleOnly && n.Type == html.ElementNode && skipped[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// Truncate keeps at most max runes of s
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := 0
	for i := range s {
		if runes == max {
			return s[:i]
		}
		runes++
	}
	return s
}
