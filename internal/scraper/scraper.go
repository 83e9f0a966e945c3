// Package scraper loads saved or live chat pages and extracts page metadata.
//
// A source is either a file path, "-" for standard input, or an http(s) URL.
// The loaded document is parsed once and kept as an html tree so platform
// adapters can select messages from it.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Config holds configuration options for the loader.
//
// This struct allows customization of how remote pages are requested and
// whether progress is rendered to the terminal.
type Config struct {
	// UserAgent is the User-Agent header value sent with HTTP requests
	UserAgent string
	// Timeout specifies the maximum duration to wait for an HTTP request to complete
	Timeout time.Duration
	// MaxBytes caps the size of a page read from any source
	MaxBytes int64
	// Verbose enables banners and summary tables on stderr
	Verbose bool
}

// DefaultConfig returns a default configuration with reasonable values.
//
// Returns:
//   - A Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		UserAgent: "Mozilla/5.0 (compatible; chatmd/1.0)",
		Timeout:   30 * time.Second,
		MaxBytes:  64 << 20,
	}
}

// Metadata holds metadata information extracted from a page.
type Metadata struct {
	// Title is the content of the <title> tag
	Title string
	// Description is the content of the meta description tag
	Description string
}

// Scraper loads one page.
//
// It reads the source, keeps the raw bytes for checksumming and caching,
// and parses them into an html tree.
type Scraper struct {
	// Source is the file path, "-" or URL to load
	Source string
	// Metadata contains extracted metadata from the loaded content
	Metadata Metadata
	// Content holds the parsed HTML document
	Content *html.Node
	// Raw is the page as read from the source
	Raw []byte
	// Config contains all the configuration options for this scraper
	Config *Config
	// client is the HTTP client used for making requests
	client *http.Client
	// stdin is read when Source is "-"
	stdin io.Reader
	// out receives verbose output
	out io.Writer
}

// New creates a new scraper with the given source and configuration.
//
// If config is nil, default configuration will be used.
//
// Parameters:
//   - source: The file path, "-" for stdin, or URL to load
//   - config: The configuration to use for this scraper (or nil for defaults)
//
// Returns:
//   - A new Scraper instance ready to use
func New(source string, config *Config) *Scraper {
	if config == nil {
		config = DefaultConfig()
	}

	return &Scraper{
		Source: source,
		Config: config,
		client: &http.Client{Timeout: config.Timeout},
		stdin:  os.Stdin,
		out:    os.Stderr,
	}
}

// FromBytes creates a scraper over an already loaded page.
func FromBytes(source string, raw []byte) (*Scraper, error) {
	s := New(source, nil)
	if err := s.parse(raw); err != nil {
		return nil, err
	}
	return s, nil
}

// IsURL reports whether source is loaded over HTTP.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// GetContent loads the source and parses it.
//
// Parameters:
//   - ctx: Cancels a remote fetch
//
// Returns:
//   - An error if the content cannot be read or parsed, nil otherwise
func (s *Scraper) GetContent(ctx context.Context) error {
	var (
		raw []byte
		err error
	)

	switch {
	case s.Source == "-":
		raw, err = s.readAll(s.stdin)
	case IsURL(s.Source):
		raw, err = s.fetchURL(ctx, s.Source)
	default:
		raw, err = s.readFile(s.Source)
	}
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}

	return s.parse(raw)
}

func (s *Scraper) parse(raw []byte) error {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	s.Raw = raw
	s.Content = doc
	return nil
}

func (s *Scraper) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.readAll(f)
}

func (s *Scraper) readAll(r io.Reader) ([]byte, error) {
	limit := s.Config.MaxBytes
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("page exceeds %d bytes", limit)
	}
	return data, nil
}

// fetchURL fetches the content of a URL and returns its body
func (s *Scraper) fetchURL(ctx context.Context, urlStr string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		return nil, fmt.Errorf("not HTML content: %s", contentType)
	}

	return s.readAll(resp.Body)
}

// Document wraps the parsed content for selector queries.
func (s *Scraper) Document() (*goquery.Document, error) {
	if s.Content == nil {
		return nil, errors.New("content not found, call GetContent first")
	}
	return goquery.NewDocumentFromNode(s.Content), nil
}

// extractTitle extracts the title from an HTML node
func extractTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := extractTitle(c); title != "" {
			return title
		}
	}

	return ""
}

// extractDescription extracts the meta description from an HTML node
func extractDescription(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		var isDesc, hasContent bool
		var content string

		for _, a := range n.Attr {
			if a.Key == "name" && a.Val == "description" {
				isDesc = true
			}
			if a.Key == "content" {
				content = a.Val
				hasContent = true
			}
		}

		if isDesc && hasContent {
			return content
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if desc := extractDescription(c); desc != "" {
			return desc
		}
	}

	return ""
}

// GetMetadata extracts metadata (title, description) from the HTML content.
//
// It requires that GetContent has been called first to populate the Content field.
//
// Returns:
//   - An error if the content hasn't been loaded yet, nil otherwise
func (s *Scraper) GetMetadata() error {
	if s.Content == nil {
		return errors.New("content not found, call GetContent first")
	}

	s.Metadata.Title = extractTitle(s.Content)
	s.Metadata.Description = extractDescription(s.Content)

	return nil
}

// MainContent finds the main content node in an HTML document.
//
// It looks for common content containers like <main>, <article>, or elements with
// id="content" or id="main". If none are found, it falls back to the <body> element.
//
// Parameters:
//   - doc: The HTML document to search in
//
// Returns:
//   - The main content node or nil if not found
func MainContent(doc *html.Node) *html.Node {
	var mainNode *html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "main" || n.Data == "article" {
				mainNode = n
				return
			}
			for _, a := range n.Attr {
				if a.Key == "id" && (a.Val == "content" || a.Val == "main") {
					mainNode = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
			if mainNode != nil {
				return
			}
		}
	}
	f(doc)

	if mainNode == nil {
		mainNode = findBody(doc)
	}

	return mainNode
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}
