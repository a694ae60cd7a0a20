package monster

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cory-johannsen/srdcrawl/internal/statblock"
)

// Fetcher returns the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Pipeline crawls every page listed in a links file.
type Pipeline struct {
	linksPath string
	skip      map[string]bool
	fetcher   Fetcher
	parser    *statblock.Parser
}

// NewPipeline creates a Pipeline over the URLs in linksPath, leaving out any
// URL in skip.
//
// Precondition: fetcher and parser must be non-nil.
func NewPipeline(linksPath string, skip []string, fetcher Fetcher, parser *statblock.Parser) *Pipeline {
	if fetcher == nil || parser == nil {
		panic("monster.NewPipeline: fetcher and parser must be non-nil")
	}
	set := make(map[string]bool, len(skip))
	for _, u := range skip {
		set[u] = true
	}
	return &Pipeline{linksPath: linksPath, skip: set, fetcher: fetcher, parser: parser}
}

// Inputs reads the links file.
func (p *Pipeline) Inputs(_ context.Context) ([]string, error) {
	f, err := os.Open(p.linksPath)
	if err != nil {
		return nil, fmt.Errorf("opening links file: %w", err)
	}
	defer f.Close()
	return ReadLinks(f)
}

// Label returns the page URL.
func (p *Pipeline) Label(url string) string { return url }

// Skip reports whether url is on the skip list.
func (p *Pipeline) Skip(url string) bool { return p.skip[url] }

// Build fetches and parses one page.
func (p *Pipeline) Build(ctx context.Context, url string) (statblock.Monster, error) {
	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return statblock.Monster{}, err
	}
	return ParsePage(bytes.NewReader(body), p.parser)
}

// ReadLinks returns one URL per non-blank line of r, trimmed.
func ReadLinks(r io.Reader) ([]string, error) {
	var links []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			links = append(links, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading links: %w", err)
	}
	return links, nil
}

// Name returns the record name of m.
func Name(m statblock.Monster) string { return m.Name }
