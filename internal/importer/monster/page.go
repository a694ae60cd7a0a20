// Package monster crawls creature pages and parses their statblocks.
package monster

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cory-johannsen/srdcrawl/internal/statblock"
)

const (
	nameSelector  = "h1#firstHeading.firstHeading"
	tableSelector = "div#mw-content-text > table.monstats"
	namePrefix    = "SRD:"
)

// ParsePage extracts the creature on a wiki page.
//
// Postcondition: a page without a statblock table yields a Monster with only
// Name set. Otherwise every row after the title row is parsed, and any row
// failure fails the whole page.
func ParsePage(r io.Reader, p *statblock.Parser) (statblock.Monster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return statblock.Monster{}, fmt.Errorf("parsing html: %w", err)
	}

	heading := doc.Find(nameSelector).First()
	if heading.Length() == 0 {
		return statblock.Monster{}, fmt.Errorf("page has no %s heading", nameSelector)
	}
	m := statblock.Monster{Name: strings.TrimPrefix(strings.TrimSpace(heading.Text()), namePrefix)}

	table := doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return m, nil
	}

	var (
		title  string
		rows   []statblock.Row
		rowErr error
	)
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			if th := tr.Find("th"); th.Length() > 1 {
				title = th.Eq(1).Text()
			}
			return true
		}
		th, td := tr.Find("th").First(), tr.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			rowErr = fmt.Errorf("statblock row %d has no header or value cell", i)
			return false
		}
		rows = append(rows, statblock.Row{Header: th.Text(), Value: td.Text()})
		return true
	})
	if rowErr != nil {
		return statblock.Monster{}, rowErr
	}

	sb, err := p.ParseRows(title, rows)
	if err != nil {
		return statblock.Monster{}, fmt.Errorf("%s: %w", m.Name, err)
	}
	m.Statblock = sb
	return m, nil
}
