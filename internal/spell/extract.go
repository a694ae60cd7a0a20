package spell

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cory-johannsen/srdcrawl/internal/parseerr"
)

// ContentCell selects the cell of a spell list page that holds the spells.
const ContentCell = "body table tbody tr:nth-child(3) td:nth-child(3)"

// placeholders are generic entries that describe a family of spells.
var placeholders = map[string]bool{
	"Greater (Spell Name)": true,
	"Lesser (Spell Name)":  true,
	"Mass (Spell Name)":    true,
}

var (
	schoolPattern = regexp.MustCompile(`^([^(\[]+)(?:\(([^\[]+)\))?(?:\[(.+)\])?$`)
	blockRow      = regexp.MustCompile(`^([^:]+)\s*:\s*(.+)$`)
	mojibake      = strings.NewReplacer("â€™", "'")
)

type extractState int

const (
	stateOpen extractState = iota
	stateSchool
	stateBlock
	stateDescription
)

// Extract reads a spell list page and returns its spells in page order.
//
// Each spell starts at an h6 heading. The next paragraph is the school line,
// then "Key: value" rows follow until the first paragraph, and description
// paragraphs and tables run until the next heading.
//
// Postcondition: returns every spell on the page, or an error naming the
// first spell that could not be read.
func Extract(r io.Reader) ([]RawSpell, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing spell page: %w", err)
	}
	cell := doc.Find(ContentCell).First()
	if cell.Length() == 0 {
		return nil, fmt.Errorf("spell page has no content cell %q", ContentCell)
	}

	var (
		spells []RawSpell
		cur    *RawSpell
		state  = stateOpen
	)
	nodes := cell.Children().Nodes
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch state {
		case stateOpen:
			if n.DataAtom != atom.H6 {
				continue
			}
			name := mojibake.Replace(strings.TrimSpace(textContent(n)))
			if placeholders[name] {
				continue
			}
			cur = &RawSpell{Name: name}
			state = stateSchool

		case stateSchool:
			if n.DataAtom != atom.P {
				continue
			}
			if err := parseSchool(textContent(n), cur); err != nil {
				return nil, fmt.Errorf("spell %q: %w", cur.Name, err)
			}
			state = stateBlock

		case stateBlock:
			if n.DataAtom == atom.P {
				i--
				state = stateDescription
				continue
			}
			content := textContent(n)
			if strings.TrimSpace(content) == "" {
				continue
			}
			// Unclassed rows carry their value in the following node.
			if attr(n, "class") != "stat-block" && n.NextSibling != nil {
				content += " " + textContent(n.NextSibling)
			}
			m := blockRow.FindStringSubmatch(strings.Join(strings.Fields(content), " "))
			if m == nil {
				return nil, fmt.Errorf("spell %q: %w", cur.Name,
					parseerr.New(parseerr.ErrUnparsedPattern, "spell_block", content))
			}
			key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(m[1])), " ", "_")
			cur.Set(key, strings.TrimSpace(m[2]))

		case stateDescription:
			switch n.DataAtom {
			case atom.H6:
				i--
				state = stateOpen
				spells = append(spells, *cur)
			case atom.Table:
				cur.AdditionalTables = append(cur.AdditionalTables, innerHTML(n))
			default:
				cur.Description = append(cur.Description, mojibake.Replace(textContent(n)))
			}
		}
	}
	if cur != nil && (state == stateBlock || state == stateDescription) {
		spells = append(spells, *cur)
	}
	return spells, nil
}

// parseSchool reads "Conjuration (Creation) [Acid]" into s.
func parseSchool(line string, s *RawSpell) error {
	compact := strings.Join(strings.Fields(line), "")
	m := schoolPattern.FindStringSubmatch(compact)
	if m == nil {
		return parseerr.New(parseerr.ErrUnparsedPattern, "school", line)
	}
	s.School = m[1]
	s.Subschool = m[2]
	if m[3] == "" {
		return nil
	}
	for _, d := range strings.Split(m[3], ",") {
		if d != "seetext" {
			s.Descriptors = append(s.Descriptors, d)
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}
