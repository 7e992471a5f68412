// Package classifier recognizes which registry, and which page of its
// traversal, a saved registration page came from.
package classifier

import (
	"regexp"
	"sort"
)

type Classifier struct{}

func New() *Classifier { return &Classifier{} }

// Guess is the registry site and terminal page label of a page.
type Guess struct {
	Site   string            `json:"site"`
	Label  string            `json:"label"`
	Reason map[string]string `json:"reason,omitempty"`
}

type signal struct {
	name   string
	re     *regexp.Regexp
	reason string
}

type profile struct {
	site    string
	label   string
	signals []signal
}

// Ordered so the first profile with the most signals wins ties.
var profiles = []profile{
	{
		site:  "fd",
		label: "regpage",
		signals: []signal{
			{"host", regexp.MustCompile(`(?i)lobbycanada\.gc\.ca`), "federal registry host"},
			{"start", regexp.MustCompile(`(?i)Initial registration start date`), "federal start date label"},
			{"institutions", regexp.MustCompile(`(?i)<h3[^>]*>\s*Government Institutions`), "federal institutions heading"},
			{"subjects", regexp.MustCompile(`(?i)<h3[^>]*>\s*Subject Matters`), "federal subject heading"},
		},
	},
	{
		site:  "ns",
		label: "reg",
		signals: []signal{
			{"host", regexp.MustCompile(`(?i)novascotia\.ca`), "Nova Scotia host"},
			{"changes", regexp.MustCompile(`(?i)Last date of any changes`), "last change row"},
			{"client", regexp.MustCompile(`(?i)Lobbying on behalf of`), "client row"},
			{"targets", regexp.MustCompile(`(?i)III\. Lobby Targets`), "lobby targets section"},
		},
	},
	{
		site:  "sk",
		label: "main",
		signals: []signal{
			{"host", regexp.MustCompile(`(?i)sasklobbyistregistry\.ca`), "Saskatchewan host"},
			{"rnum", regexp.MustCompile(`(?i)<label[^>]*>\s*Registration Number:`), "labelled registration number"},
			{"posted", regexp.MustCompile(`(?i)<label[^>]*>\s*Posted Date:`), "labelled posted date"},
		},
	},
}

// Classify returns the best matching registry page, or false when no
// profile matches at all.
func (c *Classifier) Classify(content []byte) (Guess, bool) {
	best, bestScore := Guess{}, 0
	for _, p := range profiles {
		reason := map[string]string{}
		for _, s := range p.signals {
			if s.re.Match(content) {
				reason[s.name] = s.reason
			}
		}
		if len(reason) > bestScore {
			best = Guess{Site: p.site, Label: p.label, Reason: reason}
			bestScore = len(reason)
		}
	}
	return best, bestScore > 0
}

// Sites lists the sites a classifier can recognize.
func (c *Classifier) Sites() []string {
	var out []string
	for _, p := range profiles {
		out = append(out, p.site)
	}
	sort.Strings(out)
	return out
}
