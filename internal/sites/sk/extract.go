package sk

import (
	"fmt"
	"strings"

	"github.com/abraham-mv/huon-test/internal/extract"
	"github.com/abraham-mv/huon-test/internal/models"
)

func listed(label string) string {
	return fmt.Sprintf(`//label[contains(text(), '%s')]/following-sibling::ul[1]/li`, label)
}

func tabled(label string) string {
	return fmt.Sprintf(`//label[contains(text(), '%s')]/following-sibling::table[1]`, label)
}

type registration struct {
	rid  string
	page models.Page
	doc  *extract.XPathDoc
}

func parseBag(bag models.Bag) registration {
	page, _ := bag.Page(LabelMain)
	doc, err := extract.NewXPathDoc(page.Content)
	if err != nil {
		doc, _ = extract.NewXPathDoc(nil)
	}
	return registration{rid: bag.RID, page: page, doc: doc}
}

func (s *Site) Extract(bag models.Bag) models.Record {
	r := parseBag(bag)
	return models.Record{
		RID:        bag.RID,
		Site:       ID,
		RDate:      bag.RDate,
		Meta:       r.meta(),
		Org:        r.org(),
		Rep:        r.rep(),
		Funds:      r.funds(),
		Affiliates: r.affiliates(),
		Lobbyists:  r.lobbyists(),
		Offices:    r.offices(),
		Subjects:   r.subjects(),
		Categories: r.categories(),
		Targets:    r.targets(),
	}
}

func Meta(bag models.Bag) models.Meta { return parseBag(bag).meta() }

func Org(bag models.Bag) models.Org { return parseBag(bag).org() }

func Rep(bag models.Bag) models.Rep { return parseBag(bag).rep() }

func Funds(bag models.Bag) []models.Fund { return parseBag(bag).funds() }

func Affiliates(bag models.Bag) []models.Affiliate { return parseBag(bag).affiliates() }

func Lobbyists(bag models.Bag) []models.Lobbyist { return parseBag(bag).lobbyists() }

func Offices(bag models.Bag) []models.Office { return parseBag(bag).offices() }

func Subjects(bag models.Bag) []models.Subject { return parseBag(bag).subjects() }

func Categories(bag models.Bag) []models.Category { return parseBag(bag).categories() }

func Targets(bag models.Bag) []models.Target { return parseBag(bag).targets() }

func (r registration) meta() models.Meta {
	status := r.doc.Value(labelled("Status:")).Or("")
	return models.Meta{
		RID:       r.rid,
		Source:    ID,
		CID:       r.page.CrawlID,
		Added:     r.page.Retrieved,
		RNum:      r.doc.Value(labelled("Registration Number:")).Or(models.NotFound),
		Active:    strings.EqualFold(status, "Active"),
		StartDate: extract.Date(dateLayout, r.doc.Value(labelled("Start Date:"))).Or(models.DateMin),
		EndDate:   extract.Date(dateLayout, r.doc.Value(labelled("End Date:"))).Or(models.DateMax),
	}
}

func (r registration) org() models.Org {
	name := extract.First(
		r.doc.Value(labelled("Client Name:")),
		r.doc.Value(labelled("Organization Name:")),
	).Or(models.NotFound)
	return models.Org{RID: r.rid, Name: name}
}

func (r registration) rep() models.Rep {
	return models.Rep{RID: r.rid, Name: r.doc.Value(labelled("Client Representative:")).Or(models.NotFound)}
}

func (r registration) funds() []models.Fund {
	return extract.Funds(r.rid, r.doc.Rows(tabled("Government Funding:")))
}

func (r registration) affiliates() []models.Affiliate {
	return extract.Affiliates(r.rid, r.doc.Values(listed("Affiliated Organizations:")), models.NotApplicable)
}

// lobbyists lists every named lobbyist, one paragraph each.
func (r registration) lobbyists() []models.Lobbyist {
	names := extract.Names(r.doc.Values(labelled("Lobbyist Name:")), models.NotFound)
	out := make([]models.Lobbyist, len(names))
	for i, n := range names {
		out[i] = models.Lobbyist{RID: r.rid, Name: n}
	}
	return out
}

// offices reads the prior public offices table: holder, office, start, end.
// Rows with fewer than two cells are skipped.
func (r registration) offices() []models.Office {
	rows, _ := r.doc.Rows(tabled("Public Offices Held:")).Get()
	var out []models.Office
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		o := models.Office{
			RID:       r.rid,
			Name:      cells[0],
			Office:    cells[1],
			StartDate: models.DateMin,
			EndDate:   models.DateMax,
		}
		if len(cells) > 2 {
			o.StartDate = extract.Date(dateLayout, extract.Found(cells[2])).Or(models.DateMin)
		}
		if len(cells) > 3 {
			o.EndDate = extract.Date(dateLayout, extract.Found(cells[3])).Or(models.DateMax)
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return extract.Offices(r.rid)
	}
	return out
}

func (r registration) subjects() []models.Subject {
	return extract.Subjects(r.rid, r.doc.Values(listed("Subject Matter:")))
}

// categories pairs each activity type with its intended outcome.
func (r registration) categories() []models.Category {
	rows, _ := r.doc.Rows(tabled("Lobbying Activities:")).Get()
	var cats []models.Category
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		cat, outcome := cells[0], cells[1]
		if cat == "" {
			cat = models.NA
		}
		if outcome == "" {
			outcome = models.NA
		}
		cats = append(cats, models.Category{RID: r.rid, Category: cat, Outcome: outcome})
	}
	return extract.Categories(r.rid, cats)
}

func (r registration) targets() []models.Target {
	return extract.Targets(r.rid, r.doc.Values(listed("Government Institutions:")))
}
