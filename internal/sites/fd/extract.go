package fd

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/abraham-mv/huon-test/internal/extract"
	"github.com/abraham-mv/huon-test/internal/models"
)

const fundsTable = "table.table.table-striped.table-bordered"

// registration is the parsed registration page of one bag. A bag without
// one, or with unparseable content, reads as an empty page so every field
// falls back to its sentinel.
type registration struct {
	rid  string
	page models.Page
	doc  *extract.HTMLDoc
}

func parseBag(bag models.Bag) registration {
	page, _ := bag.Page(LabelRegPage)
	doc, err := extract.NewHTMLDoc(page.Content)
	if err != nil {
		doc, _ = extract.NewHTMLDoc(nil)
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
		Offices:    extract.Offices(r.rid),
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

// Offices is not published by the federal registry.
func Offices(bag models.Bag) []models.Office { return extract.Offices(bag.RID) }

func Subjects(bag models.Bag) []models.Subject { return parseBag(bag).subjects() }

func Categories(bag models.Bag) []models.Category { return parseBag(bag).categories() }

func Targets(bag models.Bag) []models.Target { return parseBag(bag).targets() }

func (r registration) meta() models.Meta {
	status := r.doc.Value("Registration status:").Or("")
	return models.Meta{
		RID:       r.rid,
		Source:    ID,
		CID:       r.page.CrawlID,
		Added:     r.page.Retrieved,
		RNum:      r.doc.Value("Registration Number:").Or(models.NotFound),
		Active:    strings.Contains(status, "Active"),
		StartDate: extract.Date(dateLayout, r.doc.Value("Initial registration start date:")).Or(models.DateMin),
		EndDate:   models.DateMax,
	}
}

// org reads the client name of consultant registrations, or the
// organization name of in-house ones.
func (r registration) org() models.Org {
	name := extract.First(
		r.doc.Value("Client name:"),
		r.doc.Value("In-house Organization name:"),
	).Or(models.NotFound)
	return models.Org{RID: r.rid, Name: name}
}

func (r registration) rep() models.Rep {
	return models.Rep{RID: r.rid, Name: r.doc.Sibling("Client representative", "p").Or(models.NotFound)}
}

func (r registration) funds() []models.Fund {
	return extract.Funds(r.rid, r.doc.Rows(fundsTable))
}

func (r registration) affiliates() []models.Affiliate {
	return extract.Affiliates(r.rid, r.doc.Values("Subsidiary Beneficiary Information"), models.NotApplicable)
}

func (r registration) lobbyists() []models.Lobbyist {
	name := extract.First(
		r.doc.Value("Responsible Officer Name:"),
		r.doc.Value("Lobbyist name:"),
	).Or(models.NotFound)
	return []models.Lobbyist{{RID: r.rid, Name: name}}
}

func (r registration) subjects() []models.Subject {
	return extract.Subjects(r.rid, r.doc.Values("Subject Matters"))
}

// categories pairs each subject-matter category heading with the outcomes
// listed under it.
func (r registration) categories() []models.Category {
	var cats []models.Category
	r.doc.Document().Find("h4.h5.text-primary").Each(func(_ int, h *goquery.Selection) {
		name := extract.Clean(h.Text())
		outcomes, _ := extract.ListItems(extract.Section(h, "h3, h4", "ul")).Get()
		for _, o := range outcomes {
			cats = append(cats, models.Category{RID: r.rid, Category: name, Outcome: o})
		}
	})
	return extract.Categories(r.rid, cats)
}

func (r registration) targets() []models.Target {
	return extract.Targets(r.rid, r.doc.Values("Government Institutions"))
}
