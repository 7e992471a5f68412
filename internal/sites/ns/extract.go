package ns

import (
	"github.com/abraham-mv/huon-test/internal/extract"
	"github.com/abraham-mv/huon-test/internal/models"
)

// Registration page anchors. Labels and values sit in adjacent table rows,
// or as text following a <strong> label in the same cell.
const (
	rnumExpr      = `//tr[td/strong[contains(text(), 'Registration Number')]]/following-sibling::tr[1]/td[1]`
	statusExpr    = `//tr[td/strong[contains(text(), 'Status')]]/following-sibling::tr[1]/td[2]`
	startDateExpr = `//tr[td/strong[normalize-space(text())='Initial registration date']]/following-sibling::tr[1]/td[1]`
	endDateExpr   = `//tr[td/strong[normalize-space(text())='Initial registration date']]/following-sibling::tr[1]/td[2]`

	orgExpr       = `//td/strong[normalize-space(text())='Lobbying on behalf of (Name of Client)']/following-sibling::text()[1]`
	firstNameExpr = `//strong[contains(text(), "Lobbyist's First Name")]/following-sibling::text()[1]`
	lastNameExpr  = `//strong[contains(text(), "Lobbyist's Last Name")]/following-sibling::text()[1]`

	fundsExpr = `//table[contains(@class, 'table-striped') and contains(@class, 'table-bordered')]`

	// The registry misspells the heading as "Activites".
	affiliatesExpr = `//table[contains(@class, 'innertable') and contains(., 'Other Beneficiaries of Lobbying Activ')]//tr[@bgcolor='#FFFFFF']/td[1]`

	descriptionExpr = `//strong[contains(text(), 'I. Description')]/ancestor::tr[1]/following-sibling::tr[1]/td`
	subjectsExpr    = `//strong[contains(text(), 'II. Subject Matter')]/ancestor::tr[1]/following-sibling::tr[1]/td/table[contains(@class, 'innertable')]//tr/td`
	targetsExpr     = `//strong[contains(text(), 'III. Lobby Targets')]/ancestor::tr[1]/following-sibling::tr[1]/td/table[contains(@class, 'innertable')]//tr/td`
)

type registration struct {
	rid  string
	page models.Page
	doc  *extract.XPathDoc
}

func parseBag(bag models.Bag) registration {
	page, _ := bag.Page(LabelReg)
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

func Offices(bag models.Bag) []models.Office { return extract.Offices(bag.RID) }

func Subjects(bag models.Bag) []models.Subject { return parseBag(bag).subjects() }

func Categories(bag models.Bag) []models.Category { return parseBag(bag).categories() }

func Targets(bag models.Bag) []models.Target { return parseBag(bag).targets() }

// meta treats any published status other than "Inactive" as active.
func (r registration) meta() models.Meta {
	status, ok := r.doc.Value(statusExpr).Get()
	return models.Meta{
		RID:       r.rid,
		Source:    ID,
		CID:       r.page.CrawlID,
		Added:     r.page.Retrieved,
		RNum:      r.doc.Value(rnumExpr).Or(models.NotFound),
		Active:    ok && status != "Inactive",
		StartDate: extract.Date(dateLayout, r.doc.Value(startDateExpr)).Or(models.DateMin),
		EndDate:   extract.Date(dateLayout, r.doc.Value(endDateExpr)).Or(models.DateMax),
	}
}

func (r registration) org() models.Org {
	return models.Org{RID: r.rid, Name: r.doc.Value(orgExpr).Or(models.NotFound)}
}

// rep joins the lobbyist's first and last names; either half may be absent.
func (r registration) rep() models.Rep {
	first, fok := r.doc.Value(firstNameExpr).Get()
	last, lok := r.doc.Value(lastNameExpr).Get()
	switch {
	case fok && lok:
		return models.Rep{RID: r.rid, Name: first + " " + last}
	case fok:
		return models.Rep{RID: r.rid, Name: first}
	case lok:
		return models.Rep{RID: r.rid, Name: last}
	}
	return models.Rep{RID: r.rid, Name: models.NotFound}
}

func (r registration) funds() []models.Fund {
	return extract.Funds(r.rid, r.doc.Rows(fundsExpr))
}

func (r registration) affiliates() []models.Affiliate {
	return extract.Affiliates(r.rid, r.doc.Values(affiliatesExpr), models.NotApplicable)
}

// lobbyists is the registrant named on the page, the same person as rep.
func (r registration) lobbyists() []models.Lobbyist {
	return []models.Lobbyist{{RID: r.rid, Name: r.rep().Name}}
}

func (r registration) subjects() []models.Subject {
	return extract.Subjects(r.rid, r.doc.Values(subjectsExpr))
}

// categories carries the free-text description as the outcome; the registry
// has no separate category name.
func (r registration) categories() []models.Category {
	desc, ok := r.doc.Value(descriptionExpr).Get()
	if !ok {
		return extract.Categories(r.rid, nil)
	}
	return []models.Category{{RID: r.rid, Category: models.NA, Outcome: desc}}
}

func (r registration) targets() []models.Target {
	return extract.Targets(r.rid, r.doc.Values(targetsExpr))
}
