package ns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abraham-mv/huon-test/internal/models"
)

var retrieved = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func bagFor(t *testing.T, name string) models.Bag {
	t.Helper()
	return models.NewBag("1001", time.Date(2019, 4, 2, 0, 0, 0, 0, time.UTC), models.Page{
		Label:     LabelReg,
		Content:   fixture(t, name),
		Retrieved: retrieved,
		CrawlID:   "crawl-ns",
	})
}

func TestExtractFullRegistration(t *testing.T) {
	rec := testSite(0).Extract(bagFor(t, "reg.html"))

	assert.Equal(t, "1001", rec.RID)
	assert.Equal(t, ID, rec.Site)
	assert.Equal(t, models.Meta{
		RID:       "1001",
		Source:    ID,
		CID:       "crawl-ns",
		Added:     retrieved,
		RNum:      "OC-0001234",
		Active:    true,
		StartDate: time.Date(2019, time.March, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2020, time.March, 14, 0, 0, 0, 0, time.UTC),
	}, rec.Meta)
	assert.Equal(t, models.Org{RID: "1001", Name: "Bluenose Fisheries Ltd."}, rec.Org)
	assert.Equal(t, models.Rep{RID: "1001", Name: "Mary Smith"}, rec.Rep)
	assert.Equal(t, []models.Fund{
		{RID: "1001", Source: "Province of Nova Scotia", Amount: 5000},
		{RID: "1001", Source: "ACOA", Amount: 12500.5},
	}, rec.Funds)
	assert.Equal(t, []models.Affiliate{
		{RID: "1001", Name: "Bluenose Holdings"},
		{RID: "1001", Name: "South Shore Packers"},
	}, rec.Affiliates)
	assert.Equal(t, []models.Lobbyist{{RID: "1001", Name: "Mary Smith"}}, rec.Lobbyists)
	assert.Equal(t, []models.Subject{
		{RID: "1001", Name: "Fisheries"},
		{RID: "1001", Name: "Environment"},
	}, rec.Subjects)
	assert.Equal(t, []models.Category{
		{RID: "1001", Category: models.NA, Outcome: "Seeking amendments to the aquaculture licensing regime."},
	}, rec.Categories)
	assert.Equal(t, []models.Target{
		{RID: "1001", Name: "Department of Fisheries and Aquaculture"},
		{RID: "1001", Name: "Office of the Premier"},
	}, rec.Targets)
	assert.Equal(t, []models.Office{{
		RID: "1001", Name: models.NA, Office: models.NA, StartDate: models.DateMin, EndDate: models.DateMax,
	}}, rec.Offices)
}

func TestExtractSparseRegistration(t *testing.T) {
	bag := bagFor(t, "reg_sparse.html")

	meta := Meta(bag)
	assert.Equal(t, "IH-0000077", meta.RNum)
	assert.False(t, meta.Active)
	assert.Equal(t, models.DateMin, meta.StartDate)
	assert.Equal(t, models.DateMax, meta.EndDate)

	assert.Equal(t, models.NotFound, Org(bag).Name)
	assert.Equal(t, "Doe", Rep(bag).Name)
	assert.Equal(t, []models.Fund{{RID: "1001", Source: models.NA, Amount: 0}}, Funds(bag))
	assert.Equal(t, []models.Affiliate{{RID: "1001", Name: models.NotApplicable}}, Affiliates(bag))
	assert.Equal(t, []models.Subject{{RID: "1001", Name: models.NotApplicable}}, Subjects(bag))
	assert.Equal(t, []models.Category{{RID: "1001", Category: models.NA, Outcome: models.NA}}, Categories(bag))
	assert.Equal(t, []models.Target{{RID: "1001", Name: models.NotApplicable}}, Targets(bag))
}

func TestExtractWithoutRegistrationPage(t *testing.T) {
	rec := testSite(0).Extract(models.NewBag("5", time.Time{}))
	assert.Equal(t, models.NotFound, rec.Meta.RNum)
	assert.False(t, rec.Meta.Active)
	assert.Equal(t, models.NotFound, rec.Rep.Name)
	assert.Len(t, rec.Funds, 1)
	assert.Len(t, rec.Categories, 1)
	assert.Equal(t, "5", rec.Offices[0].RID)
}

func TestExtractClientNameReadsOnlyFirstLine(t *testing.T) {
	bag := models.NewBag("1001", time.Time{}, models.Page{
		Label: LabelReg,
		Content: []byte(`<table><tr><td><strong>Lobbying on behalf of (Name of Client)</strong><br> <br>
Suite 200, 1 Water St.</td></tr></table>`),
	})
	assert.Equal(t, models.NotFound, Org(bag).Name)
}
