package extract

import (
	"github.com/abraham-mv/huon-test/internal/models"
)

// Names converts a list field into at least one name, using sentinel when the
// list is absent or empty.
func Names(f Field[[]string], sentinel string) []string {
	names, ok := f.Get()
	if !ok || len(names) == 0 {
		return []string{sentinel}
	}
	return names
}

// Funds builds one fund per table row. Rows with fewer than two cells are
// skipped, an unparseable amount becomes 0, and an absent or empty table
// yields a single sentinel fund.
func Funds(rid string, rows Field[[][]string]) []models.Fund {
	var funds []models.Fund
	tbl, _ := rows.Get()
	for _, cells := range tbl {
		if len(cells) < 2 {
			continue
		}
		source := Clean(cells[0])
		if source == "" {
			source = models.NA
		}
		funds = append(funds, models.Fund{
			RID:    rid,
			Source: source,
			Amount: Amount(Found(cells[1])).Or(0),
		})
	}
	if len(funds) == 0 {
		return []models.Fund{{RID: rid, Source: models.NA, Amount: 0}}
	}
	return funds
}

func Affiliates(rid string, f Field[[]string], sentinel string) []models.Affiliate {
	names := Names(f, sentinel)
	out := make([]models.Affiliate, len(names))
	for i, n := range names {
		out[i] = models.Affiliate{RID: rid, Name: n}
	}
	return out
}

func Subjects(rid string, f Field[[]string]) []models.Subject {
	names := Names(f, models.NotApplicable)
	out := make([]models.Subject, len(names))
	for i, n := range names {
		out[i] = models.Subject{RID: rid, Name: n}
	}
	return out
}

func Targets(rid string, f Field[[]string]) []models.Target {
	names := Names(f, models.NotApplicable)
	out := make([]models.Target, len(names))
	for i, n := range names {
		out[i] = models.Target{RID: rid, Name: n}
	}
	return out
}

// Offices returns the single placeholder office used by registries that do
// not publish office history.
func Offices(rid string) []models.Office {
	return []models.Office{{
		RID:       rid,
		Name:      models.NA,
		Office:    models.NA,
		StartDate: models.DateMin,
		EndDate:   models.DateMax,
	}}
}

// Categories guarantees at least one category record.
func Categories(rid string, cats []models.Category) []models.Category {
	if len(cats) == 0 {
		return []models.Category{{RID: rid, Category: models.NA, Outcome: models.NA}}
	}
	return cats
}
