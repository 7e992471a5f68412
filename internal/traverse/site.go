// Package traverse defines the contract a registry site implements so one
// engine can crawl it: Seed issues top-level requests, Sections splits fetched
// pages into labeled units, and Parse turns a unit into record identity plus
// further edges.
package traverse

import (
	"time"

	"github.com/abraham-mv/huon-test/internal/models"
)

// Site is one registry's traversal graph and extraction rules.
//
// Seed returns a nil edge once the current runtime mode is exhausted.
// Sections may record the discovered window total on st. Parse returns the
// identity and date to hand to descendants and the edges to fetch next.
// Every method returns an error wrapping one of the fatal errors in this
// package when the page or state does not fit the site's graph.
type Site interface {
	ID() string
	Seed(st *State) (*models.Edge, error)
	Sections(page models.Page, st *State) ([]models.Page, error)
	Parse(page models.Page, parentRID string, parentRDate time.Time) (string, time.Time, []models.Edge, error)
	Extract(bag models.Bag) models.Record
}

// Options carries the static per-site configuration.
type Options struct {
	RootURL   string                    `yaml:"root_url" json:"rootUrl"`
	PageSize  int                       `yaml:"page_size" json:"pageSize"`
	MaxPage   int                       `yaml:"max_page" json:"maxPage"`
	Templates map[string]models.Request `yaml:"templates" json:"templates"`
}

// Template returns a private copy of the named request template.
func (o Options) Template(name string) (models.Request, error) {
	req, ok := o.Templates[name]
	if !ok {
		return models.Request{}, &TemplateError{Name: name}
	}
	return req.Clone(), nil
}
