package models

import "time"

// Sentinels substituted when a field cannot be extracted.
const (
	NotFound      = "Not found"
	NotApplicable = "Not applicable"
	NA            = "NA"
)

var (
	DateMin = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	DateMax = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

type Meta struct {
	RID       string    `json:"rid"`
	Source    string    `json:"source"`
	CID       string    `json:"cid,omitempty"`
	Added     time.Time `json:"added"`
	RNum      string    `json:"rnum"`
	Active    bool      `json:"active"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Org struct {
	RID  string `json:"rid"`
	Name string `json:"name"`
}

type Rep struct {
	RID  string `json:"rid"`
	Name string `json:"name"`
}

type Fund struct {
	RID    string  `json:"rid"`
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
}

type Affiliate struct {
	RID  string `json:"rid"`
	Name string `json:"name"`
}

type Lobbyist struct {
	RID  string `json:"rid"`
	Name string `json:"name"`
}

type Office struct {
	RID       string    `json:"rid"`
	Name      string    `json:"name"`
	Office    string    `json:"office"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Subject struct {
	RID  string `json:"rid"`
	Name string `json:"name"`
}

type Category struct {
	RID      string `json:"rid"`
	Category string `json:"category"`
	Outcome  string `json:"outcome"`
}

type Target struct {
	RID  string `json:"rid"`
	Name string `json:"name"`
}

// Record is everything extracted from one bag, ready for persistence.
type Record struct {
	RID        string      `json:"rid"`
	Site       string      `json:"site"`
	RDate      time.Time   `json:"rdate"`
	Meta       Meta        `json:"meta"`
	Org        Org         `json:"org"`
	Rep        Rep         `json:"rep"`
	Funds      []Fund      `json:"funds"`
	Affiliates []Affiliate `json:"affiliates"`
	Lobbyists  []Lobbyist  `json:"lobbyists"`
	Offices    []Office    `json:"offices"`
	Subjects   []Subject   `json:"subjects"`
	Categories []Category  `json:"categories"`
	Targets    []Target    `json:"targets"`
}
