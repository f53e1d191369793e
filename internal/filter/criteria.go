// Package filter decides which listing records satisfy a set of filter
// constraints.
package filter

import "strings"

// All is the sentinel for enum-like keys. An empty value means the same thing.
const All = "all"

// Key names one filter dimension.
type Key string

const (
	KeyKeyword    Key = "keyword"
	KeyLocation   Key = "location"
	KeyCategory   Key = "category"
	KeyJobType    Key = "jobType"
	KeyExperience Key = "experience"
	KeySalary     Key = "salary"
)

// Keys lists every recognized key in display order.
var Keys = []Key{KeyKeyword, KeyLocation, KeyCategory, KeyJobType, KeyExperience, KeySalary}

type Category string

const (
	CategoryAll         Category = All
	CategoryWhiteCollar Category = "white-collar"
	CategoryBlueCollar  Category = "blue-collar"
)

var Categories = []Category{CategoryAll, CategoryWhiteCollar, CategoryBlueCollar}

type JobType string

const (
	JobTypeAll        JobType = All
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
)

var JobTypes = []JobType{JobTypeAll, JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract}

type Experience string

const (
	ExperienceAll     Experience = All
	ExperienceFresher Experience = "fresher"
	Experience1to3    Experience = "1-3"
	Experience3to5    Experience = "3-5"
	Experience5to10   Experience = "5-10"
	Experience10Plus  Experience = "10+"
)

var Experiences = []Experience{ExperienceAll, ExperienceFresher, Experience1to3, Experience3to5, Experience5to10, Experience10Plus}

// Salary bands are in lakh per annum.
type Salary string

const (
	SalaryAll    Salary = All
	Salary0to3   Salary = "0-3"
	Salary3to6   Salary = "3-6"
	Salary6to10  Salary = "6-10"
	Salary10Plus Salary = "10+"
)

var Salaries = []Salary{SalaryAll, Salary0to3, Salary3to6, Salary6to10, Salary10Plus}

func ParseCategory(s string) Category     { return parseEnum(s, Categories, CategoryAll) }
func ParseJobType(s string) JobType       { return parseEnum(s, JobTypes, JobTypeAll) }
func ParseExperience(s string) Experience { return parseEnum(s, Experiences, ExperienceAll) }
func ParseSalary(s string) Salary         { return parseEnum(s, Salaries, SalaryAll) }

// parseEnum maps unknown values to the sentinel instead of passing them through.
func parseEnum[T ~string](s string, allowed []T, sentinel T) T {
	for _, v := range allowed {
		if string(v) == s {
			return v
		}
	}
	return sentinel
}

// Criteria is the canonical filter state. Free-text fields accept anything;
// enum fields only ever hold values from their vocabulary.
type Criteria struct {
	Keyword    string     `json:"keyword"`
	Location   string     `json:"location"`
	Category   Category   `json:"category"`
	JobType    JobType    `json:"jobType"`
	Experience Experience `json:"experience"`
	Salary     Salary     `json:"salary"`
}

// Default returns criteria with every key at its sentinel.
func Default() Criteria {
	return Criteria{
		Category:   CategoryAll,
		JobType:    JobTypeAll,
		Experience: ExperienceAll,
		Salary:     SalaryAll,
	}
}

// Patch is a partial update. Only listed keys are touched.
type Patch map[Key]string

// Get returns the raw value stored for key.
func (c Criteria) Get(k Key) string {
	switch k {
	case KeyKeyword:
		return c.Keyword
	case KeyLocation:
		return c.Location
	case KeyCategory:
		return string(c.Category)
	case KeyJobType:
		return string(c.JobType)
	case KeyExperience:
		return string(c.Experience)
	case KeySalary:
		return string(c.Salary)
	}
	return ""
}

// With returns a copy of c with k set to v. Unknown keys are ignored and
// unknown enum values collapse to the sentinel. Free text is trimmed so the
// stored value is exactly what the query string carries.
func (c Criteria) With(k Key, v string) Criteria {
	switch k {
	case KeyKeyword:
		c.Keyword = strings.TrimSpace(v)
	case KeyLocation:
		c.Location = strings.TrimSpace(v)
	case KeyCategory:
		c.Category = ParseCategory(v)
	case KeyJobType:
		c.JobType = ParseJobType(v)
	case KeyExperience:
		c.Experience = ParseExperience(v)
	case KeySalary:
		c.Salary = ParseSalary(v)
	}
	return c
}

// Merge applies p on top of c.
func (c Criteria) Merge(p Patch) Criteria {
	for k, v := range p {
		c = c.With(k, v)
	}
	return c
}

// IsSentinel reports whether v leaves a dimension unconstrained. Whitespace
// around free text is ignored so a stray space does not filter everything out.
func IsSentinel(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == All
}

// Active returns the keys that currently constrain the result set.
func (c Criteria) Active() []Key {
	var out []Key
	for _, k := range Keys {
		if !IsSentinel(c.Get(k)) {
			out = append(out, k)
		}
	}
	return out
}

func (c Criteria) HasActive() bool { return len(c.Active()) > 0 }

// Changed lists the keys whose values differ between c and next.
func (c Criteria) Changed(next Criteria) []Key {
	var out []Key
	for _, k := range Keys {
		if c.Get(k) != next.Get(k) {
			out = append(out, k)
		}
	}
	return out
}
