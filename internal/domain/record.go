package domain

import "time"

// Kind identifies which listing screen a record belongs to.
type Kind string

const (
	KindJob        Kind = "job"
	KindService    Kind = "service"
	KindFreelancer Kind = "freelancer"
	KindArticle    Kind = "article"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindJob, KindService, KindFreelancer, KindArticle:
		return Kind(s), true
	}
	return "", false
}

var screens = map[Kind]string{
	KindJob:        "/jobs",
	KindService:    "/services",
	KindFreelancer: "/freelancers",
	KindArticle:    "/news",
}

// Kinds lists every kind in navigation order.
var Kinds = []Kind{KindJob, KindService, KindFreelancer, KindArticle}

// Screen is the listing path that shows records of kind k.
func (k Kind) Screen() string { return screens[k] }

// KindForScreen maps a listing path back to its kind.
func KindForScreen(path string) (Kind, bool) {
	for k, p := range screens {
		if p == path {
			return k, true
		}
	}
	return "", false
}

// Record is one listing item. Records come from a Source and are treated as
// read-only by everything downstream.
type Record struct {
	ID         int64     `json:"id" yaml:"-"`
	Kind       Kind      `json:"kind" yaml:"kind" validate:"required,oneof=job service freelancer article"`
	Title      string    `json:"title" yaml:"title" validate:"required"`
	Company    string    `json:"company" yaml:"company" validate:"required"` // company, provider or author
	Location   string    `json:"location" yaml:"location"`
	Category   string    `json:"category" yaml:"category" validate:"omitempty,oneof=white-collar blue-collar"`
	Type       string    `json:"type" yaml:"type"`
	Status     string    `json:"status" yaml:"status" validate:"omitempty,oneof=open closed"`
	Experience string    `json:"experience,omitempty" yaml:"experience"`
	Salary     string    `json:"salary,omitempty" yaml:"salary"`
	SalaryBand string    `json:"salaryBand,omitempty" yaml:"salary_band"`
	Skills     []string  `json:"skills" yaml:"skills"`
	Summary    string    `json:"summary,omitempty" yaml:"summary"`
	URL        string    `json:"url,omitempty" yaml:"url" validate:"omitempty,url"`
	PostedAt   time.Time `json:"postedAt" yaml:"posted_at"`
}
