package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/filter"
)

var validate = newValidator()

// newValidator checks the closed vocabularies the filters compare against.
// A record outside them would be stored but never match its filter.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(recordVocab, domain.Record{})
	return v
}

func recordVocab(sl validator.StructLevel) {
	r := sl.Current().Interface().(domain.Record)
	if r.Kind == domain.KindJob && !inVocab(r.Type, filter.JobTypes) {
		sl.ReportError(r.Type, "Type", "Type", "jobtype", "")
	}
	if r.Experience != "" && !inVocab(r.Experience, filter.Experiences) {
		sl.ReportError(r.Experience, "Experience", "Experience", "experience", "")
	}
	if r.SalaryBand != "" && !inVocab(r.SalaryBand, filter.Salaries) {
		sl.ReportError(r.SalaryBand, "SalaryBand", "SalaryBand", "salaryband", "")
	}
}

// inVocab reports whether v is a concrete member of vocab. The sentinel is
// a filter value, never a record value.
func inVocab[T ~string](v string, vocab []T) bool {
	if v == filter.All {
		return false
	}
	for _, x := range vocab {
		if string(x) == v {
			return true
		}
	}
	return false
}

type seedFile struct {
	Records []domain.Record `yaml:"records"`
}

// LoadSeedFile reads records from a YAML file of the form `records: [...]`.
func LoadSeedFile(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := ParseSeed(f)
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return recs, nil
}

// ParseSeed decodes a YAML seed document.
func ParseSeed(r io.Reader) ([]domain.Record, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	return f.Records, nil
}

// ValidateRecords checks every record and reports all problems at once.
func ValidateRecords(recs []domain.Record) error {
	var errs []error
	for i, r := range recs {
		if err := validate.Struct(r); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				for _, fe := range ve {
					errs = append(errs, fmt.Errorf("records[%d].%s failed %q", i, strings.ToLower(fe.Field()), fe.Tag()))
				}
				continue
			}
			errs = append(errs, fmt.Errorf("records[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Seed validates recs and inserts them in one transaction.
func Seed(ctx context.Context, db *sql.DB, recs []domain.Record) (int, error) {
	if err := ValidateRecords(recs); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		if _, err := InsertRecord(ctx, tx, r); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// MockRecords is the built-in data set the listing screens ship with.
// PostedAt is relative to now so freshness windows keep working.
func MockRecords() []domain.Record {
	now := time.Now().UTC()
	ago := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }

	return []domain.Record{
		// jobs
		{
			Kind: domain.KindJob, Title: "Frontend Developer", Company: "TechCorp India",
			Location: "Delhi", Category: "white-collar", Type: "full-time", Status: "open",
			Experience: "1-3", Salary: "₹6-9 LPA", SalaryBand: "6-10",
			Skills:  []string{"React", "TypeScript", "Tailwind"},
			Summary: "Build the candidate-facing web app.", PostedAt: ago(1),
		},
		{
			Kind: domain.KindJob, Title: "Electrician", Company: "PowerFix Services",
			Location: "Rampur, Uttar Pradesh", Category: "blue-collar", Type: "contract", Status: "open",
			Experience: "fresher", Salary: "₹15,000/month", SalaryBand: "0-3",
			Skills:  []string{"Wiring", "Panel installation"},
			Summary: "Residential wiring and repairs.", PostedAt: ago(2),
		},
		{
			Kind: domain.KindJob, Title: "Backend Engineer", Company: "PayKaro",
			Location: "Bengaluru", Category: "white-collar", Type: "full-time", Status: "open",
			Experience: "3-5", Salary: "₹18-25 LPA", SalaryBand: "10+",
			Skills:  []string{"Go", "PostgreSQL", "Kafka"},
			Summary: "Own the payouts service.", PostedAt: ago(3),
		},
		{
			Kind: domain.KindJob, Title: "Delivery Partner", Company: "QuickDrop",
			Location: "Noida", Category: "blue-collar", Type: "part-time", Status: "open",
			Experience: "fresher", Salary: "₹12,000-18,000/month", SalaryBand: "0-3",
			Skills:  []string{"Two-wheeler licence", "Navigation"},
			Summary: "Flexible evening shifts.", PostedAt: ago(1),
		},
		{
			Kind: domain.KindJob, Title: "Marketing Intern", Company: "BrandBazaar",
			Location: "Mumbai", Category: "white-collar", Type: "internship", Status: "open",
			Experience: "fresher", Salary: "₹10,000/month stipend", SalaryBand: "0-3",
			Skills:  []string{"Social media", "Canva"},
			Summary: "Three-month paid internship.", PostedAt: ago(5),
		},
		{
			Kind: domain.KindJob, Title: "Site Supervisor", Company: "Shree Builders",
			Location: "Jaipur", Category: "blue-collar", Type: "full-time", Status: "open",
			Experience: "5-10", Salary: "₹4-5 LPA", SalaryBand: "3-6",
			Skills:  []string{"Civil work", "Team handling"},
			Summary: "Supervise a residential project.", PostedAt: ago(8),
		},
		{
			Kind: domain.KindJob, Title: "Data Analyst", Company: "Insightly",
			Location: "Pune", Category: "white-collar", Type: "contract", Status: "open",
			Experience: "1-3", Salary: "₹5-7 LPA", SalaryBand: "3-6",
			Skills:  []string{"SQL", "Excel", "Power BI"},
			Summary: "Six-month reporting engagement.", PostedAt: ago(4),
		},
		{
			Kind: domain.KindJob, Title: "Engineering Manager", Company: "CloudNine Systems",
			Location: "Hyderabad", Category: "white-collar", Type: "full-time", Status: "open",
			Experience: "10+", Salary: "₹45-60 LPA", SalaryBand: "10+",
			Skills:  []string{"Leadership", "Kubernetes", "Go"},
			Summary: "Lead two platform teams.", PostedAt: ago(6),
		},

		// services
		{
			Kind: domain.KindService, Title: "Home Plumbing Repair", Company: "Sharma Plumbing Works",
			Location: "Delhi", Category: "blue-collar", Type: "on-site", Status: "open",
			Salary: "₹299 onwards", Skills: []string{"Leak repair", "Fittings"},
			Summary: "Same-day visits across Delhi NCR.", PostedAt: ago(2),
		},
		{
			Kind: domain.KindService, Title: "AC Servicing", Company: "CoolAir Experts",
			Location: "Gurugram", Category: "blue-collar", Type: "on-site", Status: "open",
			Salary: "₹499 per unit", Skills: []string{"Split AC", "Gas refill"},
			Summary: "Annual maintenance packages.", PostedAt: ago(3),
		},
		{
			Kind: domain.KindService, Title: "GST Filing", Company: "TaxSaathi",
			Location: "Remote", Category: "white-collar", Type: "remote", Status: "open",
			Salary: "₹999 per return", Skills: []string{"GST", "Accounting"},
			Summary: "Monthly and quarterly returns.", PostedAt: ago(7),
		},

		// freelancers
		{
			Kind: domain.KindFreelancer, Title: "UI/UX Designer", Company: "Priya Verma",
			Location: "Bengaluru", Category: "white-collar", Type: "hourly", Status: "open",
			Experience: "3-5", Salary: "₹1,500/hour", SalaryBand: "10+",
			Skills:  []string{"Figma", "Design systems"},
			Summary: "Mobile-first product design.", PostedAt: ago(1),
		},
		{
			Kind: domain.KindFreelancer, Title: "Go Developer", Company: "Arjun Mehta",
			Location: "Remote", Category: "white-collar", Type: "fixed-price", Status: "open",
			Experience: "5-10", Salary: "₹80,000/project", SalaryBand: "10+",
			Skills:  []string{"Go", "gRPC", "PostgreSQL"},
			Summary: "APIs and backend services.", PostedAt: ago(9),
		},
		{
			Kind: domain.KindFreelancer, Title: "Carpenter", Company: "Ramesh Kumar",
			Location: "Lucknow", Category: "blue-collar", Type: "daily", Status: "open",
			Experience: "10+", Salary: "₹900/day", SalaryBand: "0-3",
			Skills:  []string{"Modular furniture", "Polishing"},
			Summary: "Custom furniture and repairs.", PostedAt: ago(4),
		},

		// news
		{
			Kind: domain.KindArticle, Title: "Hiring in tier-2 cities grows 18% this quarter", Company: "KaamKhojo Desk",
			Location: "India", Category: "white-collar", Type: "report", Status: "open",
			Skills:  []string{"Hiring trends", "Jobs report"},
			Summary: "Jaipur, Lucknow and Indore lead the growth.", PostedAt: ago(2),
		},
		{
			Kind: domain.KindArticle, Title: "Skill India adds 40 new trade certifications", Company: "Neha Singh",
			Location: "New Delhi", Category: "blue-collar", Type: "news", Status: "open",
			Skills:  []string{"Skilling", "Certification"},
			Summary: "Electricians and welders among the new tracks.", PostedAt: ago(5),
		},
	}
}
