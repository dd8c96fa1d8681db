package parsing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/jobmarket/internal/skills"
)

// UnknownLocation replaces a missing city or province.
const UnknownLocation = "Unknown"

// NormalizedJob is a raw record reduced to typed fields, ready for persistence.
type NormalizedJob struct {
	Title       string
	Company     string
	City        string
	Province    string
	SalaryMin   int64
	SalaryMax   int64
	PostedDate  *time.Time // nil when absent or unparseable
	IsRemote    bool
	URL         string // empty when the record has no apply link
	Description string
	Skills      []string // canonical names, sorted and unique
}

// Policy decides which missing fields cause a record to be rejected.
// The zero value accepts every record and passes missing values through.
type Policy struct {
	RequireTitle   bool
	RequireCompany bool
}

// LenientPolicy rejects nothing.
func LenientPolicy() Policy {
	return Policy{}
}

// StrictPolicy rejects records without a title or company name.
func StrictPolicy() Policy {
	return Policy{RequireTitle: true, RequireCompany: true}
}

// requiredFields carries the fields a strict policy checks.
type requiredFields struct {
	Title   string `validate:"required_if=RequireTitle true"`
	Company string `validate:"required_if=RequireCompany true"`

	RequireTitle   bool
	RequireCompany bool
}

// Normalizer turns raw records into NormalizedJobs. It has no side effects.
type Normalizer struct {
	vocab    *skills.Vocabulary
	policy   Policy
	validate *validator.Validate
}

// NewNormalizer creates a Normalizer extracting skills with vocab.
func NewNormalizer(vocab *skills.Vocabulary, policy Policy) *Normalizer {
	return &Normalizer{
		vocab:    vocab,
		policy:   policy,
		validate: validator.New(),
	}
}

// Normalize extracts typed fields and the canonical skill set from raw.
// It returns a *RejectedRecord when the policy refuses the record.
func (n *Normalizer) Normalize(raw RawRecord) (*NormalizedJob, error) {
	job := &NormalizedJob{
		Title:       getString(raw, KeyTitle),
		Company:     getString(raw, KeyEmployer),
		City:        getString(raw, KeyCity),
		Province:    getString(raw, KeyState),
		SalaryMin:   getInt(raw, KeyMinSalary),
		SalaryMax:   getInt(raw, KeyMaxSalary),
		PostedDate:  getDate(raw, KeyPostedAt, keyPostedAtUTC),
		IsRemote:    getBool(raw, KeyIsRemote),
		URL:         ExternalURL(raw),
		Description: getString(raw, KeyDescription),
	}

	if job.City == "" {
		job.City = UnknownLocation
	}
	if job.Province == "" {
		job.Province = UnknownLocation
	}

	if err := n.check(job); err != nil {
		return nil, err
	}

	if job.Description != "" {
		job.Skills = n.vocab.Extract(PlainText(job.Description))
	}

	return job, nil
}

func (n *Normalizer) check(job *NormalizedJob) error {
	err := n.validate.Struct(requiredFields{
		Title:          job.Title,
		Company:        job.Company,
		RequireTitle:   n.policy.RequireTitle,
		RequireCompany: n.policy.RequireCompany,
	})
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("failed to validate record: %w", err)
	}

	missing := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		switch fe.Field() {
		case "Title":
			missing = append(missing, KeyTitle)
		case "Company":
			missing = append(missing, KeyEmployer)
		default:
			missing = append(missing, fe.Field())
		}
	}
	return &RejectedRecord{Reason: "missing " + strings.Join(missing, ", ")}
}
