package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

type (
	// Status is the review state of an expense claim.
	Status string

	Date struct {
		time.Time
	}

	// ExpenseRecord is a single reimbursement claim scoped to one organization.
	// Vendor, Description and Status are pass-through for the anomaly scorer.
	ExpenseRecord struct {
		ID          string    `json:"id"`
		OrgID       string    `json:"orgId"`
		Employee    string    `json:"employee"`
		Amount      float64   `json:"amount"`
		Category    string    `json:"category"`
		Vendor      string    `json:"vendor,omitempty"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		Status      Status    `json:"status"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyOrg         = errors.New("empty organization")
	ErrEmptyEmployee    = errors.New("empty employee")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 500 characters)")
	ErrInvalidStatus      = errors.New("invalid status")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date in YYYY-MM-DD form; zero dates render empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// IsWeekend reports whether the date falls on a Saturday or Sunday.
// A zero date is never a weekend, so date-driven rules stay inert on
// malformed input.
func (d Date) IsWeekend() bool {
	if d.IsZero() {
		return false
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (s Status) Validate() error {
	switch s {
	case StatusSubmitted, StatusApproved, StatusRejected:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Validate checks an expense on the write path. The anomaly scorer never
// validates; it coerces instead (see CoerceAmount).
func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.OrgID) == "" {
		return ErrEmptyOrg
	}
	if strings.TrimSpace(e.Employee) == "" {
		return ErrEmptyEmployee
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 500 {
		return ErrDescriptionTooLong
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return e.Status.Validate()
}
