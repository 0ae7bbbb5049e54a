/**
 * @description
 * This file implements field-level validation for subscription records. The
 * validator is a pure function over untyped key/value input (a decoded JSON
 * body): rules run in a fixed order, the first failing rule wins, and on
 * acceptance a normalized domain.Subscription is returned with stripped
 * strings and dates parsed to UTC.
 *
 * Two entry points exist because the create and edit requests arrive with
 * different field naming and date formats: create bodies use camelCase keys
 * with RFC 3339 timestamps, edit bodies use snake_case keys with DD/MM/YYYY
 * dates. Both share one canonical rule set (name 3-100, payment method 3-50,
 * measured after stripping).
 */
package app

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/subtrack/subtrack-service/internal/domain"
)

const (
	nameMinLen          = 3
	nameMaxLen          = 100
	paymentMethodMinLen = 3
	paymentMethodMaxLen = 50
	notesMaxLen         = 500

	editDateLayout = "02/01/2006"
)

var (
	// Characters outside this set are stripped from names and payment
	// methods before length checks.
	disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

	// Notes allow alphanumerics, common punctuation and newlines.
	notesCharset = regexp.MustCompile("^[a-zA-Z0-9 .,!?@#$%^&*()_+\\-=\\[\\]{}|\\\\;:'\",<>/`~\n]*$")

	// Runs of four or more newlines are rejected.
	multiNewline = regexp.MustCompile(`\n{4,}`)
)

// requiredField pairs a body key with the label used in its error message.
type requiredField struct {
	key   string
	label string
}

var createRequired = []requiredField{
	{"name", "Name"},
	{"amount", "Amount"},
	{"date", "Date"},
	{"frequency", "Frequency"},
	{"category", "Category"},
	{"paymentMethod", "Payment method"},
	{"status", "Status"},
}

var updateRequired = []requiredField{
	{"name", "Name"},
	{"amount", "Amount"},
	{"start_date", "Start date"},
	{"frequency", "Frequency"},
	{"category", "Category"},
	{"payment_method", "Payment method"},
	{"status", "Status"},
}

// ValidateCreate checks a create-request body against the rule set and
// returns the normalized record. The start date must not be before now, and
// the businessDaysOnly/autoRenew flags must be present booleans.
func ValidateCreate(input map[string]any, now time.Time) (domain.Subscription, error) {
	if err := checkRequired(input, createRequired); err != nil {
		return domain.Subscription{}, err
	}

	name, err := normalizedName(input["name"])
	if err != nil {
		return domain.Subscription{}, err
	}

	amount, err := positiveAmount(input["amount"])
	if err != nil {
		return domain.Subscription{}, err
	}

	frequency, err := frequencyValue(input["frequency"])
	if err != nil {
		return domain.Subscription{}, err
	}

	startDate, ferr := parseTimestamp(stringValue(input["date"]))
	if ferr != nil {
		return domain.Subscription{}, domain.NewFieldError("date", domain.ErrInvalidFormat, "Invalid date")
	}
	if startDate.Before(now) {
		return domain.Subscription{}, domain.NewFieldError("date", domain.ErrOutOfRange, "Date cannot be in the past")
	}

	businessDaysOnly, ok := input["businessDaysOnly"].(bool)
	if !ok {
		return domain.Subscription{}, domain.NewFieldError("businessDaysOnly", domain.ErrInvalidFormat, "Business days only must be a boolean")
	}

	notes, err := normalizedNotes(input["notes"])
	if err != nil {
		return domain.Subscription{}, err
	}

	category, err := categoryValue(input["category"])
	if err != nil {
		return domain.Subscription{}, err
	}

	paymentMethod, err := normalizedPaymentMethod(input["paymentMethod"])
	if err != nil {
		return domain.Subscription{}, err
	}

	status, err := statusValue(input["status"])
	if err != nil {
		return domain.Subscription{}, err
	}

	autoRenew, ok := input["autoRenew"].(bool)
	if !ok {
		return domain.Subscription{}, domain.NewFieldError("autoRenew", domain.ErrInvalidFormat, "Auto renew must be a boolean")
	}

	finalDate, err := finalDateValue(input["finalDate"], "finalDate", parseTimestamp, startDate, now)
	if err != nil {
		return domain.Subscription{}, err
	}

	return domain.Subscription{
		Name:             name,
		Amount:           amount,
		StartDate:        startDate.UTC(),
		Frequency:        frequency,
		BusinessDaysOnly: businessDaysOnly,
		Notes:            notes,
		Category:         category,
		PaymentMethod:    paymentMethod,
		Status:           status,
		AutoRenew:        autoRenew,
		FinalDate:        finalDate,
	}, nil
}

// ValidateUpdate checks an edit-request body and returns the normalized
// record. Editing keeps the original start date legal even when it is in the
// past, and the boolean flags default to false when absent.
func ValidateUpdate(input map[string]any, now time.Time) (domain.Subscription, error) {
	if err := checkRequired(input, updateRequired); err != nil {
		return domain.Subscription{}, err
	}

	name, err := normalizedName(input["name"])
	if err != nil {
		return domain.Subscription{}, err
	}

	amount, err := positiveAmount(input["amount"])
	if err != nil {
		return domain.Subscription{}, err
	}

	frequency, err := frequencyValue(input["frequency"])
	if err != nil {
		return domain.Subscription{}, err
	}

	startDate, ferr := parseEditDate(stringValue(input["start_date"]))
	if ferr != nil {
		return domain.Subscription{}, domain.NewFieldError("start_date", domain.ErrInvalidFormat, "Invalid start date")
	}

	businessDaysOnly, err := optionalBool(input["business_days_only"], "business_days_only", "Business days only must be a boolean")
	if err != nil {
		return domain.Subscription{}, err
	}

	notes, err := normalizedNotes(input["notes"])
	if err != nil {
		return domain.Subscription{}, err
	}

	category, err := categoryValue(input["category"])
	if err != nil {
		return domain.Subscription{}, err
	}

	paymentMethod, err := normalizedPaymentMethod(input["payment_method"])
	if err != nil {
		return domain.Subscription{}, err
	}

	status, err := statusValue(input["status"])
	if err != nil {
		return domain.Subscription{}, err
	}

	autoRenew, err := optionalBool(input["auto_renew"], "auto_renew", "Auto renew must be a boolean")
	if err != nil {
		return domain.Subscription{}, err
	}

	finalDate, err := finalDateValue(input["final_date"], "final_date", parseEditDate, startDate, now)
	if err != nil {
		return domain.Subscription{}, err
	}

	return domain.Subscription{
		Name:             name,
		Amount:           amount,
		StartDate:        startDate.UTC(),
		Frequency:        frequency,
		BusinessDaysOnly: businessDaysOnly,
		Notes:            notes,
		Category:         category,
		PaymentMethod:    paymentMethod,
		Status:           status,
		AutoRenew:        autoRenew,
		FinalDate:        finalDate,
	}, nil
}

// checkRequired rejects the first required field that is absent or empty.
func checkRequired(input map[string]any, fields []requiredField) error {
	for _, f := range fields {
		if !fieldPresent(input[f.key]) {
			return domain.NewFieldError(f.key, domain.ErrMissingField, f.label+" is required")
		}
	}
	return nil
}

// fieldPresent mirrors the truthiness rules the clients rely on: empty and
// whitespace-only strings, zero numbers and nil all count as missing.
func fieldPresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case json.Number:
		n, err := t.Float64()
		return err != nil || n != 0
	default:
		return true
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func normalizedName(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", domain.NewFieldError("name", domain.ErrInvalidFormat, "Name must be a string")
	}
	s = strings.TrimSpace(disallowedChars.ReplaceAllString(s, ""))
	if len(s) < nameMinLen || len(s) > nameMaxLen {
		return "", domain.NewFieldError("name", domain.ErrInvalidFormat,
			fmt.Sprintf("Name must be between %d and %d characters", nameMinLen, nameMaxLen))
	}
	return s, nil
}

// positiveAmount accepts JSON numbers and numeric strings. Non-numeric input
// is a format error; zero or negative input is an out-of-range error.
func positiveAmount(v any) (float64, error) {
	var (
		amount float64
		err    error
	)
	switch t := v.(type) {
	case float64:
		amount = t
	case json.Number:
		amount, err = t.Float64()
	case string:
		amount, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		err = fmt.Errorf("amount has unsupported type %T", v)
	}
	if err != nil {
		return 0, domain.NewFieldError("amount", domain.ErrInvalidFormat, "Amount must be a positive number")
	}
	if amount <= 0 {
		return 0, domain.NewFieldError("amount", domain.ErrOutOfRange, "Amount must be a positive number")
	}
	return amount, nil
}

func frequencyValue(v any) (domain.Frequency, error) {
	f := domain.Frequency(stringValue(v))
	if !f.Valid() {
		return "", domain.NewFieldError("frequency", domain.ErrInvalidEnumValue, "Frequency is not permitted.")
	}
	return f, nil
}

func categoryValue(v any) (domain.Category, error) {
	c := domain.Category(stringValue(v))
	if !c.Valid() {
		return "", domain.NewFieldError("category", domain.ErrInvalidEnumValue, "Category is not permitted.")
	}
	return c, nil
}

func statusValue(v any) (domain.Status, error) {
	s := domain.Status(stringValue(v))
	if !s.Valid() {
		return "", domain.NewFieldError("status", domain.ErrInvalidEnumValue, "Status is not permitted.")
	}
	return s, nil
}

func normalizedNotes(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, domain.NewFieldError("notes", domain.ErrInvalidFormat, "Notes contain invalid characters")
	}
	if s == "" {
		return nil, nil
	}
	if len(s) > notesMaxLen {
		return nil, domain.NewFieldError("notes", domain.ErrInvalidFormat,
			fmt.Sprintf("Notes must be less than %d characters", notesMaxLen))
	}
	if !notesCharset.MatchString(s) || multiNewline.MatchString(s) {
		return nil, domain.NewFieldError("notes", domain.ErrInvalidFormat, "Notes contain invalid characters")
	}
	return &s, nil
}

func normalizedPaymentMethod(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", domain.NewFieldError("paymentMethod", domain.ErrInvalidFormat, "Payment method must be a string")
	}
	s = strings.TrimSpace(disallowedChars.ReplaceAllString(s, ""))
	if len(s) < paymentMethodMinLen || len(s) > paymentMethodMaxLen {
		return "", domain.NewFieldError("paymentMethod", domain.ErrInvalidFormat,
			fmt.Sprintf("Payment method must be between %d and %d characters", paymentMethodMinLen, paymentMethodMaxLen))
	}
	return s, nil
}

// optionalBool enforces the boolean type only when the key is present.
func optionalBool(v any, field, message string) (bool, error) {
	if v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, domain.NewFieldError(field, domain.ErrInvalidFormat, message)
	}
	return b, nil
}

// finalDateValue parses and checks the optional final date: it must be
// parsable, not in the past, and not before the start date.
func finalDateValue(v any, field string, parse func(string) (time.Time, error), startDate, now time.Time) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		if !ok {
			return nil, domain.NewFieldError(field, domain.ErrInvalidFormat, "Invalid final date")
		}
		return nil, nil
	}
	parsed, err := parse(s)
	if err != nil {
		return nil, domain.NewFieldError(field, domain.ErrInvalidFormat, "Invalid final date")
	}
	if parsed.Before(now) {
		return nil, domain.NewFieldError(field, domain.ErrOutOfRange, "Final date cannot be in the past")
	}
	if parsed.Before(startDate) {
		return nil, domain.NewFieldError(field, domain.ErrOutOfRange, "Final date cannot be before the start date")
	}
	utc := parsed.UTC()
	return &utc, nil
}

// parseTimestamp accepts the RFC 3339 instants the create form posts, falling
// back to a bare calendar date.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseEditDate accepts the strict DD/MM/YYYY format the edit form posts.
func parseEditDate(s string) (time.Time, error) {
	return time.Parse(editDateLayout, strings.TrimSpace(s))
}
