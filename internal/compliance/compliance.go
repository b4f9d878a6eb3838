// server/internal/compliance/compliance.go

// Package compliance classifies establishments by their time-relative FSIC
// status. Every function is pure given "now"; the calendar day, month and year
// are always read in now.Location().
package compliance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"fsic-records-api-server/internal/models"
)

// StartOfYear returns January 1, 00:00 of now's year. The renewal cycle resets there.
func StartOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}

// DayBounds returns [midnight, next midnight) around now.
func DayBounds(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// ParseMonth accepts "June", "jun", "JUNE" or "6".
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty month")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month %d out of range", n)
		}
		return time.Month(n), nil
	}

	fold := cases.Fold()
	in := fold.String(s)
	for m := time.January; m <= time.December; m++ {
		name := fold.String(m.String())
		if in == name || in == name[:3] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

// CanonicalMonth is the single representation written to the store.
func CanonicalMonth(s string) (string, error) {
	m, err := ParseMonth(s)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// MonthPattern matches every stored spelling of m that ParseMonth accepts:
// the full or three-letter name in any case, or the number with optional
// sign and leading zeros. Due queries send it to the store as a
// case-insensitive regex, and IsDueThisMonth evaluates the same pattern.
func MonthPattern(m time.Month) string {
	name := strings.ToLower(m.String())
	return fmt.Sprintf(`^\s*(?:%s|%s|\+?0*%d)\s*$`, name, name[:3], int(m))
}

var monthMatchers = func() map[time.Month]*regexp.Regexp {
	out := make(map[time.Month]*regexp.Regexp, 12)
	for m := time.January; m <= time.December; m++ {
		out[m] = regexp.MustCompile("(?i)" + MonthPattern(m))
	}
	return out
}()

// MatchesMonth reports whether a stored due month denotes m.
func MatchesMonth(stored string, m time.Month) bool {
	re, ok := monthMatchers[m]
	return ok && re.MatchString(stored)
}

// NormalizeDueDate validates a due slot and rewrites it canonically.
// A nil slot stays nil.
func NormalizeDueDate(d *models.DueDate) (*models.DueDate, error) {
	if d == nil {
		return nil, nil
	}
	if strings.TrimSpace(d.Month) == "" && strings.TrimSpace(d.Day) == "" {
		return nil, nil
	}
	m, err := ParseMonth(d.Month)
	if err != nil {
		return nil, fmt.Errorf("invalid due month: %w", err)
	}
	out := &models.DueDate{Month: m.String()}
	if day := strings.TrimSpace(d.Day); day != "" {
		n, err := strconv.Atoi(day)
		// 2024 is a leap year so February 29 stays a valid slot.
		if err != nil || n < 1 || n > daysIn(m, 2024) {
			return nil, fmt.Errorf("invalid due day %q for %s", d.Day, m)
		}
		out.Day = strconv.Itoa(n)
	}
	return out, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsDueThisMonth reports whether e's due slot falls in now's month and it has
// not been issued yet this calendar year. A record never issued is not due.
func IsDueThisMonth(e models.Establishment, now time.Time) bool {
	if e.DueDate == nil || e.LastIssuanceDate == nil {
		return false
	}
	if !MatchesMonth(e.DueDate.Month, now.Month()) {
		return false
	}
	return e.LastIssuanceDate.Before(StartOfYear(now))
}

// IsDueListed is the due report membership test: due this month and active.
func IsDueListed(e models.Establishment, now time.Time) bool {
	return e.IsActive && IsDueThisMonth(e, now)
}

// HasInspectionToday reports whether an active e is scheduled for inspection
// on now's calendar day.
func HasInspectionToday(e models.Establishment, now time.Time) bool {
	if !e.IsActive || e.InspectionDate == nil {
		return false
	}
	start, end := DayBounds(now)
	at := *e.InspectionDate
	return !at.Before(start) && at.Before(end)
}

// ToggleCompliance flips between the two compliance values. Anything else,
// including an empty value, becomes Compliant.
func ToggleCompliance(current string) string {
	if current == models.Compliant {
		return models.NonCompliant
	}
	return models.Compliant
}

// DueLabel renders a due slot as "June 15".
func DueLabel(d *models.DueDate) string {
	if d == nil {
		return ""
	}
	month := d.Month
	if m, err := ParseMonth(d.Month); err == nil {
		month = m.String()
	}
	if d.Day == "" {
		return month
	}
	return month + " " + d.Day
}

// Flatten shapes e into a due report row.
func Flatten(e models.Establishment) models.DueEstablishment {
	row := models.DueEstablishment{
		ID:                      e.ID.Hex(),
		FSICNumber:              e.FSICNumber,
		DueDateLabel:            DueLabel(e.DueDate),
		LastIssuanceDate:        e.LastIssuanceDate,
		Compliance:              e.Compliance,
		EstablishmentName:       e.EstablishmentName,
		OwnerName:               e.OwnerName,
		Representative:          e.Representative,
		TradeName:               e.TradeName,
		Address:                 e.Address,
		Barangay:                e.Barangay,
		ContactNumber:           e.ContactNumber,
		Email:                   e.Email,
		BusinessType:            e.BusinessType,
		OccupancyClassification: e.OccupancyClassification,
		BuildingType:            e.BuildingType,
	}
	if e.DueDate != nil {
		row.DueMonth = e.DueDate.Month
		if m, err := ParseMonth(e.DueDate.Month); err == nil {
			row.DueMonth = m.String()
		}
		row.DueDay = e.DueDate.Day
	}
	return row
}
