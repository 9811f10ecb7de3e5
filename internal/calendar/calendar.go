// Package calendar pins the broker summary page's two-input date range
// picker to an exact range. Everything here is best-effort: the widget is
// third-party UI, and a range that could not be confirmed still yields
// usable (if default) data, so failures degrade to warnings instead of
// aborting extraction.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"stockbit-analyzer/internal/browser"
	"stockbit-analyzer/internal/utils"
)

// DateRange is an inclusive calendar range. Start must not be after End;
// a single-day query uses Start == End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// SingleDay returns the range covering exactly one day.
func SingleDay(day time.Time) DateRange {
	return DateRange{Start: day, End: day}
}

// Normalized returns the range with endpoints swapped if they were given
// out of order.
func (r DateRange) Normalized() DateRange {
	if r.Start.After(r.End) {
		return DateRange{Start: r.End, End: r.Start}
	}
	return r
}

const (
	startInputSelector = ".broker-summary-filter input[name='startDate']"
	endInputSelector   = ".broker-summary-filter input[name='endDate']"
	dayCellSelector    = ".react-datepicker__day"

	selectRetries = 2
)

// Settle delays give the picker overlay time to open and close. Vars so
// tests can shrink them.
var (
	pickerSettle  = 500 * time.Millisecond
	dismissSettle = 300 * time.Millisecond
)

// displayFormats are the renderings the date inputs have been observed to
// use; verification accepts any of them.
var displayFormats = []string{"02 Jan 2006", "2 Jan 2006"}

type Selector struct {
	surface browser.Surface
	logger  *utils.Logger
}

func NewSelector(surface browser.Surface, logger *utils.Logger) *Selector {
	return &Selector{surface: surface, logger: logger}
}

type endpoint struct {
	name     string
	selector string
	date     time.Time
}

// SelectRange sets both picker endpoints to the requested range and
// verifies the inputs read back as expected, re-attempting each endpoint a
// few times before settling for whatever range the widget ended up with.
func (s *Selector) SelectRange(r DateRange) {
	r = r.Normalized()
	endpoints := []endpoint{
		{name: "start", selector: startInputSelector, date: r.Start},
		{name: "end", selector: endInputSelector, date: r.End},
	}

	for _, ep := range endpoints {
		s.setEndpoint(ep)
	}

	for _, ep := range endpoints {
		confirmed := s.verifyEndpoint(ep)
		for retry := 0; !confirmed && retry < selectRetries; retry++ {
			s.logger.Debug("Re-attempting %s date selection (retry %d)", ep.name, retry+1)
			s.setEndpoint(ep)
			confirmed = s.verifyEndpoint(ep)
		}
		if !confirmed {
			s.logger.Warn("Could not confirm %s date %s; continuing with best-effort range",
				ep.name, ep.date.Format(displayFormats[0]))
		}
	}
}

// setEndpoint opens the endpoint's calendar, clicks the matching day cell,
// and dismisses the overlay with Escape so the next endpoint's click does
// not land on the still-open picker.
func (s *Selector) setEndpoint(ep endpoint) {
	if err := s.surface.Click(ep.selector); err != nil {
		s.logger.Debug("Failed to focus %s date input: %v", ep.name, err)
		return
	}
	time.Sleep(pickerSettle)

	var status string
	if err := s.surface.Evaluate(pickDayScript(ep.date), &status); err != nil {
		s.logger.Debug("Day cell selection script failed for %s: %v", ep.name, err)
	} else if status != "clicked" {
		s.logger.Debug("Day cell selection for %s returned %q", ep.name, status)
	}

	if err := s.surface.PressKey("Escape"); err != nil {
		s.logger.Debug("Failed to dismiss calendar overlay: %v", err)
	}
	time.Sleep(dismissSettle)
}

func (s *Selector) verifyEndpoint(ep endpoint) bool {
	script := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? el.value : ''; })()`,
		ep.selector)

	var value string
	if err := s.surface.Evaluate(script, &value); err != nil {
		s.logger.Debug("Failed to read %s date input: %v", ep.name, err)
		return false
	}
	return DisplayMatches(value, ep.date)
}

// DisplayMatches reports whether an input's display text contains the date
// in any of the known renderings.
func DisplayMatches(value string, date time.Time) bool {
	for _, layout := range displayFormats {
		if strings.Contains(value, date.Format(layout)) {
			return true
		}
	}
	return false
}

// pickDayScript builds the script that clicks the day cell for the target
// date inside the currently visible calendar grid.
//
// Cells from adjacent months carry the same day number, and the widget has
// been seen flagging a wrong cell as "today", so the pick order is: a cell
// whose label names the target month and year; else the "today" cell only
// when its label really is the target date; else the first enabled cell
// that is not flagged "today"; else the first enabled cell. Remaining
// ambiguity is reported back as a status string rather than guessed at.
func pickDayScript(date time.Time) string {
	dayText := fmt.Sprintf("%d", date.Day())
	monthName := date.Month().String()
	year := fmt.Sprintf("%d", date.Year())

	return fmt.Sprintf(`(() => {
		const cells = Array.from(document.querySelectorAll(%q));
		if (cells.length === 0) { return 'no-calendar'; }
		const dayText = %q, monthName = %q, year = %q;
		const labelOf = c => (c.getAttribute('aria-label') || c.getAttribute('title') || '').trim();
		const dayRe = new RegExp('\\b' + dayText + '(st|nd|rd|th)?\\b');
		const labelMatchesMonth = c => labelOf(c).includes(monthName) && labelOf(c).includes(year);
		const labelMatchesDate = c => labelMatchesMonth(c) && dayRe.test(labelOf(c));
		const enabled = cells.filter(c =>
			c.textContent.trim() === dayText &&
			!c.className.includes('--disabled') &&
			c.getAttribute('aria-disabled') !== 'true');
		if (enabled.length === 0) { return 'no-cell'; }
		const isToday = c => c.className.includes('--today');
		let pick = enabled.find(c => labelMatchesMonth(c));
		if (!pick) {
			const today = enabled.find(isToday);
			if (today && labelMatchesDate(today)) {
				pick = today;
			} else {
				pick = enabled.find(c => !isToday(c)) || enabled[0];
			}
		}
		pick.click();
		return 'clicked';
	})()`, dayCellSelector, dayText, monthName, year)
}
