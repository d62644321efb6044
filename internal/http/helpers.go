package http

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"salonbooks/internal/core"
)

func htmlEscape(s string) string {
	return template.HTMLEscapeString(s)
}

// parseEntryDate reads the "date" form field; a blank field defaults to
// today's date.
func parseEntryDate(r *http.Request) (core.Date, error) {
	v := strings.TrimSpace(r.Form.Get("date"))
	if v == "" {
		return core.DateOf(time.Now()), nil
	}
	return core.ParseDate(v)
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatRupees renders paise as a rupee string for notifications.
func formatRupees(paise int64) string {
	return "₹" + core.Money{Paise: paise}.Display()
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}
