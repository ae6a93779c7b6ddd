// Package dealcheck implements the line-item validation rules enforced on
// step 2 of the deal wizard. The same rule table backs both entry points:
// Check is the cheap predicate evaluated on every form change to gate the
// save control, CheckWithError additionally produces the first failure
// message and runs only at explicit save time.
package dealcheck

import (
	"fmt"
	"strings"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// ErrNoLineItems is the list-level failure message
const ErrNoLineItems = "Please add at least one line item"

// itemRule is one per-item validation rule. ok returns true when the rule
// passes or does not apply; message is the user-facing fragment appended to
// the item's 1-based position.
type itemRule struct {
	ok      func(li *models.LineItem) bool
	message string
}

// Rules are evaluated in order; the first failure wins.
var itemRules = []itemRule{
	{
		ok: func(li *models.LineItem) bool {
			return li.ProductID != nil && li.UnitPrice != nil
		},
		message: "Product and price are required",
	},
	{
		ok: func(li *models.LineItem) bool {
			return !li.RequiresScheduling || li.DateScheduled != nil
		},
		message: "Scheduled date is required",
	},
	{
		ok: func(li *models.LineItem) bool {
			return li.RequiresScheduling || strings.TrimSpace(li.NoScheduleReason) != ""
		},
		message: "No-schedule reason is required",
	},
	{
		ok: func(li *models.LineItem) bool {
			if li.ScheduledStartTime == "" || li.ScheduledEndTime == "" {
				return true
			}
			// "HH:MM" strings compare correctly lexicographically
			return li.ScheduledStartTime < li.ScheduledEndTime
		},
		message: "Start time must be before end time",
	},
}

// Check reports whether every line item passes every rule. It allocates no
// messages and is safe to call on every render.
func Check(items []models.LineItem) bool {
	if len(items) == 0 {
		return false
	}
	for i := range items {
		for _, r := range itemRules {
			if !r.ok(&items[i]) {
				return false
			}
		}
	}
	return true
}

// CheckWithError walks the same rule table and returns the first failure as
// a user-facing message, or "" when the list is valid.
func CheckWithError(items []models.LineItem) string {
	if len(items) == 0 {
		return ErrNoLineItems
	}
	for i := range items {
		for _, r := range itemRules {
			if !r.ok(&items[i]) {
				return fmt.Sprintf("Line item %d: %s", i+1, r.message)
			}
		}
	}
	return ""
}
