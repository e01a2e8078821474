package task

import (
	"testing"
	"time"
)

// fixedValidator validates against a frozen clock so due-date rules are
// deterministic.
func fixedValidator(now time.Time) *Validator {
	return &Validator{Now: func() time.Time { return now }}
}

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func validTask() *Task {
	t := New("Buy groceries")
	t.Due = testNow.Add(24 * time.Hour)
	t.CategoryID = "cat-1"
	t.TagIDs = []string{"tag-1"}
	return t
}

func TestValidateTitleRules(t *testing.T) {
	v := fixedValidator(testNow)

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"empty", "", MsgTitleRequired},
		{"whitespace", "   ", MsgTitleRequired},
		{"too short", "ab", MsgTitleTooShort},
		{"minimum length ok", "abc", ""},
		{"too long", longTitle(101), MsgTitleTooLong},
		{"maximum length ok", longTitle(100), ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tk := validTask()
			tk.Title = tc.title
			errs := v.Validate(tk)
			got := errs[FieldTitle]
			if tc.want == "" {
				if len(got) != 0 {
					t.Errorf("Expected no title errors, got %v", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("Expected exactly 1 title error, got %v", got)
			}
			if got[0] != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got[0])
			}
		})
	}
}

func longTitle(n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = 'x'
	}
	return string(out)
}

func TestValidateDueDate(t *testing.T) {
	v := fixedValidator(testNow)

	tk := validTask()
	tk.Due = testNow.AddDate(0, 0, -1)
	errs := v.Validate(tk)
	if got := errs[FieldDue]; len(got) != 1 || got[0] != MsgDueInPast {
		t.Errorf("Expected [%q], got %v", MsgDueInPast, got)
	}

	// Earlier today is still valid: the comparison is date-only.
	tk.Due = testNow.Add(-2 * time.Hour)
	if errs := v.Validate(tk); len(errs[FieldDue]) != 0 {
		t.Errorf("Expected no due errors for earlier-today, got %v", errs[FieldDue])
	}
}

func TestValidatePriority(t *testing.T) {
	v := fixedValidator(testNow)

	tk := validTask()
	tk.Priority = Priority(99)
	errs := v.Validate(tk)
	if got := errs[FieldPriority]; len(got) != 1 || got[0] != MsgPriorityBad {
		t.Errorf("Expected [%q], got %v", MsgPriorityBad, got)
	}
}

func TestValidateForCreate(t *testing.T) {
	v := fixedValidator(testNow)

	tk := validTask()
	tk.CategoryID = ""
	tk.TagIDs = nil
	errs := v.ValidateForCreate(tk)
	if got := errs[FieldCategory]; len(got) != 1 || got[0] != MsgCategoryNeeded {
		t.Errorf("Expected [%q], got %v", MsgCategoryNeeded, got)
	}
	if got := errs[FieldTags]; len(got) != 1 || got[0] != MsgTagNeeded {
		t.Errorf("Expected [%q], got %v", MsgTagNeeded, got)
	}

	// The creation-only rules do not apply to the edit-time pass.
	if errs := v.Validate(tk); errs.Has() {
		t.Errorf("Expected edit-time validation to pass, got %v", errs)
	}
}

func TestValidateRecomputesFromScratch(t *testing.T) {
	v := fixedValidator(testNow)

	tk := validTask()
	tk.Bind(v)

	tk.SetTitle("ab")
	if got := tk.FieldErrors(FieldTitle); len(got) != 1 || got[0] != MsgTitleTooShort {
		t.Fatalf("Expected [%q], got %v", MsgTitleTooShort, got)
	}

	// Fixing the field must clear its errors, not append to them.
	tk.SetTitle("a proper title")
	if got := tk.FieldErrors(FieldTitle); len(got) != 0 {
		t.Errorf("Expected title errors cleared, got %v", got)
	}
	if tk.HasErrors() {
		t.Errorf("Expected no errors, got %v", tk.Errors())
	}
}

func TestErrorsChangedNotifications(t *testing.T) {
	v := fixedValidator(testNow)

	tk := validTask()
	tk.Bind(v)

	var events []string
	tk.SubscribeErrors(func(field string) { events = append(events, field) })

	tk.SetTitle("ab")
	if len(events) != 1 || events[0] != FieldTitle {
		t.Fatalf("Expected one title event, got %v", events)
	}

	// Same invalid value again: the error set is unchanged, no event.
	events = nil
	tk.SetTitle("xy")
	if len(events) != 0 {
		t.Errorf("Expected no events for unchanged error set, got %v", events)
	}

	// Clearing fires exactly one more event for the field.
	events = nil
	tk.SetTitle("a proper title")
	if len(events) != 1 || events[0] != FieldTitle {
		t.Errorf("Expected one clearing event, got %v", events)
	}
}
