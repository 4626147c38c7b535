package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

func validRequest() NewRequest {
	return NewRequest{
		Title:         "Fix the sink",
		Category:      CategoryRepairs,
		Location:      "12 Main St",
		ScheduledDate: now.Add(time.Hour),
		Budget:        Budget{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(20)},
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Field
}

func TestValidator_NewRequest(t *testing.T) {
	v := NewValidator(func() time.Time { return now })
	require.NoError(t, v.NewRequest(&NewRequest{
		Title: "x", Category: CategoryOther, Location: "y", ScheduledDate: now.Add(time.Minute),
	}))

	cases := []struct {
		name  string
		edit  func(*NewRequest)
		field string
	}{
		{"missing title", func(r *NewRequest) { r.Title = "" }, "title"},
		{"long title", func(r *NewRequest) { r.Title = strings.Repeat("a", 101) }, "title"},
		{"unknown category", func(r *NewRequest) { r.Category = "gardening" }, "category"},
		{"bad payment method", func(r *NewRequest) { r.PaymentMethod = "cheque" }, "payment_method"},
		{"past date", func(r *NewRequest) { r.ScheduledDate = now }, "scheduled_date"},
		{"negative min", func(r *NewRequest) { r.Budget.Min = decimal.NewFromInt(-1) }, "budget.min"},
		{"max below min", func(r *NewRequest) { r.Budget.Max = decimal.NewFromInt(5) }, "budget.max"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRequest()
			tc.edit(&in)
			err := v.NewRequest(&in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tc.field, fieldOf(t, err))
		})
	}
}

func TestValidator_StructUsesJSONNames(t *testing.T) {
	v := NewValidator(nil)
	err := v.Struct(&HeroProfileInput{DisplayName: "Ada", Skills: []string{"cleaning", "juggling"}})
	assert.Equal(t, "skills[1]", fieldOf(t, err))
	assert.Contains(t, err.Error(), "must be one of")
}

func TestParseRequestStatus(t *testing.T) {
	st, err := ParseRequestStatus("active")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, st)
	assert.False(t, st.Terminal())
	assert.True(t, StatusCancelled.Terminal())

	_, err = ParseRequestStatus("done")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorClasses(t *testing.T) {
	assert.ErrorIs(t, Forbidden("no"), ErrAuthorization)
	assert.ErrorIs(t, Conflict("taken"), ErrConflict)
	assert.EqualError(t, NotFound("hero", "h1"), "hero h1 not found")
	assert.EqualError(t, NotFound("hero", ""), "hero not found")

	ib := &InsufficientBalanceError{Balance: BalanceEarnings, Available: decimal.NewFromInt(3), Requested: decimal.NewFromInt(5)}
	assert.ErrorIs(t, ib, ErrInsufficientBalance)
	assert.Contains(t, ib.Error(), "available 3.00, requested 5.00")

	primary := errors.New("assign failed")
	rb := &RollbackFailureError{RequestID: uuid.New(), AcceptanceID: uuid.New(), Primary: primary, Rollback: NotFound("acceptance", "a")}
	assert.ErrorIs(t, rb, ErrRollbackFailure)
	assert.ErrorIs(t, rb, primary)
	assert.ErrorIs(t, rb, ErrNotFound)
}

func TestBudgetMidpointAndUpdateEmpty(t *testing.T) {
	b := Budget{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(75)}
	assert.True(t, b.Midpoint().Equal(decimal.RequireFromString("62.5")))

	assert.True(t, RequestUpdate{}.Empty())
	title := "new"
	assert.False(t, RequestUpdate{Title: &title}.Empty())
}

func TestHeroProfile_DoesNotShareSkills(t *testing.T) {
	h := &Hero{UserID: "u1", Skills: []string{"repairs", "cleaning"}}

	p := h.Profile()
	p.Skills[0] = "tutoring"
	p.Skills = append(p.Skills, "delivery")
	assert.Equal(t, []string{"repairs", "cleaning"}, h.Skills)

	skills := []string{"other"}
	HeroProfileUpdate{Skills: &skills}.Apply(h)
	skills[0] = "repairs"
	assert.Equal(t, []string{"other"}, h.Skills)
}
