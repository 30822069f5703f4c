package fields_test

import (
	"errors"
	"testing"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *fields.Registry {
	t.Helper()
	reg, err := fields.NewRegistry([]domain.Field{
		{ID: "NAME", Label: "Name", Kind: domain.FieldText},
		{ID: "IDENTIFICATION", Label: "Identification", Kind: domain.FieldChoice, Choices: "id_types",
			Branches: map[string]string{"sa_id_option": "SA_ID", "passport_option": "PASSPORT"}},
		{ID: "SA_ID", Label: "SA ID", Kind: domain.FieldText, Hidden: true},
		{ID: "PASSPORT", Label: "Passport", Kind: domain.FieldText, Hidden: true},
		{ID: "MOBILE_NUMBER", Label: "Mobile Number", Kind: domain.FieldContact},
		{ID: "LOCATION", Label: "Location", Kind: domain.FieldLocation},
		{ID: "GENDER", Label: "Gender", Kind: domain.FieldChoice, Choices: "genders"},
	}, map[string][]domain.Choice{
		"id_types": {{ID: "sa_id_option", Label: "SA ID"}, {ID: "passport_option", Label: "Passport"}},
		"genders":  {{ID: "female", Label: "Female"}, {ID: "male", Label: "Male"}},
	})
	require.NoError(t, err)
	return reg
}

func session() *domain.Session {
	s := domain.NewSession("p")
	s.Level = "self"
	return s
}

func TestNewRegistry_Invalid(t *testing.T) {
	lists := map[string][]domain.Choice{
		"two": {{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
	}
	tests := []struct {
		name   string
		fields []domain.Field
	}{
		{"duplicate id", []domain.Field{{ID: "X", Kind: domain.FieldText}, {ID: "X", Kind: domain.FieldText}}},
		{"unknown kind", []domain.Field{{ID: "X", Kind: "photo"}}},
		{"missing list", []domain.Field{{ID: "X", Kind: domain.FieldChoice, Choices: "nope"}}},
		{"unknown next", []domain.Field{{ID: "X", Kind: domain.FieldText, Next: "Y"}}},
		{"branch on text", []domain.Field{{ID: "X", Kind: domain.FieldText, Branches: map[string]string{"a": "X"}}}},
		{"missing branch", []domain.Field{
			{ID: "X", Kind: domain.FieldChoice, Choices: "two", Branches: map[string]string{"a": "Y"}},
			{ID: "Y", Kind: domain.FieldText},
		}},
		{"same target", []domain.Field{
			{ID: "X", Kind: domain.FieldChoice, Choices: "two", Branches: map[string]string{"a": "Y", "b": "Y"}},
			{ID: "Y", Kind: domain.FieldText},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fields.NewRegistry(tt.fields, lists)
			assert.Error(t, err)
		})
	}
}

func TestRegistry_MenuSkipsHiddenFields(t *testing.T) {
	reg := testRegistry(t)
	var ids []string
	for _, f := range reg.Menu() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"NAME", "IDENTIFICATION", "MOBILE_NUMBER", "LOCATION", "GENDER"}, ids)
}

func TestRegistry_ResolveChoice(t *testing.T) {
	reg := testRegistry(t)
	f, _ := reg.Field("IDENTIFICATION")

	c, ok := reg.ResolveChoice(f, "  passport ")
	require.True(t, ok)
	assert.Equal(t, "passport_option", c.ID)

	c, ok = reg.ResolveChoice(f, "sa_id_option")
	require.True(t, ok)
	assert.Equal(t, "SA ID", c.Label)

	_, ok = reg.ResolveChoice(f, "Driver's licence")
	assert.False(t, ok)
}

func TestCollector_MenuIsIdempotent(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	s := session()

	first := c.Menu(s)
	second := c.Menu(s)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.ModeReplace, first.Mode)
	assert.Equal(t, "Please select a field to update.", first.Text)
	require.Len(t, first.Options, 4)
	assert.Equal(t, []domain.Option{{Label: "Submit", Value: "SUBMIT"}, {Label: "Done", Value: "END"}}, first.Options[3])
}

func TestCollector_MenuAfterAnswer(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	s := session()

	_, _, err := c.Prompt(s, "NAME", false)
	require.NoError(t, err)
	_, err = c.Record(s, domain.Text("p", "Thandi"))
	require.NoError(t, err)
	assert.True(t, s.Resuming)

	menu := c.Menu(s)
	assert.Equal(t, domain.ModeNew, menu.Mode)
	assert.Equal(t, "Got it! Please select a field to update.", menu.Text)
	assert.Equal(t, "✅ Name", menu.Options[0][0].Label)
	assert.Equal(t, "Identification", menu.Options[0][1].Label)
	assert.False(t, s.Resuming, "rendering the menu resets the flag")

	assert.Equal(t, domain.ModeReplace, c.Menu(s).Mode)
}

func TestCollector_PromptByKind(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	s := session()

	_, r, err := c.Prompt(s, "NAME", false)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeReplace, r.Mode)
	assert.Equal(t, "Okay, please write and send the information", r.Text)
	assert.Equal(t, "NAME", s.CurrentField)

	_, r, _ = c.Prompt(s, "MOBILE_NUMBER", false)
	assert.Equal(t, domain.ReplyContact, r.Reply)
	assert.Equal(t, domain.ModeNew, r.Mode)

	_, r, _ = c.Prompt(s, "LOCATION", false)
	assert.Equal(t, domain.ReplyLocation, r.Reply)

	f, r, _ := c.Prompt(s, "GENDER", false)
	assert.Equal(t, domain.FieldChoice, f.Kind)
	assert.Equal(t, []string{"Female", "Male"}, r.Choices)

	_, _, err = c.Prompt(s, "SHOE_SIZE", false)
	assert.ErrorIs(t, err, fields.ErrUnknownField)
}

func TestCollector_Branching(t *testing.T) {
	tests := []struct {
		answer string
		next   string
	}{
		{"SA ID", "SA_ID"},
		{"Passport", "PASSPORT"},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			c := fields.NewCollector(testRegistry(t))
			s := session()
			_, _, err := c.Prompt(s, "IDENTIFICATION", false)
			require.NoError(t, err)

			ans, err := c.Record(s, domain.Text("p", tt.answer))
			require.NoError(t, err)
			assert.Equal(t, tt.next, ans.Next)
			assert.False(t, s.Resuming, "a branch keeps collecting instead of showing the menu")

			_, r, err := c.Prompt(s, ans.Next, true)
			require.NoError(t, err)
			assert.Equal(t, domain.ModeNew, r.Mode)

			_, err = c.Record(s, domain.Text("p", "A1234567"))
			require.NoError(t, err)
			assert.True(t, s.Resuming)
			assert.Equal(t, "A1234567", s.Records["self"][tt.next].Text)
		})
	}
}

func TestCollector_HiddenFieldOnlyAsFollowUp(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	s := session()

	_, _, err := c.Prompt(s, "SA_ID", false)
	assert.ErrorIs(t, err, fields.ErrUnknownField)
	assert.Empty(t, s.CurrentField)

	_, _, err = c.Prompt(s, "SA_ID", true)
	require.NoError(t, err)
	assert.Equal(t, "SA_ID", s.CurrentField)
}

func TestCollector_ReansweringBranchDropsOtherBranch(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	s := session()

	answer := func(field string, followUp bool, value string) fields.Answer {
		t.Helper()
		_, _, err := c.Prompt(s, field, followUp)
		require.NoError(t, err)
		ans, err := c.Record(s, domain.Text("p", value))
		require.NoError(t, err)
		return ans
	}

	ans := answer("IDENTIFICATION", false, "SA ID")
	answer(ans.Next, true, "8001015009087")
	require.True(t, s.Records["self"].Has("SA_ID"))

	ans = answer("IDENTIFICATION", false, "Passport")
	assert.Equal(t, "PASSPORT", ans.Next)
	assert.False(t, s.Records["self"].Has("SA_ID"))
	answer(ans.Next, true, "A1234567")

	got := s.Records["self"].Flatten(c.Registry().Fields())
	assert.Equal(t, map[string]string{
		"Identification": "Passport",
		"Passport":       "A1234567",
	}, got)
}

func TestCollector_InvalidChoiceIsRejected(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	s := session()
	_, _, err := c.Prompt(s, "IDENTIFICATION", false)
	require.NoError(t, err)

	_, err = c.Record(s, domain.Text("p", "Library card"))

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "IDENTIFICATION", verr.Field)
	assert.Empty(t, s.Records["self"])
	assert.Equal(t, "IDENTIFICATION", s.CurrentField, "the same field is asked again")

	r, err := c.Reprompt(s)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "does not fit")
	assert.Equal(t, domain.ReplyChoice, r.Reply)
}

func TestCollector_KindMismatch(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))

	tests := []struct {
		field string
		ev    domain.Event
	}{
		{"MOBILE_NUMBER", domain.Text("p", "0821234567")},
		{"LOCATION", domain.Text("p", "Johannesburg")},
		{"LOCATION", domain.SharedLocation("p", domain.Location{Latitude: 91})},
		{"NAME", domain.SharedContact("p", domain.Contact{Phone: "1"})},
		{"NAME", domain.Text("p", "   ")},
	}
	for _, tt := range tests {
		s := session()
		_, _, err := c.Prompt(s, tt.field, false)
		require.NoError(t, err)

		_, err = c.Record(s, tt.ev)
		var verr *domain.ValidationError
		assert.True(t, errors.As(err, &verr), "%s with %s", tt.field, tt.ev.Kind)
	}
}

func TestCollector_StructuredAnswers(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	s := session()

	c.Prompt(s, "MOBILE_NUMBER", false)
	_, err := c.Record(s, domain.SharedContact("p", domain.Contact{Phone: "+27821234567", FirstName: "T"}))
	require.NoError(t, err)

	c.Prompt(s, "LOCATION", false)
	_, err = c.Record(s, domain.SharedLocation("p", domain.Location{Latitude: -33.9249, Longitude: 18.4241}))
	require.NoError(t, err)

	assert.Equal(t, "Mobile Number: +27821234567\nLocation: -33.9249,18.4241", c.Summary(s))
}

func TestCollector_RecordWithoutCursor(t *testing.T) {
	c := fields.NewCollector(testRegistry(t))
	_, err := c.Record(session(), domain.Text("p", "x"))
	assert.ErrorIs(t, err, fields.ErrNoCurrentField)
}

func TestCollector_SummaryEmpty(t *testing.T) {
	c := fields.NewCollector(testRegistry(t), fields.WithTexts(fields.Texts{SummaryEmpty: "Nothing captured."}))
	assert.Equal(t, "Nothing captured.", c.Summary(session()))
}
