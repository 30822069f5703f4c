package domain_test

import (
	"testing"

	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Flatten(t *testing.T) {
	fields := []domain.Field{
		{ID: "NAME", Label: "Name", Kind: domain.FieldText},
		{ID: "GENDER", Label: "Gender", Kind: domain.FieldChoice},
		{ID: "MOBILE_NUMBER", Label: "Mobile Number", Kind: domain.FieldContact},
		{ID: "LOCATION", Label: "Location", Kind: domain.FieldLocation},
		{ID: "AGE", Label: "Age", Kind: domain.FieldText},
	}
	r := domain.Record{
		"NAME":          {Kind: domain.FieldText, Text: "Thandi"},
		"GENDER":        {Kind: domain.FieldChoice, Choice: &domain.Choice{ID: "female", Label: "Female"}},
		"MOBILE_NUMBER": {Kind: domain.FieldContact, Contact: &domain.Contact{Phone: "+27821234567"}},
		"LOCATION":      {Kind: domain.FieldLocation, Location: &domain.Location{Latitude: -26.2041, Longitude: 28.0473}},
		"EXTRA":         {Kind: domain.FieldText, Text: "x"},
	}

	got := r.Flatten(fields)

	assert.Equal(t, map[string]string{
		"Name":          "Thandi",
		"Gender":        "Female",
		"Mobile Number": "+27821234567",
		"Location":      "-26.2041,28.0473",
		"EXTRA":         "x",
	}, got)
	assert.NotContains(t, got, "Age", "unanswered fields are omitted")
}

func TestRecord_CloneIsIndependent(t *testing.T) {
	r := domain.Record{
		"LOCATION": {Kind: domain.FieldLocation, Location: &domain.Location{Latitude: 1, Longitude: 2}},
	}
	c := r.Clone()
	c["LOCATION"].Location.Latitude = 9
	c["NAME"] = domain.Value{Kind: domain.FieldText, Text: "n"}

	assert.Equal(t, 1.0, r["LOCATION"].Location.Latitude)
	assert.False(t, r.Has("NAME"))
}

func TestField_Successor(t *testing.T) {
	f := domain.Field{
		ID:       "IDENTIFICATION",
		Kind:     domain.FieldChoice,
		Branches: map[string]string{"sa_id_option": "SA_ID", "passport_option": "PASSPORT"},
	}

	next, ok := f.Successor(domain.Value{Kind: domain.FieldChoice, Choice: &domain.Choice{ID: "passport_option"}})
	assert.True(t, ok)
	assert.Equal(t, "PASSPORT", next)

	_, ok = f.Successor(domain.Value{Kind: domain.FieldChoice, Choice: &domain.Choice{ID: "other"}})
	assert.False(t, ok)

	f.Next = "AGE"
	next, ok = f.Successor(domain.Value{Kind: domain.FieldText, Text: "x"})
	assert.True(t, ok)
	assert.Equal(t, "AGE", next)
}
