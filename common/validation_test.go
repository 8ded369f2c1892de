package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"coach@club.org", true},
		{"parent.name+u15@domain.co.uk", true},
		{"", false},
		{"invalid", false},
		{"@domain.com", false},
		{"user@", false},
		{"user @domain.com", false},
	}

	for _, tt := range tests {
		result := ValidateEmail(tt.email)
		if result != tt.valid {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, result, tt.valid)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	assert.Nil(t, ValidateRequired("name", "U-15 Elite"))

	err := ValidateRequired("full_name", "   ")
	if assert.NotNil(t, err) {
		assert.Equal(t, "full_name", err.Field)
		assert.Equal(t, "full_name is required", err.Error())
	}
}

func TestValidateOptionalEmail(t *testing.T) {
	assert.Nil(t, ValidateOptionalEmail("email", ""))
	assert.Nil(t, ValidateOptionalEmail("email", " coach@club.org "))

	err := ValidateOptionalEmail("email", "not-an-email")
	if assert.NotNil(t, err) {
		assert.Equal(t, "email", err.Field)
		assert.Contains(t, err.Message, "not-an-email")
	}
}

func TestValidateEnum(t *testing.T) {
	allowed := []string{"skip", "replace"}
	assert.Nil(t, ValidateEnum("action", "skip", allowed))

	err := ValidateEnum("action", "merge", allowed)
	if assert.NotNil(t, err) {
		assert.Equal(t, "action must be one of: skip, replace", err.Message)
	}
}

func TestRecordErrorsJSON(t *testing.T) {
	assert.Equal(t, "", RecordErrorsJSON(nil))

	errs := []RecordError{
		{Index: 0, RowNumber: 1, Name: "Ada Lovelace", Message: "full_name is required"},
		{Index: 4, RowNumber: 6, Name: "U-15 White", Message: "database is locked"},
	}
	encoded := RecordErrorsJSON(errs)
	assert.NotEmpty(t, encoded)
	assert.Equal(t, errs, ParseRecordErrors(encoded))

	assert.Nil(t, ParseRecordErrors("{broken"))
}

func TestParseEntityType(t *testing.T) {
	for _, in := range []string{"players", " Teams ", "COACHES"} {
		_, err := ParseEntityType(in)
		assert.NoError(t, err, in)
	}

	_, err := ParseEntityType("parents")
	assert.EqualError(t, err, "entity_type must be one of: players, teams, coaches")
}

func TestRecordHasAndClone(t *testing.T) {
	r := Record{"email": "a@b.co", "phone": "  "}
	assert.True(t, r.Has("email"))
	assert.False(t, r.Has("phone"))
	assert.False(t, r.Has("missing"))

	c := r.Clone()
	c["email"] = "changed"
	assert.Equal(t, "a@b.co", r["email"])
}
