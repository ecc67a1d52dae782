package model

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(GenderMale):
		return GenderMale, nil
	case string(GenderFemale):
		return GenderFemale, nil
	case string(GenderOther):
		return GenderOther, nil
	default:
		return "", fmt.Errorf("unknown gender: %s", s)
	}
}

// ContactRequest is a consultation form submission. It exists only for the
// duration of the email send call.
type ContactRequest struct {
	Name    string `json:"name"`
	Age     string `json:"age"`
	Gender  Gender `json:"gender"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (c ContactRequest) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(c.Email) == "" && strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("an email address or phone number is required")
	}
	if _, err := ParseGender(string(c.Gender)); err != nil {
		return err
	}
	return nil
}
