package account

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

var namePattern = regexp.MustCompile(`^\p{Lu}[\p{L}'-]+$`)

// DisposableEmailDomains are rejected at registration. Override before
// building a lifecycle to customize the blocklist.
var DisposableEmailDomains = []string{
	"mailinator.com",
	"yopmail.com",
	"guerrillamail.com",
	"10minutemail.com",
	"tempmail.com",
	"trashmail.com",
}

// RegistrationMessage is the candidate payload for a new account.
type RegistrationMessage struct {
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone_number"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirm_password"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	// UseHashid derives the account ID deterministically from the email
	UseHashid bool `json:"-"`
}

// Validate runs the registration pipeline: every rule returns a typed
// failure reason before any domain logic executes.
func (m RegistrationMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.FirstName,
			validation.Required,
			validation.Length(2, 50),
			validation.Match(namePattern),
		),
		validation.Field(&m.LastName,
			validation.Required,
			validation.Length(2, 50),
			validation.Match(namePattern),
		),
		validation.Field(&m.Email,
			validation.Required,
			is.Email,
			validation.By(nonDisposableEmail),
		),
		validation.Field(&m.Phone,
			validation.Required,
			validation.By(validPhoneNumber),
		),
		validation.Field(&m.Password,
			validation.Required,
			validation.Length(8, 72),
			validation.By(strongPassword),
		),
		validation.Field(&m.ConfirmPassword,
			validation.Required,
		),
	)
}

// ProfileUpdateMessage carries the mutable profile attributes. Blank fields
// are left untouched by the merge.
type ProfileUpdateMessage struct {
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

func (m ProfileUpdateMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.FirstName,
			validation.Length(2, 50),
			validation.Match(namePattern),
		),
		validation.Field(&m.LastName,
			validation.Length(2, 50),
			validation.Match(namePattern),
		),
		validation.Field(&m.DateOfBirth,
			validation.By(pastDate),
		),
	)
}

// ChangePasswordMessage carries a password rotation request.
type ChangePasswordMessage struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (m ChangePasswordMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.CurrentPassword, validation.Required),
		validation.Field(&m.NewPassword,
			validation.Required,
			validation.Length(8, 72),
			validation.By(strongPassword),
		),
		validation.Field(&m.ConfirmPassword, validation.Required),
	)
}

func nonDisposableEmail(value any) error {
	email, _ := value.(string)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return nil
	}

	domain := strings.ToLower(email[at+1:])
	for _, blocked := range DisposableEmailDomains {
		if domain == blocked {
			return errors.New("disposable email addresses are not accepted")
		}
	}

	return nil
}

func validPhoneNumber(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}

	num, err := phonenumbers.Parse(raw, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number in international format")
	}

	return nil
}

func strongPassword(value any) error {
	password, _ := value.(string)
	if password == "" {
		return nil
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return errors.New("must contain an uppercase letter, a lowercase letter, a digit, and a special character")
	}

	return nil
}

func pastDate(value any) error {
	date, _ := value.(*time.Time)
	if date == nil {
		return nil
	}

	if !date.Before(time.Now()) {
		return errors.New("must be a date in the past")
	}

	return nil
}
