package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/qaboard/pkg/credential"
)

// Field bounds, in runes after trimming.
const (
	TitleMin    = 5
	TitleMax    = 100
	QuestionMin = 10
	QuestionMax = 500
	AnswerMin   = 5
	AnswerMax   = 500
	UsernameMin = 4
	UsernameMax = 20
)

var validate = validator.New()

// checkLength trims s and enforces [lo, hi] on its rune count.
func checkLength(field, s string, lo, hi int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &BlankFieldError{Field: field}
	}
	n := utf8.RuneCountInString(s)
	if n < lo || n > hi {
		return "", &LengthViolationError{Field: field, Min: lo, Max: hi, Actual: n}
	}
	return s, nil
}

func ValidateQuestionTitle(title string) (string, error) {
	return checkLength("title", title, TitleMin, TitleMax)
}

func ValidateQuestionContent(content string) (string, error) {
	return checkLength("content", content, QuestionMin, QuestionMax)
}

func ValidateAnswerContent(content string) (string, error) {
	return checkLength("content", content, AnswerMin, AnswerMax)
}

// ValidateUsername runs the username scan on the input as typed and then
// the storage bound. Surrounding spaces are specials and fail the scan.
func ValidateUsername(username string) (string, error) {
	if err := credential.EvaluateUsername(username).Err(); err != nil {
		return "", err
	}
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n > UsernameMax {
		return "", &LengthViolationError{Field: "username", Min: UsernameMin, Max: UsernameMax, Actual: n}
	}
	return username, nil
}

// ValidatePassword is not trimmed: whitespace is part of the secret and
// rejected by the scan.
func ValidatePassword(password string) error {
	return credential.EvaluatePassword(password).Err()
}

// ValidateEmail accepts an empty address.
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "omitempty,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// NormalizeMiddleInitial keeps the first rune of s in upper case.
func NormalizeMiddleInitial(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))
}
