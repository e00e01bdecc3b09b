// Package credential classifies candidate usernames and passwords with a
// single-pass character scan.
//
// The scan is a small state machine. Every rune is classified as upper case,
// lower case, digit, an allowed special character, or other. An "other" rune
// rejects the input on the spot and nothing after it is examined. Reaching the
// end of input without a rejection finishes the scan and the observed classes
// are checked against the policy.
//
// Evaluations are pure: each call returns its own Result, so the package is
// safe for concurrent use.
package credential

import "strings"

// State is the terminal state of a scan.
type State int

const (
	Scanning State = iota
	Rejected
	Done
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Rejected:
		return "rejected"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Fixed messages returned by the evaluators.
const (
	MsgInvalidCharacter = "*** Error *** An invalid character has been found!"
	MsgPasswordEmpty    = "*** Error *** The password is empty!"
	MsgUsernameEmpty    = "*** Error *** The username is empty!"

	msgNotSatisfied = "conditions were not satisfied"
)

// Requirement names, in the order they are reported.
const (
	ReqUpperCase  = "Upper case"
	ReqLowerCase  = "Lower case"
	ReqDigit      = "Numeric digits"
	ReqSpecial    = "Special character"
	ReqLongEnough = "Long Enough"
)

// SpecialChars is the allowed special character set shared by both policies.
const SpecialChars = "~`!@#$%^&*()_-+{}[]|:,.?/"

// Flags records which character classes a scan observed.
type Flags struct {
	Upper      bool `json:"upper"`
	Lower      bool `json:"lower"`
	Digit      bool `json:"digit"`
	Special    bool `json:"special"`
	LongEnough bool `json:"long_enough"`
	Other      bool `json:"other"`
}

// Result is the outcome of a single evaluation.
type Result struct {
	State   State
	Message string
	Flags   Flags

	// ErrorIndex is the rune index of the rejected character, or the input
	// length when requirements were missing. It is -1 on success.
	ErrorIndex int
}

// OK reports whether the input satisfied the policy.
func (r Result) OK() bool { return r.Message == "" }

// Err returns the result as an error, or nil when the input is acceptable.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Result: r}
}

// Policy describes what a scan accepts and which classes it requires.
type Policy struct {
	// Target names the kind of input, used for the empty-input message.
	Target string

	// Threshold is the zero-based index at which the input counts as long
	// enough. The minimum length is therefore Threshold+1.
	Threshold int

	// Specials lists the non-alphanumeric characters the scan accepts.
	Specials string

	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool

	// ForbidSpecial reports an observed special character as a failed
	// requirement even though the scan accepted it.
	ForbidSpecial bool

	EmptyMessage string
}

// UsernamePolicy accepts letters, digits, specials and space, needs at least
// four characters and reports any special character as disqualifying.
var UsernamePolicy = Policy{
	Target:        "username",
	Threshold:     3,
	Specials:      SpecialChars + " ",
	ForbidSpecial: true,
	EmptyMessage:  MsgUsernameEmpty,
}

// PasswordPolicy needs at least six characters with one of each class.
var PasswordPolicy = Policy{
	Target:         "password",
	Threshold:      5,
	Specials:       SpecialChars,
	RequireUpper:   true,
	RequireLower:   true,
	RequireDigit:   true,
	RequireSpecial: true,
	EmptyMessage:   MsgPasswordEmpty,
}

// EvaluateUsername scans input against UsernamePolicy.
func EvaluateUsername(input string) Result {
	return Evaluate(input, UsernamePolicy)
}

// EvaluatePassword scans input against PasswordPolicy.
func EvaluatePassword(input string) Result {
	return Evaluate(input, PasswordPolicy)
}

// Evaluate runs the scan for an arbitrary policy.
func Evaluate(input string, p Policy) Result {
	res := Result{State: Scanning, ErrorIndex: -1}

	if input == "" {
		res.State = Rejected
		res.ErrorIndex = 0
		res.Message = p.EmptyMessage
		return res
	}

	idx := 0
	for _, ch := range input {
		switch {
		case ch >= 'A' && ch <= 'Z':
			res.Flags.Upper = true
		case ch >= 'a' && ch <= 'z':
			res.Flags.Lower = true
		case ch >= '0' && ch <= '9':
			res.Flags.Digit = true
		case strings.ContainsRune(p.Specials, ch):
			res.Flags.Special = true
		default:
			res.State = Rejected
			res.Flags.Other = true
			res.ErrorIndex = idx
			res.Message = MsgInvalidCharacter
			return res
		}

		if idx >= p.Threshold {
			res.Flags.LongEnough = true
		}
		idx++
	}
	res.State = Done

	var missing []string
	if p.RequireUpper && !res.Flags.Upper {
		missing = append(missing, ReqUpperCase)
	}
	if p.RequireLower && !res.Flags.Lower {
		missing = append(missing, ReqLowerCase)
	}
	if p.RequireDigit && !res.Flags.Digit {
		missing = append(missing, ReqDigit)
	}
	if (p.RequireSpecial && !res.Flags.Special) || (p.ForbidSpecial && res.Flags.Special) {
		missing = append(missing, ReqSpecial)
	}
	if !res.Flags.LongEnough {
		missing = append(missing, ReqLongEnough)
	}

	if len(missing) == 0 {
		return res
	}

	res.ErrorIndex = idx
	res.Message = strings.Join(missing, "; ") + "; " + msgNotSatisfied
	return res
}
