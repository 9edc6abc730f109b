package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// User modes.
const (
	ModeSignUp = "signUp"
	ModeUpdate = "update"
)

const (
	maxEmailLen = 254
	// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
)

// Advisory age range used by data generation. Not a hard rule.
const (
	MinAdvisoryAge = 18
	MaxAdvisoryAge = 99
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9](?:[a-zA-Z0-9\-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9\-]*[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// ValidateEmail checks address format and length.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLen {
		return fmt.Errorf("email must be at most %d characters", maxEmailLen)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}

// ValidatePassword checks that a password is present and fits bcrypt's input limit.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password %s", msgNotEmpty)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// AgeAdvisory reports whether age falls outside the range seed data is generated in.
// Callers may log it; it never fails validation.
func AgeAdvisory(age int) (string, bool) {
	if age < MinAdvisoryAge || age > MaxAdvisoryAge {
		return fmt.Sprintf("age %d is outside the usual %d-%d range", age, MinAdvisoryAge, MaxAdvisoryAge), true
	}
	return "", false
}

func checkAge(errs *fieldErrors, age int) {
	if errs.has("age") {
		return
	}
	if age < 0 {
		errs.add("age", "must not be negative")
	}
}

// UserInput is a validated user intent. It is either a SignUp or an UpdateProfile.
type UserInput interface {
	Mode() string
	Validate() error
	userInput()
}

// SignUp registers a new account.
type SignUp struct {
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
}

func (SignUp) Mode() string { return ModeSignUp }
func (SignUp) userInput()   {}

func (u SignUp) check(errs *fieldErrors) {
	checkText(errs, "fullName", u.FullName, MaxFullNameLen)
	if !errs.has("password") {
		if err := ValidatePassword(u.Password); err != nil {
			errs.add("password", err.Error())
		}
	}
	checkAge(errs, u.Age)
	if !errs.has("email") {
		if err := ValidateEmail(u.Email); err != nil {
			errs.add("email", err.Error())
		}
	}
}

func (u SignUp) Validate() error {
	var errs fieldErrors
	u.check(&errs)
	return errs.err(SchemaUser, ModeSignUp)
}

func (u SignUp) MarshalJSON() ([]byte, error) {
	type plain SignUp
	return json.Marshal(struct {
		Mode string `json:"mode"`
		plain
	}{ModeSignUp, plain(u)})
}

// UpdateProfile edits the profile fields of an existing user.
// Password and email are not part of this surface.
type UpdateProfile struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
}

func (UpdateProfile) Mode() string { return ModeUpdate }
func (UpdateProfile) userInput()   {}

func (u UpdateProfile) check(errs *fieldErrors) {
	checkID(errs, "id", u.ID)
	checkText(errs, "fullName", u.FullName, MaxFullNameLen)
	checkAge(errs, u.Age)
}

func (u UpdateProfile) Validate() error {
	var errs fieldErrors
	u.check(&errs)
	return errs.err(SchemaUser, ModeUpdate)
}

func (u UpdateProfile) MarshalJSON() ([]byte, error) {
	type plain UpdateProfile
	return json.Marshal(struct {
		Mode string `json:"mode"`
		plain
	}{ModeUpdate, plain(u)})
}

// DecodeUser resolves the mode discriminant of raw and validates the matching shape.
func DecodeUser(raw []byte) (UserInput, error) {
	var errs fieldErrors
	obj, ok := parseObject(raw, &errs)
	if !ok {
		return nil, errs.err(SchemaUser, "")
	}
	mode, ok := resolveMode(obj, ModeSignUp, ModeUpdate)
	if !ok {
		return nil, errs.err(SchemaUser, mode)
	}

	var in interface {
		UserInput
		check(*fieldErrors)
	}
	switch mode {
	case ModeSignUp:
		u := SignUp{
			FullName: obj.str("fullName", true),
			Password: obj.str("password", true),
		}
		age, _ := obj.integer("age", true)
		u.Age = int(age)
		u.Email = obj.str("email", true)
		in = u
	default:
		u := UpdateProfile{}
		u.ID, _ = obj.id("id", true)
		u.FullName = obj.str("fullName", true)
		age, _ := obj.integer("age", true)
		u.Age = int(age)
		in = u
	}
	in.check(&errs)
	if err := errs.err(SchemaUser, mode); err != nil {
		return nil, err
	}
	return in, nil
}
