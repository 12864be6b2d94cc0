package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Address is a shipping address snapshot. Orders carry a copy; saved
// addresses live under the customer.
type Address struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Country  string `json:"country,omitempty"`
}

// Profile is the customer record at users/{uid}.
type Profile struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Notification is a message addressed to one customer.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	OrderID   string    `json:"orderId,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidateAddress trims a and checks the fields a courier needs. Phone must
// have 10 digits once spaces, dashes and a leading +91 are removed; pincode
// must have 6.
func ValidateAddress(a Address) (Address, error) {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Email = strings.TrimSpace(a.Email)
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Country = strings.TrimSpace(a.Country)
	a.Phone = normalizePhone(a.Phone)
	a.Pincode = strings.ReplaceAll(strings.TrimSpace(a.Pincode), " ", "")

	var missing []string
	if a.FullName == "" {
		missing = append(missing, "fullName")
	}
	if !allDigits(a.Phone, 10) {
		missing = append(missing, "phone")
	}
	if a.Line1 == "" {
		missing = append(missing, "line1")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.State == "" {
		missing = append(missing, "state")
	}
	if !allDigits(a.Pincode, 6) {
		missing = append(missing, "pincode")
	}
	if len(missing) > 0 {
		return a, fmt.Errorf("%w: address fields invalid: %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return a, nil
}

func normalizePhone(p string) string {
	p = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(p))
	if strings.HasPrefix(p, "+91") {
		p = p[3:]
	}
	return p
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeEmail trims and lower-cases an address and reports whether it is
// a bare, well-formed email.
func NormalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", false
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@')+1:], ".") {
		return email, false
	}
	return email, true
}
