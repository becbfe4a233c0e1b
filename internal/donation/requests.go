package donation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ClaimRequest reserves a donation for a receiver.
type ClaimRequest struct {
	DonationID    string `json:"donation_id"    validate:"required"`
	ReceiverName  string `json:"receiver_name"  validate:"required"`
	ReceiverEmail string `json:"receiver_email" validate:"required,email"`
	ReceiverPhone string `json:"receiver_phone" validate:"required"`
}

// Validate checks that every field is filled in before the request leaves the client.
func (c ClaimRequest) Validate() error {
	return check(validate.Struct(trimClaim(c)))
}

// NewDonation is the producer-side listing submitted by a donor.
type NewDonation struct {
	Category        string `json:"category"         validate:"required"`
	FoodName        string `json:"foodname"         validate:"required"`
	GeocodeLocation string `json:"geocode_location" validate:"required"`
	DisplayAddress  string `json:"display_address"  validate:"required"`
	Phone           string `json:"phone"            validate:"required"`
	Note            string `json:"note"`
	DonorEmail      string `json:"donor_email"      validate:"required,email"`
	Count           int    `json:"count"            validate:"gt=0"`
	Claimed         bool   `json:"claimed"`
}

// Validate checks the listing before submission.
func (d NewDonation) Validate() error {
	return check(validate.Struct(d))
}

// ValidationError lists the fields that failed validation, by wire name.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

func check(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, wireName(fe.StructField()))
	}
	return &ValidationError{Fields: fields}
}

func trimClaim(c ClaimRequest) ClaimRequest {
	return ClaimRequest{
		DonationID:    strings.TrimSpace(c.DonationID),
		ReceiverName:  strings.TrimSpace(c.ReceiverName),
		ReceiverEmail: strings.TrimSpace(c.ReceiverEmail),
		ReceiverPhone: strings.TrimSpace(c.ReceiverPhone),
	}
}

var wireNames = map[string]string{
	"DonationID":      "donation_id",
	"ReceiverName":    "receiver_name",
	"ReceiverEmail":   "receiver_email",
	"ReceiverPhone":   "receiver_phone",
	"Category":        "category",
	"FoodName":        "foodname",
	"GeocodeLocation": "geocode_location",
	"DisplayAddress":  "display_address",
	"Phone":           "phone",
	"DonorEmail":      "donor_email",
	"Count":           "count",
}

func wireName(field string) string {
	if n, ok := wireNames[field]; ok {
		return n
	}
	return field
}
