package enrollment

import (
	"regexp"
	"strings"

	"github.com/anjiri1684/educonnect/payments"
	"github.com/anjiri1684/educonnect/utils"
	"github.com/go-playground/validator/v10"
)

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// PaymentDetails is what the student types into the checkout dialog.
type PaymentDetails struct {
	CardholderName string `json:"cardholder_name" validate:"required"`
	CardNumber     string `json:"card_number" validate:"required,len=16,number"`
	Expiry         string `json:"expiry" validate:"required,card_expiry"`
	CVV            string `json:"cvv" validate:"required,min=3,max=4,number"`
}

func newCardValidator() *validator.Validate {
	v := utils.NewValidator()
	_ = v.RegisterValidation("card_expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateCard checks the card locally, before anything reaches the provider. The number is
// judged with its whitespace removed.
func validateCard(v *validator.Validate, d PaymentDetails) error {
	normalized := d
	normalized.CardholderName = strings.TrimSpace(d.CardholderName)
	normalized.CardNumber = payments.NormalizeCardNumber(d.CardNumber)
	if err := v.Struct(normalized); err != nil {
		return utils.FromValidator(err)
	}
	return nil
}
