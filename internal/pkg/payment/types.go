package payment

import (
	"strings"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/internal/pkg/constants"
	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
)

const (
	DefaultCurrency = "NGN"

	// CallbackStatusSuccessful is the status the gateway appends to the redirect on success.
	CallbackStatusSuccessful = "successful"
)

type Config struct {
	PublicKey   string
	CallbackURL string
	Currency    string
}

func ConfigFromEnv() Config {
	domain := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"), "/")
	return Config{
		PublicKey:   strings.TrimSpace(env.GetEnv("FLUTTERWAVE_PUBLIC_KEY", "")),
		CallbackURL: domain + constants.PaymentVerifyRoute,
		Currency:    DefaultCurrency,
	}
}

type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Checkout is everything the hosted payment page needs to charge a submission.
type Checkout struct {
	Submission  *models.SongSubmission `json:"submission"`
	Package     *models.Package        `json:"package"`
	TxRef       string                 `json:"tx_ref"`
	PublicKey   string                 `json:"public_key"`
	CallbackURL string                 `json:"redirect_url"`
	Amount      float64                `json:"amount"`
	Currency    string                 `json:"currency"`
	Customer    Customer               `json:"customer"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
}

// Callback carries the query parameters of the gateway redirect.
type Callback struct {
	TransactionID string `query:"transaction_id"`
	TxRef         string `query:"tx_ref"`
	Status        string `query:"status"`
}

// Outcome is returned after a successful verification.
type Outcome struct {
	Submission *models.SongSubmission `json:"submission"`
	Package    *models.Package        `json:"package,omitempty"`
}
