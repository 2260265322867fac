package hcaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/SongPitch/internal/pkg/env"
)

const defaultVerifyURL = "https://hcaptcha.com/siteverify"

var ErrEmptyToken = errors.New("hCaptcha token is empty")

type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

type Verifier struct {
	SiteKey   string
	Secret    string
	VerifyURL string

	HTTPClient *http.Client
}

func NewVerifierFromEnv() *Verifier {
	return &Verifier{
		SiteKey:    strings.TrimSpace(env.GetEnv("HCAPTCHA_SITEKEY", "")),
		Secret:     strings.TrimSpace(env.GetEnv("HCAPTCHA_SECRET", "")),
		VerifyURL:  defaultVerifyURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether both keys are configured. Intake skips the check otherwise.
func (v *Verifier) Enabled() bool {
	return v != nil && v.SiteKey != "" && v.Secret != ""
}

func (v *Verifier) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if v.Secret == "" {
		return fmt.Errorf("hCaptcha secret is not set")
	}

	verifyURL := v.VerifyURL
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	formData := url.Values{
		"secret":   {v.Secret},
		"response": {token},
		"sitekey":  {v.SiteKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to hCaptcha API: %w", err)
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode hCaptcha API response: %w", err)
	}

	if !response.Success {
		errorMsg := "hCaptcha validation failed"
		if len(response.ErrorCodes) > 0 {
			errorMsg = errorMsg + ": " + strings.Join(response.ErrorCodes, ", ")
		}
		return errors.New(errorMsg)
	}

	return nil
}
