package constants

// Static route constants
const (
	PublicRoute         = "/"
	SubmitRoute         = "/submit-song"
	SubmittedRoute      = "/submitted"
	PaymentProcessRoute = "/payment/process"
	// Flutterwave redirects the payer here; PUBLIC_DOMAIN is prepended for the callback URL
	PaymentVerifyRoute = "/payment/verify"
	AdminSongsRoute    = "/admin/songs"
	AdminPackagesRoute = "/admin/packages"
)
