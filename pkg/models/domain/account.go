package domain

// AccountState mirrors the subscription lifecycle state reported by the
// directory. Anything the directory does not recognize maps to Unknown.
type AccountState string

const (
	AccountStateEnabled  AccountState = "Enabled"
	AccountStateDisabled AccountState = "Disabled"
	AccountStateUnknown  AccountState = "Unknown"
)

// Account is a single Azure subscription as seen by the pipeline. Accounts are
// either listed from the directory or synthesized from caller-supplied IDs and
// enriched best-effort; they are never mutated after enrichment.
type Account struct {
	ID             string
	DisplayName    string
	State          AccountState
	ParentTenantID string
}

// AccessDecision records the carbon API's per-account authorization verdict,
// produced once by the capability probe.
type AccessDecision struct {
	AccountID string
	Allowed   bool
	Reason    string
}

// AccountResultStatus describes the outcome of one account's fetch.
type AccountResultStatus string

const (
	AccountSucceeded AccountResultStatus = "Succeeded"
	AccountFailed    AccountResultStatus = "Failed"
	AccountDenied    AccountResultStatus = "Denied"
)

// AccountResult is the per-account outcome surfaced alongside the record set
// so a run with zero records still explains itself.
type AccountResult struct {
	Account Account
	Status  AccountResultStatus
	Records int
	Reason  string
}
