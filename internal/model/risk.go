package model

// AuthTier is the authentication method required for a transfer, selected by
// risk rules.
type AuthTier string

const (
	TierPIN       AuthTier = "PIN"
	TierOTP       AuthTier = "OTP"
	TierBiometric AuthTier = "Biometric"
)

// AuthLog records one authentication attempt for a transfer. SuccessFlag is
// tri-state: nil until the simulated outcome is known.
type AuthLog struct {
	AuthID      string
	TxID        string
	AuthType    AuthTier
	SuccessFlag *bool
}

// Risk tag severities emitted by the engine.
const (
	SeverityHighValue       = 2
	SeverityCumulative      = 3
	SeverityUntrustedDevice = 4
)

// RiskTag is an immutable audit annotation on a transaction. Append-only;
// never updated or deleted.
type RiskTag struct {
	RiskID    string
	TxID      string
	Severity  int // 1-4, higher is more severe
	TagReason string
}
