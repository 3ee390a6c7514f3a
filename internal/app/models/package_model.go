package models

import (
	"github.com/shopspring/decimal"
)

// FreeTrialPackage is the reserved pool claimed by RegisterFreeTrial, never
// sold through checkout.
const FreeTrialPackage = "free-trial"

// Session holds the network-access parameters handed out at redemption time.
// RateLimit uses MikroTik rx/tx notation.
type Session struct {
	AccessHours int    `json:"access_hours"`
	RateLimit   string `json:"rate_limit"`
	Profile     string `json:"profile"`
}

type Package struct {
	Code     string          `json:"code"`
	PriceUGX decimal.Decimal `json:"price_ugx"`
	Session  Session         `json:"session"`
}

// Packages is the sellable tier catalog. Codes match the MikroTik hotspot
// profile names exactly.
var Packages = map[string]Package{
	"p1": {Code: "p1", PriceUGX: decimal.NewFromInt(250), Session: Session{AccessHours: 1, RateLimit: "2M/2M", Profile: "p1"}},
	"p2": {Code: "p2", PriceUGX: decimal.NewFromInt(500), Session: Session{AccessHours: 3, RateLimit: "3M/3M", Profile: "p2"}},
	"p3": {Code: "p3", PriceUGX: decimal.NewFromInt(1000), Session: Session{AccessHours: 24, RateLimit: "5M/5M", Profile: "p3"}},
	"p4": {Code: "p4", PriceUGX: decimal.NewFromInt(1500), Session: Session{AccessHours: 48, RateLimit: "10M/10M", Profile: "p4"}},
}

// FreeTrialSession is fixed; free-trial vouchers have no catalog entry.
var FreeTrialSession = Session{AccessHours: 0, RateLimit: "1M/1M", Profile: "free-trial"}

func FindPackage(code string) (Package, bool) {
	pkg, ok := Packages[code]
	return pkg, ok
}

// SessionForPackage resolves session parameters for any package type seen on
// a voucher, including the reserved free-trial pool. Unknown tiers fall back
// to the cheapest paid profile rather than denying access to a voucher the
// customer already paid for.
func SessionForPackage(packageType string) Session {
	if packageType == FreeTrialPackage {
		return FreeTrialSession
	}
	if pkg, ok := Packages[packageType]; ok {
		return pkg.Session
	}
	return Packages["p1"].Session
}
