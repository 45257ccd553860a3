package utils

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// Zimbabwe mobile network codes
const (
	NetworkNetOne  = "NetOne"
	NetworkTelecel = "Telecel"
	NetworkEconet  = "Econet"
)

// PhoneComponents represents the parsed components of a canonical phone number
type PhoneComponents struct {
	CountryCode string `json:"country_code"`
	NetworkCode string `json:"network_code"`
	Subscriber  string `json:"subscriber"`
	Full        string `json:"full"`
	Carrier     string `json:"carrier,omitempty"`
	Wallet      string `json:"wallet,omitempty"`
}

var carriersByNetworkCode = map[string]struct{ carrier, wallet string }{
	"71": {NetworkNetOne, "OneMoney"},
	"73": {NetworkTelecel, "Telecash"},
	"77": {NetworkEconet, "EcoCash"},
	"78": {NetworkEconet, "EcoCash"},
}

// ParsePhoneNumber normalizes a user-entered number and splits it into its components
func ParsePhoneNumber(raw string) (*PhoneComponents, error) {
	canonical := NormalizePhone(raw)
	if !IsCanonicalPhone(canonical) {
		return nil, fmt.Errorf("unrecognized phone number format: %q", raw)
	}

	num, err := phonenumbers.Parse(canonical, "ZW")
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumberForRegion(num, "ZW") {
		return nil, fmt.Errorf("invalid phone number: %s", canonical)
	}

	national := phonenumbers.GetNationalSignificantNumber(num)
	components := &PhoneComponents{
		CountryCode: fmt.Sprintf("%d", num.GetCountryCode()),
		NetworkCode: national[:2],
		Subscriber:  national[2:],
		Full:        phonenumbers.Format(num, phonenumbers.E164),
	}

	if c, ok := carriersByNetworkCode[components.NetworkCode]; ok {
		components.Carrier = c.carrier
		components.Wallet = c.wallet
	}

	return components, nil
}

// CarrierForPhone returns the mobile network operator serving a phone number, or "" if unknown
func CarrierForPhone(raw string) string {
	canonical := NormalizePhone(raw)
	if !IsCanonicalPhone(canonical) {
		return ""
	}
	return carriersByNetworkCode[canonical[4:6]].carrier
}

// FormatPhoneForDisplay renders a phone number as +263 78 473 9341
func FormatPhoneForDisplay(raw string) string {
	canonical := NormalizePhone(raw)
	num, err := phonenumbers.Parse(canonical, "ZW")
	if err != nil {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
