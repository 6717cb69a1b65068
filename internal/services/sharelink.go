package services

import (
	"net/url"
	"strings"

	"github.com/ttacon/libphonenumber"
)

const shareBase = "https://wa.me/"

// ShareLink builds a WhatsApp click-to-chat link. The mobile number is
// normalised for region; when it cannot be parsed the link has no recipient
// and the sender picks one.
func ShareLink(mobile, region, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	digits := e164Digits(mobile, region)
	return shareBase + digits + "?text=" + escaped
}

func e164Digits(mobile, region string) string {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return ""
	}
	num, err := libphonenumber.Parse(mobile, strings.ToUpper(region))
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return ""
	}
	return strings.TrimPrefix(libphonenumber.Format(num, libphonenumber.E164), "+")
}
