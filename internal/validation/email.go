package validation

import "strings"

var (
	gmailDomains = map[string]bool{"gmail.com": true, "googlemail.com": true}

	icloudDomains = map[string]bool{"icloud.com": true, "me.com": true}

	outlookDomains = map[string]bool{
		"hotmail.com": true, "hotmail.co.uk": true, "hotmail.de": true, "hotmail.fr": true,
		"hotmail.es": true, "hotmail.it": true, "live.com": true, "live.co.uk": true,
		"live.de": true, "live.fr": true, "live.nl": true, "msn.com": true,
		"outlook.com": true, "outlook.de": true, "outlook.fr": true, "outlook.es": true,
		"outlook.it": true, "passport.com": true,
	}

	yahooDomains = map[string]bool{
		"rocketmail.com": true, "yahoo.ca": true, "yahoo.co.uk": true, "yahoo.com": true,
		"yahoo.de": true, "yahoo.fr": true, "yahoo.in": true, "yahoo.it": true, "ymail.com": true,
	}

	yandexDomains = map[string]bool{
		"yandex.ru": true, "yandex.ua": true, "yandex.kz": true, "yandex.com": true,
		"yandex.by": true, "ya.ru": true,
	}
)

// NormalizeEmail lower-cases the address and folds provider aliases:
// Gmail drops dots and +tags and maps googlemail.com to gmail.com, iCloud and
// Outlook drop +tags, Yahoo drops -tags, Yandex maps to yandex.ru. The result
// is a fixed point: NormalizeEmail(NormalizeEmail(x)) == NormalizeEmail(x).
// Input that has no '@' is only trimmed and lower-cased.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}
	local, domain := email[:at], email[at+1:]

	folded := local
	switch {
	case gmailDomains[domain]:
		folded = cutAt(folded, "+")
		folded = strings.ReplaceAll(folded, ".", "")
		domain = "gmail.com"
	case icloudDomains[domain], outlookDomains[domain]:
		folded = cutAt(folded, "+")
	case yahooDomains[domain]:
		folded = cutAt(folded, "-")
	case yandexDomains[domain]:
		domain = "yandex.ru"
	}

	// An address that is nothing but a tag keeps its original local part.
	if folded == "" {
		folded = local
	}
	return folded + "@" + domain
}

func cutAt(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i]
	}
	return s
}
