package signal

import "strings"

// Category is the wire category attached to an alert by the upstream feeds.
type Category string

const (
	CategoryBullying     Category = "BULLYING"
	CategoryThreats      Category = "THREATS"
	CategoryGaming       Category = "GAMING"
	CategoryAdultContent Category = "ADULT_CONTENT"
	CategoryViolence     Category = "VIOLENCE"
	CategoryCrypto       Category = "CRYPTO"
	CategoryScam         Category = "SCAM"
	CategoryPhishing     Category = "PHISHING"
	CategorySelfHarm     Category = "SELF_HARM"
	CategoryGrooming     Category = "GROOMING"
	CategoryAccountTheft Category = "ACCOUNT_THEFT"
	CategoryGambling     Category = "GAMBLING"
	CategoryPrivacy      Category = "PRIVACY"
	CategoryChallenges   Category = "CHALLENGES"
	CategoryDNSBlock     Category = "DNS_BLOCK"
	CategoryGeneral      Category = "GENERAL"
)

// categoryAliases tolerates the alternate spellings the feeds have shipped
// over time. Matching happens on the upper-cased, underscore-normalized form.
var categoryAliases = map[string]Category{
	"BULLYING":         CategoryBullying,
	"CYBER_BULLYING":   CategoryBullying,
	"CYBERBULLYING":    CategoryBullying,
	"HARASSMENT":       CategoryBullying,
	"THREATS":          CategoryThreats,
	"THREAT":           CategoryThreats,
	"BLACKMAIL":        CategoryThreats,
	"EXTORTION":        CategoryThreats,
	"GAMING":           CategoryGaming,
	"GAMES":            CategoryGaming,
	"GAME_ADDICTION":   CategoryGaming,
	"ADULT_CONTENT":    CategoryAdultContent,
	"ADULT":            CategoryAdultContent,
	"SEXUAL_CONTENT":   CategoryAdultContent,
	"PORN":             CategoryAdultContent,
	"VIOLENCE":         CategoryViolence,
	"VIOLENT_CONTENT":  CategoryViolence,
	"GORE":             CategoryViolence,
	"CRYPTO":           CategoryCrypto,
	"CRYPTO_SCAM":      CategoryCrypto,
	"INVESTMENT_SCAM":  CategoryCrypto,
	"SCAM":             CategoryScam,
	"FRAUD":            CategoryScam,
	"PHISHING":         CategoryPhishing,
	"PHISHING_LINK":    CategoryPhishing,
	"MALICIOUS_LINK":   CategoryPhishing,
	"SELF_HARM":        CategorySelfHarm,
	"SELFHARM":         CategorySelfHarm,
	"SUICIDE":          CategorySelfHarm,
	"GROOMING":         CategoryGrooming,
	"EXPLOITATION":     CategoryGrooming,
	"PREDATOR":         CategoryGrooming,
	"ACCOUNT_THEFT":    CategoryAccountTheft,
	"ACCOUNT_TAKEOVER": CategoryAccountTheft,
	"IDENTITY_THEFT":   CategoryAccountTheft,
	"GAMBLING":         CategoryGambling,
	"BETTING":          CategoryGambling,
	"PRIVACY":          CategoryPrivacy,
	"TRACKING":         CategoryPrivacy,
	"STALKING":         CategoryPrivacy,
	"CHALLENGES":       CategoryChallenges,
	"DANGEROUS_CHALLENGE": CategoryChallenges,
	"DNS_BLOCK":        CategoryDNSBlock,
	"DNS":              CategoryDNSBlock,
	"NETWORK_BLOCK":    CategoryDNSBlock,
	"GENERAL":          CategoryGeneral,
}

// NormalizeCategory maps a raw wire category to its canonical variant.
// Unknown input degrades to CategoryGeneral; the ingestion boundary never
// rejects an alert over its label.
func NormalizeCategory(raw string) Category {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	key = strings.ReplaceAll(key, " ", "_")
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return CategoryGeneral
}

// PrimaryScenario maps a category to the scenario it most directly indicates.
func (c Category) PrimaryScenario() Scenario {
	switch c {
	case CategoryBullying:
		return ScenarioBullying
	case CategoryThreats:
		return ScenarioThreatExposure
	case CategoryGaming:
		return ScenarioGaming
	case CategoryAdultContent, CategoryViolence:
		return ScenarioInappropriate
	case CategoryCrypto:
		return ScenarioCryptoScams
	case CategoryScam:
		return ScenarioAccountTheft
	case CategoryPhishing, CategoryDNSBlock:
		return ScenarioPhishingLinks
	case CategorySelfHarm:
		return ScenarioSelfHarm
	case CategoryGrooming:
		return ScenarioSexualExploitation
	case CategoryAccountTheft:
		return ScenarioAccountTheft
	case CategoryGambling:
		return ScenarioGambling
	case CategoryPrivacy:
		return ScenarioPrivacyTracking
	case CategoryChallenges:
		return ScenarioHarmfulChallenges
	default:
		return ScenarioInappropriate
	}
}
