package conversation

import "github.com/haven-shield/insight-engine/internal/signal"

// PatternDef is a fixed behavioral pattern matched against normalized alert
// text. The set is static configuration: loaded once, never mutated.
type PatternDef struct {
	ID       string
	Scenario signal.Scenario
	LabelAr  string
	LabelEn  string
	Weight   float64
	Keywords []string
}

var patternDefs = []PatternDef{
	{
		ID:       "pat-insult-repetition",
		Scenario: signal.ScenarioBullying,
		LabelAr:  "تكرار الإهانات",
		LabelEn:  "Repeated insults",
		Weight:   1.6,
		Keywords: []string{"loser", "stupid", "ugly", "idiot", "hate you", "nobody likes", "غبي", "فاشل", "قبيح", "لا احد يحبك"},
	},
	{
		ID:       "pat-threat-coercion",
		Scenario: signal.ScenarioThreatExposure,
		LabelAr:  "تهديد وإكراه",
		LabelEn:  "Threats and coercion",
		Weight:   2.2,
		Keywords: []string{"kill you", "hurt you", "expose you", "or else", "last warning", "سأقتلك", "سافضحك", "سأوذيك", "تحذير اخير"},
	},
	{
		ID:       "pat-sextortion-pressure",
		Scenario: signal.ScenarioSexualExploitation,
		LabelAr:  "ضغط ابتزاز جنسي",
		LabelEn:  "Sextortion pressure",
		Weight:   2.4,
		Keywords: []string{"send photo", "send pic", "nudes", "our secret", "dont tell anyone", "webcam", "ارسل صورة", "سر بيننا", "لا تخبر احد"},
	},
	{
		ID:       "pat-self-harm-ideation",
		Scenario: signal.ScenarioSelfHarm,
		LabelAr:  "أفكار إيذاء النفس",
		LabelEn:  "Self-harm ideation",
		Weight:   2.4,
		Keywords: []string{"kill myself", "cut myself", "end it all", "worthless", "no reason to live", "انتحار", "اذي نفسي", "لا قيمة لي"},
	},
	{
		ID:       "pat-crypto-lure",
		Scenario: signal.ScenarioCryptoScams,
		LabelAr:  "إغراء عملات رقمية",
		LabelEn:  "Crypto investment lure",
		Weight:   1.5,
		Keywords: []string{"double your money", "bitcoin", "crypto wallet", "guaranteed profit", "investment", "بيتكوين", "ربح مضمون", "ضاعف اموالك"},
	},
	{
		ID:       "pat-phishing-lure",
		Scenario: signal.ScenarioPhishingLinks,
		LabelAr:  "إغراء تصيّد",
		LabelEn:  "Phishing lure",
		Weight:   1.7,
		Keywords: []string{"verify your account", "click this link", "account suspended", "confirm password", "free gift", "تحقق من حسابك", "اضغط الرابط", "هدية مجانية"},
	},
	{
		ID:       "pat-gambling-pull",
		Scenario: signal.ScenarioGambling,
		LabelAr:  "جذب نحو المراهنة",
		LabelEn:  "Gambling pull",
		Weight:   1.4,
		Keywords: []string{"place a bet", "jackpot", "odds", "casino", "easy win", "مراهنة", "رهان", "ربح سهل", "كازينو"},
	},
	{
		ID:       "pat-challenge-dare",
		Scenario: signal.ScenarioHarmfulChallenges,
		LabelAr:  "تحدٍ خطير",
		LabelEn:  "Dangerous challenge dare",
		Weight:   1.8,
		Keywords: []string{"take the challenge", "i dare you", "blackout challenge", "everyone is doing it", "prove it", "جرب التحدي", "اتحداك", "الكل يفعلها"},
	},
}

// stopwords is the bilingual stop list excluded from repeated-term counting.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "you": {}, "your": {}, "for": {}, "with": {},
	"this": {}, "that": {}, "are": {}, "was": {}, "have": {}, "has": {},
	"not": {}, "but": {}, "what": {}, "will": {}, "can": {}, "just": {},
	"about": {}, "from": {}, "they": {}, "she": {}, "him": {}, "her": {},
	"من": {}, "في": {}, "على": {}, "الى": {}, "انا": {}, "انت": {},
	"هذا": {}, "هذه": {}, "ما": {}, "لا": {}, "يا": {}, "هو": {},
	"هي": {}, "كان": {}, "لم": {}, "لن": {}, "قد": {}, "كل": {},
}
