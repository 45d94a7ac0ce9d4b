package diagnosis

import "github.com/haven-shield/insight-engine/internal/signal"

// categoryBoosts maps each wire category to the scenarios it supports and the
// boost applied per alert weight. Categories absent from the map contribute
// nothing through this table.
var categoryBoosts = map[signal.Category]map[signal.Scenario]float64{
	signal.CategoryBullying: {
		signal.ScenarioBullying:       2.6,
		signal.ScenarioThreatExposure: 0.6,
	},
	signal.CategoryThreats: {
		signal.ScenarioThreatExposure: 2.8,
		signal.ScenarioBullying:       0.7,
		signal.ScenarioCyberCrime:     0.5,
	},
	signal.CategoryGaming: {
		signal.ScenarioGaming:   2.4,
		signal.ScenarioGambling: 0.5,
	},
	signal.CategoryAdultContent: {
		signal.ScenarioInappropriate:      2.6,
		signal.ScenarioSexualExploitation: 0.8,
	},
	signal.CategoryViolence: {
		signal.ScenarioInappropriate:     2.3,
		signal.ScenarioHarmfulChallenges: 0.6,
	},
	signal.CategoryCrypto: {
		signal.ScenarioCryptoScams:  2.7,
		signal.ScenarioAccountTheft: 0.7,
	},
	signal.CategoryScam: {
		signal.ScenarioAccountTheft: 2.2,
		signal.ScenarioCryptoScams:  0.9,
		signal.ScenarioCyberCrime:   0.7,
	},
	signal.CategoryPhishing: {
		signal.ScenarioPhishingLinks: 2.8,
		signal.ScenarioAccountTheft:  0.9,
		signal.ScenarioCyberCrime:    0.6,
	},
	signal.CategorySelfHarm: {
		signal.ScenarioSelfHarm: 3.0,
	},
	signal.CategoryGrooming: {
		signal.ScenarioSexualExploitation: 3.0,
		signal.ScenarioThreatExposure:     0.6,
	},
	signal.CategoryAccountTheft: {
		signal.ScenarioAccountTheft: 2.7,
		signal.ScenarioCyberCrime:   0.8,
	},
	signal.CategoryGambling: {
		signal.ScenarioGambling: 2.7,
		signal.ScenarioGaming:   0.5,
	},
	signal.CategoryPrivacy: {
		signal.ScenarioPrivacyTracking: 2.6,
		signal.ScenarioCyberCrime:      0.5,
	},
	signal.CategoryChallenges: {
		signal.ScenarioHarmfulChallenges: 2.8,
		signal.ScenarioSelfHarm:          0.6,
	},
	signal.CategoryDNSBlock: {
		signal.ScenarioPhishingLinks: 1.8,
		signal.ScenarioCyberCrime:    0.8,
	},
}

// scenarioKeywords holds the bilingual keyword lists matched against
// normalized alert text. Each hit contributes alertWeight x 0.35.
var scenarioKeywords = map[signal.Scenario][]string{
	signal.ScenarioBullying: {
		"loser", "stupid", "ugly", "hate you", "everyone laughs", "غبي", "فاشل", "قبيح", "يسخرون منك",
	},
	signal.ScenarioThreatExposure: {
		"kill you", "expose you", "pay me", "or else", "i know where you live", "سأقتلك", "سافضحك", "ادفع", "اعرف اين تسكن",
	},
	signal.ScenarioGaming: {
		"one more round", "rank up", "loot box", "skins", "all night", "جولة اخيرة", "سهرنا نلعب", "صندوق",
	},
	signal.ScenarioInappropriate: {
		"explicit", "nsfw", "gore", "blood", "18+", "اباحي", "دماء", "مشاهد عنف",
	},
	signal.ScenarioCyberCrime: {
		"hack", "ddos", "stolen data", "carding", "dark web", "اختراق", "بيانات مسروقة", "الانترنت المظلم",
	},
	signal.ScenarioCryptoScams: {
		"bitcoin", "double your money", "crypto wallet", "guaranteed profit", "airdrop", "بيتكوين", "ضاعف اموالك", "ربح مضمون",
	},
	signal.ScenarioPhishingLinks: {
		"verify your account", "click this link", "suspended", "confirm password", "free gift", "تحقق من حسابك", "اضغط الرابط", "هدية مجانية",
	},
	signal.ScenarioSelfHarm: {
		"kill myself", "cut myself", "worthless", "end it all", "no reason to live", "انتحار", "اذي نفسي", "لا قيمة لي",
	},
	signal.ScenarioSexualExploitation: {
		"send photo", "nudes", "our secret", "how old are you", "webcam", "ارسل صورة", "سر بيننا", "كم عمرك",
	},
	signal.ScenarioAccountTheft: {
		"give me your password", "otp code", "login details", "verification code", "كلمة السر", "رمز التحقق", "بيانات الدخول",
	},
	signal.ScenarioGambling: {
		"place a bet", "jackpot", "odds", "casino", "easy win", "مراهنة", "رهان", "كازينو", "ربح سهل",
	},
	signal.ScenarioPrivacyTracking: {
		"share your location", "track you", "which school", "home address", "موقعك", "اين مدرستك", "عنوان البيت",
	},
	signal.ScenarioHarmfulChallenges: {
		"take the challenge", "i dare you", "blackout", "everyone is doing it", "جرب التحدي", "اتحداك", "الكل يفعلها",
	},
}

// threatSubtypeKeywords drives the secondary classifier that runs only when
// threat_exposure wins.
var threatSubtypeKeywords = map[signal.ThreatSubtype][]string{
	signal.ThreatSubtypeDirect: {
		"kill you", "hurt you", "beat you", "find you", "سأقتلك", "سأوذيك", "سأجدك",
	},
	signal.ThreatSubtypeFinancialBlackmail: {
		"pay me", "send money", "transfer", "wallet", "or i leak", "ادفع", "حول المبلغ", "ارسل فلوس",
	},
	signal.ThreatSubtypeSexualBlackmail: {
		"your photos", "expose you", "send more or", "share your pictures", "صورك", "سافضحك", "سأنشر صورك",
	},
}

var threatSubtypeCategoryBoosts = map[signal.Category]map[signal.ThreatSubtype]float64{
	signal.CategoryThreats:  {signal.ThreatSubtypeDirect: 1.4},
	signal.CategoryScam:     {signal.ThreatSubtypeFinancialBlackmail: 1.3},
	signal.CategoryGrooming: {signal.ThreatSubtypeSexualBlackmail: 1.5},
}

// contentSubtypeKeywords drives the secondary classifier for
// inappropriate_content wins.
var contentSubtypeKeywords = map[signal.ContentSubtype][]string{
	signal.ContentSubtypeSexual: {
		"explicit", "nsfw", "nudes", "18+", "اباحي", "مقاطع مخلة",
	},
	signal.ContentSubtypeViolent: {
		"gore", "blood", "fight video", "beheading", "دماء", "مشاهد عنف", "مقطع قتال",
	},
}

var contentSubtypeCategoryBoosts = map[signal.Category]map[signal.ContentSubtype]float64{
	signal.CategoryAdultContent: {signal.ContentSubtypeSexual: 1.5},
	signal.CategoryViolence:     {signal.ContentSubtypeViolent: 1.5},
}

// scenarioActions maps the winning scenario to the suggested action shown
// next to its top signals.
var scenarioActions = map[signal.Scenario][2]string{
	signal.ScenarioBullying:           {"تحدث مع طفلك عن المحادثة واحتفظ بلقطات الشاشة", "Talk with your child about the conversation and keep screenshots"},
	signal.ScenarioThreatExposure:     {"وثّق التهديد ولا ترد على المرسل وأبلغ الجهات المختصة", "Document the threat, do not reply, and report to the authorities"},
	signal.ScenarioGaming:             {"راجع أوقات اللعب وفعّل حدود وقت الشاشة", "Review play sessions and enable screen-time limits"},
	signal.ScenarioInappropriate:      {"فعّل فلترة المحتوى وراجع سجل التصفح معه", "Enable content filtering and review browsing history together"},
	signal.ScenarioCyberCrime:         {"اعزل الجهاز وغيّر كلمات المرور من جهاز آمن", "Isolate the device and rotate passwords from a trusted device"},
	signal.ScenarioCryptoScams:        {"جمّد أي تحويلات واشرح أسلوب الاحتيال الاستثماري", "Freeze any transfers and explain how investment scams work"},
	signal.ScenarioPhishingLinks:      {"لا تفتح الرابط وافحص الجهاز وبدّل كلمات المرور", "Do not open the link; scan the device and rotate passwords"},
	signal.ScenarioSelfHarm:           {"تواصل فورًا مع مختص دعم نفسي وابقَ قريبًا من طفلك", "Contact a mental-health professional immediately and stay close"},
	signal.ScenarioSexualExploitation: {"احفظ الأدلة وأبلغ جهات حماية الطفل فورًا", "Preserve evidence and report to child-protection authorities now"},
	signal.ScenarioAccountTheft:       {"بدّل كلمات المرور وفعّل التحقق بخطوتين", "Rotate passwords and enable two-factor authentication"},
	signal.ScenarioGambling:           {"احظر تطبيقات المراهنة وراجع وسائل الدفع المرتبطة", "Block betting apps and review linked payment methods"},
	signal.ScenarioPrivacyTracking:    {"عطّل مشاركة الموقع وراجع أذونات التطبيقات", "Disable location sharing and audit app permissions"},
	signal.ScenarioHarmfulChallenges:  {"ناقش خطورة التحدي وراقب المحتوى المشابه", "Discuss the challenge's danger and monitor similar content"},
}

var threatSubtypeActions = map[signal.ThreatSubtype][2]string{
	signal.ThreatSubtypeDirect:            {"أبلغ الشرطة مع حفظ نص التهديد كاملًا", "Report to the police with the full threat text preserved"},
	signal.ThreatSubtypeFinancialBlackmail: {"لا تدفع شيئًا ووثّق طلبات التحويل", "Pay nothing and document every transfer demand"},
	signal.ThreatSubtypeSexualBlackmail:   {"لا ترسل المزيد وأبلغ جهات حماية الطفل فورًا", "Send nothing further and contact child protection immediately"},
}

var contentSubtypeActions = map[signal.ContentSubtype][2]string{
	signal.ContentSubtypeSexual:  {"فعّل البحث الآمن واحجب المواقع المصنفة للبالغين", "Enable safe search and block adult-rated sites"},
	signal.ContentSubtypeViolent: {"قيّد منصات الفيديو وناقش ما شاهده طفلك", "Restrict video platforms and discuss what your child saw"},
}
