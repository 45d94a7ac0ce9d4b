package forecast

import "github.com/haven-shield/insight-engine/internal/signal"

type scenarioText struct {
	explanationAr    string
	explanationEn    string
	recommendationAr string
	recommendationEn string
}

// forecastTexts is the static bilingual explanation/recommendation copy per
// scenario.
var forecastTexts = map[signal.Scenario]scenarioText{
	signal.ScenarioBullying: {
		explanationAr:    "مؤشرات تنمر متكررة في المحادثات الأخيرة",
		explanationEn:    "Recurring bullying indicators across recent conversations",
		recommendationAr: "افتح حوارًا داعمًا واحتفظ بالأدلة",
		recommendationEn: "Open a supportive conversation and preserve the evidence",
	},
	signal.ScenarioThreatExposure: {
		explanationAr:    "تعرض لتهديد أو ابتزاز مباشر",
		explanationEn:    "Exposure to direct threats or blackmail",
		recommendationAr: "وثّق كل شيء ولا تتجاوب مع المهدد",
		recommendationEn: "Document everything and do not engage the sender",
	},
	signal.ScenarioGaming: {
		explanationAr:    "نمط لعب مفرط يتجاوز الحدود الصحية",
		explanationEn:    "Excessive gaming pattern beyond healthy limits",
		recommendationAr: "ضع جدول لعب متفق عليه وفعّل الحدود",
		recommendationEn: "Agree on a play schedule and enforce limits",
	},
	signal.ScenarioInappropriate: {
		explanationAr:    "وصول متكرر لمحتوى غير مناسب للعمر",
		explanationEn:    "Repeated access to age-inappropriate content",
		recommendationAr: "شدد فلترة المحتوى وناقش ما شاهده",
		recommendationEn: "Tighten content filtering and discuss what was seen",
	},
	signal.ScenarioCyberCrime: {
		explanationAr:    "احتكاك بأنشطة جرائم إلكترونية",
		explanationEn:    "Contact with cyber-crime activity",
		recommendationAr: "اعزل الجهاز وراجع الحسابات المرتبطة",
		recommendationEn: "Isolate the device and audit linked accounts",
	},
	signal.ScenarioCryptoScams: {
		explanationAr:    "استهداف بعروض استثمار وهمية",
		explanationEn:    "Targeting by fake investment offers",
		recommendationAr: "جمّد وسائل الدفع واشرح آلية الاحتيال",
		recommendationEn: "Freeze payment methods and explain the scam mechanics",
	},
	signal.ScenarioPhishingLinks: {
		explanationAr:    "روابط تصيّد نشطة تستهدف بيانات الدخول",
		explanationEn:    "Active phishing links targeting credentials",
		recommendationAr: "بدّل كلمات المرور وافحص الجهاز",
		recommendationEn: "Rotate passwords and scan the device",
	},
	signal.ScenarioSelfHarm: {
		explanationAr:    "مؤشرات ضائقة نفسية وأفكار إيذاء النفس",
		explanationEn:    "Signs of psychological distress and self-harm ideation",
		recommendationAr: "اطلب دعمًا مختصًا فورًا وابقَ قريبًا",
		recommendationEn: "Seek professional support immediately and stay close",
	},
	signal.ScenarioSexualExploitation: {
		explanationAr:    "نمط استدراج أو ابتزاز جنسي",
		explanationEn:    "Grooming or sexual-extortion pattern",
		recommendationAr: "أبلغ جهات حماية الطفل واحفظ الأدلة",
		recommendationEn: "Report to child protection and preserve evidence",
	},
	signal.ScenarioAccountTheft: {
		explanationAr:    "محاولات استيلاء على الحسابات",
		explanationEn:    "Account-takeover attempts",
		recommendationAr: "فعّل التحقق بخطوتين وبدّل كلمات المرور",
		recommendationEn: "Enable two-factor auth and rotate passwords",
	},
	signal.ScenarioGambling: {
		explanationAr:    "انجذاب متزايد نحو المراهنات",
		explanationEn:    "Growing pull toward betting activity",
		recommendationAr: "احظر منصات المراهنة وراجع المدفوعات",
		recommendationEn: "Block betting platforms and review payments",
	},
	signal.ScenarioPrivacyTracking: {
		explanationAr:    "محاولات تتبع أو انتهاك خصوصية",
		explanationEn:    "Tracking attempts or privacy violations",
		recommendationAr: "راجع أذونات الموقع والتطبيقات",
		recommendationEn: "Audit location and app permissions",
	},
	signal.ScenarioHarmfulChallenges: {
		explanationAr:    "انجراف خلف تحديات خطيرة منتشرة",
		explanationEn:    "Drift toward viral dangerous challenges",
		recommendationAr: "ناقش المخاطر وراقب المحتوى المشابه",
		recommendationEn: "Discuss the risks and monitor similar content",
	},
}
