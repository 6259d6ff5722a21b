package compose

// dialCodes maps E.164 country calling code prefixes to country names.
// Looked up longest-prefix-first, so more specific entries (e.g. "77" for
// Kazakhstan) win over their parent code ("7"). This is configuration data:
// extend the table, not the lookup.
var dialCodes = map[string]string{
	"1":   "United States / Canada",
	"7":   "Russia",
	"76":  "Kazakhstan",
	"77":  "Kazakhstan",
	"20":  "Egypt",
	"27":  "South Africa",
	"30":  "Greece",
	"31":  "Netherlands",
	"32":  "Belgium",
	"33":  "France",
	"34":  "Spain",
	"36":  "Hungary",
	"39":  "Italy",
	"40":  "Romania",
	"41":  "Switzerland",
	"43":  "Austria",
	"44":  "United Kingdom",
	"45":  "Denmark",
	"46":  "Sweden",
	"47":  "Norway",
	"48":  "Poland",
	"49":  "Germany",
	"51":  "Peru",
	"52":  "Mexico",
	"54":  "Argentina",
	"55":  "Brazil",
	"56":  "Chile",
	"57":  "Colombia",
	"58":  "Venezuela",
	"60":  "Malaysia",
	"61":  "Australia",
	"62":  "Indonesia",
	"63":  "Philippines",
	"64":  "New Zealand",
	"65":  "Singapore",
	"66":  "Thailand",
	"81":  "Japan",
	"82":  "South Korea",
	"84":  "Vietnam",
	"86":  "China",
	"90":  "Turkey",
	"91":  "India",
	"92":  "Pakistan",
	"94":  "Sri Lanka",
	"98":  "Iran",
	"351": "Portugal",
	"352": "Luxembourg",
	"353": "Ireland",
	"354": "Iceland",
	"358": "Finland",
	"359": "Bulgaria",
	"370": "Lithuania",
	"371": "Latvia",
	"372": "Estonia",
	"373": "Moldova",
	"374": "Armenia",
	"375": "Belarus",
	"380": "Ukraine",
	"381": "Serbia",
	"385": "Croatia",
	"386": "Slovenia",
	"420": "Czech Republic",
	"421": "Slovakia",
	"852": "Hong Kong",
	"855": "Cambodia",
	"856": "Laos",
	"880": "Bangladesh",
	"886": "Taiwan",
	"960": "Maldives",
	"961": "Lebanon",
	"962": "Jordan",
	"963": "Syria",
	"964": "Iraq",
	"965": "Kuwait",
	"966": "Saudi Arabia",
	"967": "Yemen",
	"968": "Oman",
	"970": "Palestine",
	"971": "United Arab Emirates",
	"972": "Israel",
	"973": "Bahrain",
	"974": "Qatar",
	"975": "Bhutan",
	"976": "Mongolia",
	"977": "Nepal",
	"992": "Tajikistan",
	"993": "Turkmenistan",
	"994": "Azerbaijan",
	"995": "Georgia",
	"996": "Kyrgyzstan",
	"998": "Uzbekistan",
}

// maxDialCodeLen bounds the longest-prefix scan.
const maxDialCodeLen = 4

// InferCountry resolves an E.164 number to a country name by longest-prefix
// match against the dial-code table. Unmatched prefixes report not-found,
// never a guess.
func InferCountry(e164 string) (string, bool) {
	digits := e164
	if len(digits) > 0 && digits[0] == '+' {
		digits = digits[1:]
	}
	if digits == "" {
		return "", false
	}

	max := maxDialCodeLen
	if len(digits) < max {
		max = len(digits)
	}
	for l := max; l >= 1; l-- {
		if name, ok := dialCodes[digits[:l]]; ok {
			return name, true
		}
	}
	return "", false
}
