package dataset

// Display names for the countries the UI layer labels. Falls back to the
// raw code for anything not listed.
var countryNames = map[string]string{
	"USA": "Estados Unidos",
	"CHN": "China",
	"IND": "India",
	"BRA": "Brasil",
	"RUS": "Rusia",
	"FRA": "Francia",
	"GBR": "Reino Unido",
	"TUR": "Turquía",
	"IRN": "Irán",
	"DEU": "Alemania",
	"VNM": "Vietnam",
	"ITA": "Italia",
	"IDN": "Indonesia",
	"POL": "Polonia",
	"UKR": "Ucrania",
	"ZAF": "Sudáfrica",
	"NLD": "Países Bajos",
	"IRQ": "Irak",
	"PHL": "Filipinas",
	"MYS": "Malasia",
	"PER": "Perú",
	"CZE": "República Checa",
	"JPN": "Japón",
	"CAN": "Canadá",
	"CHL": "Chile",
	"BGD": "Bangladesh",
	"BEL": "Bélgica",
	"THA": "Tailandia",
	"ISR": "Israel",
	"PAK": "Pakistán",
	"ROU": "Rumania",
	"ESP": "España",
	"ARG": "Argentina",
	"AUS": "Australia",
	"KOR": "Corea del Sur",
}

// CountryName returns the display name for a country code.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}
