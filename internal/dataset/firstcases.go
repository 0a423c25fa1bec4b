package dataset

import "time"

// First-case dates for countries with a documented outbreak start. The
// table is compiled in rather than loaded: the historical spread model
// anchors each country's curve to these dates, and they do not change
// between datasets.
var firstCaseDates = map[string]string{
	"CHN": "2019-12-31",
	"THA": "2020-01-13",
	"JPN": "2020-01-16",
	"KOR": "2020-01-20",
	"USA": "2020-01-21",
	"VNM": "2020-01-23",
	"SGP": "2020-01-23",
	"FRA": "2020-01-24",
	"NPL": "2020-01-24",
	"AUS": "2020-01-25",
	"CAN": "2020-01-25",
	"MYS": "2020-01-25",
	"DEU": "2020-01-27",
	"LKA": "2020-01-27",
	"KHM": "2020-01-27",
	"FIN": "2020-01-29",
	"ARE": "2020-01-29",
	"IND": "2020-01-30",
	"PHL": "2020-01-30",
	"ITA": "2020-01-31",
	"GBR": "2020-01-31",
	"RUS": "2020-01-31",
	"ESP": "2020-01-31",
	"SWE": "2020-01-31",
	"BEL": "2020-02-04",
	"EGY": "2020-02-14",
	"IRN": "2020-02-19",
	"ISR": "2020-02-21",
	"LBN": "2020-02-21",
	"AFG": "2020-02-24",
	"BHR": "2020-02-24",
	"IRQ": "2020-02-24",
	"KWT": "2020-02-24",
	"OMN": "2020-02-24",
	"CHE": "2020-02-25",
	"AUT": "2020-02-25",
	"HRV": "2020-02-25",
	"PAK": "2020-02-26",
	"GEO": "2020-02-26",
	"BRA": "2020-02-26",
	"NOR": "2020-02-26",
	"ROU": "2020-02-26",
	"DNK": "2020-02-27",
	"EST": "2020-02-27",
	"NLD": "2020-02-27",
	"SMR": "2020-02-27",
	"NGA": "2020-02-27",
	"LTU": "2020-02-28",
	"BLR": "2020-02-28",
	"AZE": "2020-02-28",
	"ISL": "2020-02-28",
	"MCO": "2020-02-29",
	"QAT": "2020-02-29",
	"ECU": "2020-02-29",
	"LUX": "2020-02-29",
	"ARM": "2020-03-01",
	"CZE": "2020-03-01",
	"DOM": "2020-03-01",
	"IDN": "2020-03-02",
	"AND": "2020-03-02",
	"JOR": "2020-03-02",
	"LVA": "2020-03-02",
	"MAR": "2020-03-02",
	"SAU": "2020-03-02",
	"TUN": "2020-03-02",
	"PRT": "2020-03-02",
	"ARG": "2020-03-03",
	"CHL": "2020-03-03",
	"UKR": "2020-03-03",
	"FRO": "2020-03-03",
	"GIB": "2020-03-03",
	"LIE": "2020-03-03",
	"POL": "2020-03-04",
	"SVN": "2020-03-04",
	"HUN": "2020-03-04",
	"BIH": "2020-03-05",
	"ZAF": "2020-03-05",
	"BTN": "2020-03-06",
	"CMR": "2020-03-06",
	"COL": "2020-03-06",
	"CRI": "2020-03-06",
	"PER": "2020-03-06",
	"SRB": "2020-03-06",
	"SVK": "2020-03-06",
	"TGO": "2020-03-06",
	"VAT": "2020-03-06",
	"MLT": "2020-03-07",
	"MDA": "2020-03-07",
	"BGR": "2020-03-08",
	"MLD": "2020-03-08",
	"PRY": "2020-03-08",
	"ALB": "2020-03-09",
	"CYP": "2020-03-09",
	"PAN": "2020-03-09",
	"BRN": "2020-03-09",
	"BOL": "2020-03-10",
	"JAM": "2020-03-10",
	"MNG": "2020-03-10",
	"TUR": "2020-03-11",
	"CUB": "2020-03-11",
	"HND": "2020-03-11",
	"IRL": "2020-03-12",
}

var firstCaseByCode map[string]time.Time

func init() {
	firstCaseByCode = make(map[string]time.Time, len(firstCaseDates))
	for code, s := range firstCaseDates {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			panic("dataset: bad first-case date for " + code + ": " + s)
		}
		firstCaseByCode[code] = t
	}
}

// FirstCaseDate returns a country's documented first-case date, if known.
func FirstCaseDate(code string) (time.Time, bool) {
	t, ok := firstCaseByCode[code]
	return t, ok
}
