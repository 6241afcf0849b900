package cleaner

import "strings"

// countryZip maps an uppercased, trimmed country name (as it appears in the
// merchant_state column for non-US transactions) to the 5-character postal
// placeholder used when the zip code is missing. Kept as an explicit table
// so it can be tested and extended independently of the normalization logic.
var countryZip = map[string]string{
	"MEXICO": "MEX00", "VATICAN CITY": "VAT00", "DOMINICAN REPUBLIC": "DOM00",
	"CANADA": "CAN00", "ALBANIA": "ALB00", "ALGERIA": "ALG00",
	"ANDORRA": "AND00", "ARGENTINA": "ARG00", "ARUBA": "ARU00",
	"AUSTRALIA": "AUS00", "AUSTRIA": "AUT00", "AZERBAIJAN": "AZE00",
	"BAHRAIN": "BAH00", "BANGLADESH": "BGD00", "BARBADOS": "BRB00",
	"BELGIUM": "BEL00", "BELIZE": "BLZ00", "BENIN": "BEN00",
	"BOSNIA AND HERZEGOVINA": "BIH00", "BRAZIL": "BRA00", "BRUNEI": "BRN00",
	"BURKINA FASO": "BFA00", "CABO VERDE": "CPV00", "CAMEROON": "CMR00",
	"CHILE": "CHL00", "CHINA": "CHN00", "COLOMBIA": "COL00",
	"COSTA RICA": "CRI00", "COTE D IVOIRE": "CIV00", "CROATIA": "HRV00",
	"CYPRUS": "CYP00", "CZECH REPUBLIC": "CZE00", "DENMARK": "DNK00",
	"EAST TIMOR (TIMOR-LESTE)": "TLS00", "ECUADOR": "ECU00", "EGYPT": "EGY00",
	"EQUATORIAL GUINEA": "GNQ00", "ERITREA": "ERI00", "ESTONIA": "EST00",
	"ETHIOPIA": "ETH00", "FIJI": "FJI00", "FINLAND": "FIN00",
	"FRANCE": "FRA00", "GABON": "GAB00", "GEORGIA": "GEO00",
	"GERMANY": "DEU00", "GHANA": "GHA00", "GREECE": "GRC00",
	"GUATEMALA": "GTM00", "GUINEA": "GIN00", "GUYANA": "GUY00",
	"HAITI": "HTI00", "HONDURAS": "HND00", "HONG KONG": "HKG00",
	"HUNGARY": "HUN00", "ICELAND": "ISL00", "INDIA": "IND00",
	"INDONESIA": "IDN00", "IRAN": "IRN00", "IRAQ": "IRQ00",
	"IRELAND": "IRL00", "ISRAEL": "ISR00", "ITALY": "ITA00",
	"JAMAICA": "JAM00", "JAPAN": "JPN00", "JORDAN": "JOR00",
	"KENYA": "KEN00", "KOSOVO": "KOS00", "KYRGYZSTAN": "KGZ00",
	"LATVIA": "LVA00", "LEBANON": "LBN00", "LIBERIA": "LBR00",
	"LITHUANIA": "LTU00", "LUXEMBOURG": "LUX00", "MACEDONIA": "MKD00",
	"MALAYSIA": "MYS00", "MALDIVES": "MDV00", "MALI": "MLI00",
	"MALTA": "MLT00", "MARSHALL ISLANDS": "MHL00", "MICRONESIA": "FSM00",
	"MOLDOVA": "MDA00", "MONACO": "MCO00", "MONGOLIA": "MNG00",
	"MONTENEGRO": "MNE00", "MOROCCO": "MAR00", "MOZAMBIQUE": "MOZ00",
	"MYANMAR (BURMA)": "MMR00", "NAURU": "NRU00", "NETHERLANDS": "NLD00",
	"NEW ZEALAND": "NZL00", "NIGER": "NER00", "NIGERIA": "NGA00",
	"NORWAY": "NOR00", "OMAN": "OMN00", "PAKISTAN": "PAK00",
	"PANAMA": "PAN00", "PAPUA NEW GUINEA": "PNG00", "PERU": "PER00",
	"PHILIPPINES": "PHL00", "POLAND": "POL00", "PORTUGAL": "PRT00",
	"QATAR": "QAT00", "REPUBLIC OF THE CONGO": "COG00", "ROMANIA": "ROU00",
	"RUSSIA": "RUS00", "SAINT VINCENT AND THE GRENADINES": "VCT00", "SAMOA": "WSM00",
	"SAUDI ARABIA": "SAU00", "SENEGAL": "SEN00", "SERBIA": "SRB00",
	"SEYCHELLES": "SYC00", "SIERRA LEONE": "SLE00", "SINGAPORE": "SGP00",
	"SLOVAKIA": "SVK00", "SLOVENIA": "SVN00", "SOLOMON ISLANDS": "SLB00",
	"SOUTH AFRICA": "ZAF00", "SOUTH KOREA": "KOR00", "SOUTH SUDAN": "SSD00",
	"SPAIN": "ESP00", "SRI LANKA": "LKA00", "SUDAN": "SDN00",
	"SURINAME": "SUR00", "SWAZILAND": "SWZ00", "SWEDEN": "SWE00",
	"SWITZERLAND": "CHE00", "TAIWAN": "TWN00", "THAILAND": "THA00",
	"THE BAHAMAS": "BHS00", "TONGA": "TON00", "TRINIDAD AND TOBAGO": "TTO00",
	"TUNISIA": "TUN00", "TURKEY": "TUR00", "TUVALU": "TUV00",
	"UKRAINE": "UKR00", "UNITED ARAB EMIRATES": "ARE00", "UNITED KINGDOM": "GBR00",
	"URUGUAY": "URY00", "UZBEKISTAN": "UZB00", "VANUATU": "VUT00",
	"VENEZUELA": "VEN00", "VIETNAM": "VNM00", "YEMEN": "YEM00",
	"ZAMBIA": "ZMB00", "ZIMBABWE": "ZWE00",
}

// fallbackCountryZip is assigned when a non-US merchant state is not in the
// table.
const fallbackCountryZip = "OTH00"

// CountryZip looks up the postal placeholder for a country name. The lookup
// is case-insensitive and ignores surrounding whitespace; unknown countries
// fall back to OTH00.
func CountryZip(state string) string {
	if code, ok := countryZip[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return code
	}
	return fallbackCountryZip
}
