package adb

// marketingNames maps raw ro.product.model values to the retail names
// most users know their device by. Models not listed here are shown
// as-is.
var marketingNames = map[string]string{
	"M2004J19C":   "Xiaomi Redmi 9",
	"lancelot_in": "Xiaomi Redmi 9 Prime",
	"M2003J6A1G":  "Xiaomi Redmi Note 9S",
	"M2004J19I":   "Xiaomi Redmi 9 Prime",
	"M2006C3LG":   "Xiaomi Redmi 9A",
	"M2007J20CG":  "POCO X3 NFC",
	"M2101K7AG":   "Xiaomi Redmi Note 10",
	"2201116TG":   "Xiaomi 12 Pro",
	"23078PND5G":  "Xiaomi Redmi Note 13",
	"SM-A125F":    "Samsung Galaxy A12",
	"SM-A136B":    "Samsung Galaxy A13 5G",
	"SM-A146P":    "Samsung Galaxy A14 5G",
	"SM-A256B":    "Samsung Galaxy A25 5G",
	"SM-A346B":    "Samsung Galaxy A34 5G",
	"SM-A546B":    "Samsung Galaxy A54 5G",
	"SM-F926B":    "Samsung Galaxy Z Fold3 5G",
	"SM-F936B":    "Samsung Galaxy Z Fold4",
	"SM-S901B":    "Samsung Galaxy S22",
	"SM-S928B":    "Samsung Galaxy S24 Ultra",
	"HD1913":      "OnePlus 7T Pro",
	"CPH2603":     "Oppo F25 Pro",
	"CPH2617":     "Oppo A59",
	"LE2123":      "OnePlus 9 Pro",
	"DN2103":      "OnePlus Nord CE 5G",
	"A2645":       "iPhone 13 Pro Max",
	"A2882":       "iPhone 14",
	"A3090":       "iPhone 15 Pro",
	"CPH2247":     "OPPO A16",
	"CPH2263":     "OPPO Reno5 4G",
	"CPH2239":     "OPPO F19",
	"V2046":       "Vivo Y20",
	"V2109":       "Vivo X70 Pro+",
	"V2123A":      "iQOO 8 Pro",
}
