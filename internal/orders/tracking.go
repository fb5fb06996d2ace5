package orders

import (
	"fmt"
	"net/url"
	"strings"
)

type courier struct {
	key string
	url string
}

// Transporteurs connus, testés dans l'ordre.
var couriers = []courier{
	{"fedex", "https://www.fedex.com/fedextrack/?trknbr=%s"},
	{"usps", "https://tools.usps.com/go/TrackConfirmAction?tLabels=%s"},
	{"ups", "https://www.ups.com/track?tracknum=%s"},
	{"dhl", "https://www.dhl.com/us-en/home/tracking/tracking-parcel.html?submit=1&tracking-id=%s"},
	{"amazon", "https://www.amazon.com/progress-tracker/package/?shipmentId=%s"},
	{"bluedart", "https://www.bluedart.com/web/guest/trackdartresult?trackFor=0&trackNo=%s"},
	{"delhivery", "https://www.delhivery.com/track/package/%s"},
	{"dtdc", "https://www.dtdc.in/trace.asp?cnno=%s"},
	{"indiapost", "https://www.indiapost.gov.in/_layouts/15/dop.portal.tracking/trackconsignment.aspx?consignmentnumber=%s"},
}

// TrackingURL dérive le lien de suivi à partir du nom du transporteur
// (sous-chaîne, casse et espaces ignorés). Transporteur inconnu : recherche web.
func TrackingURL(courierName, trackingID string) string {
	if strings.TrimSpace(courierName) == "" || strings.TrimSpace(trackingID) == "" {
		return ""
	}

	normalized := strings.ToLower(strings.Join(strings.Fields(courierName), ""))
	escaped := url.QueryEscape(trackingID)
	for _, c := range couriers {
		if strings.Contains(normalized, c.key) {
			return fmt.Sprintf(c.url, escaped)
		}
	}

	return "https://www.google.com/search?q=" + url.QueryEscape(courierName+" tracking "+trackingID)
}
