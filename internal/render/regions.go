package render

// regionLabels maps region ids to the short labels used in titles.
var regionLabels = map[string]string{
	"us-east-1":      "N. Virginia",
	"us-east-2":      "Ohio",
	"us-west-1":      "N. California",
	"us-west-2":      "Oregon",
	"af-south-1":     "Cape Town",
	"ap-east-1":      "Hong Kong",
	"ap-south-1":     "Mumbai",
	"ap-northeast-1": "Tokyo",
	"ap-northeast-2": "Seoul",
	"ap-northeast-3": "Osaka",
	"ap-southeast-1": "Singapore",
	"ap-southeast-2": "Sydney",
	"ca-central-1":   "Canada",
	"eu-central-1":   "Frankfurt",
	"eu-west-1":      "Ireland",
	"eu-west-2":      "London",
	"eu-west-3":      "Paris",
	"eu-north-1":     "Stockholm",
	"eu-south-1":     "Milan",
	"me-south-1":     "Bahrain",
	"sa-east-1":      "São Paulo",
}

// RegionLabel returns the display label for a region, falling back to the
// raw region id.
func RegionLabel(region string) string {
	if label, ok := regionLabels[region]; ok {
		return label
	}
	return region
}
