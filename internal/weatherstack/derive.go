package weatherstack

import (
	"strconv"
	"strings"
	"time"
)

// Report is the normalized record the presentation layer consumes.
type Report struct {
	Name        string  `json:"name"`
	Region      string  `json:"region"`
	Time        string  `json:"time"`
	Temperature string  `json:"temperature"`
	Icon        string  `json:"icon"`
	UVIndex     float64 `json:"uvIndex"`
	Wind        float64 `json:"wind"`
	Humidity    float64 `json:"humidity"`
	Visibility  float64 `json:"visibility"`
	FeelsLike   float64 `json:"feelsLike"`
	Pressure    float64 `json:"pressure"`
	Sunset      string  `json:"sunset"`
}

// DetailCard is one label/value/icon triple for the detail grid.
type DetailCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

// Transform normalizes a provider response into a Report.
func Transform(resp *Response) Report {
	return Report{
		Name:        resp.Location.Name,
		Region:      resp.Location.Region,
		Time:        localHHMM(resp.Location.Localtime),
		Temperature: formatNumber(resp.Current.Temperature),
		Icon:        WeatherIcon(resp),
		UVIndex:     resp.Current.UVIndex,
		Wind:        resp.Current.WindSpeed,
		Humidity:    resp.Current.Humidity,
		Visibility:  resp.Current.Visibility,
		FeelsLike:   resp.Current.Feelslike,
		Pressure:    resp.Current.Pressure,
		Sunset:      resp.Current.Astro.Sunset,
	}
}

type detailField struct {
	label  string
	suffix string
	icon   string
	value  func(Report) string
}

// detailFields fixes the order, labels, unit suffixes and icon assets of
// the detail grid.
var detailFields = []detailField{
	{"Time", "", "icon-cloud-sun.svg", func(r Report) string { return r.Time }},
	{"UV Index", "", "icon-sun.svg", func(r Report) string { return formatNumber(r.UVIndex) }},
	{"Wind", " km/h", "icon-wind.svg", func(r Report) string { return formatNumber(r.Wind) }},
	{"Humidity", "%", "icon-shower.svg", func(r Report) string { return formatNumber(r.Humidity) }},
	{"Visibility", " km", "icon-eye.svg", func(r Report) string { return formatNumber(r.Visibility) }},
	{"Feels Like", "°C", "icon-thermometer-half.svg", func(r Report) string { return formatNumber(r.FeelsLike) }},
	{"Pressure", " hPa", "icon-tachometer-alt.svg", func(r Report) string { return formatNumber(r.Pressure) }},
	{"Sunset", "", "icon-cloud-sun.svg", func(r Report) string { return r.Sunset }},
}

// DeriveDetails renders the fixed, ordered list of detail cards for a
// report. Labels are upper-cased; values carry their unit suffix.
func DeriveDetails(r Report) []DetailCard {
	cards := make([]DetailCard, 0, len(detailFields))
	for _, f := range detailFields {
		cards = append(cards, DetailCard{
			Label: strings.ToUpper(f.label),
			Value: f.value(r) + f.suffix,
			Icon:  f.icon,
		})
	}
	return cards
}

// localHHMM converts the provider's "2006-01-02 15:04" localtime into
// "03:04 PM". Unparseable input is passed through unchanged.
func localHHMM(localtime string) string {
	t, err := time.Parse("2006-01-02 15:04", localtime)
	if err != nil {
		return localtime
	}
	return t.Format("03:04 PM")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
