package weatherstack

import (
	"strconv"
	"strings"
)

// dayIcons maps provider weather codes to icon assets.
var dayIcons = map[int]string{
	113: "day_clear.svg",
	116: "day_partial_cloud.svg",
	119: "cloudy.svg",
	122: "overcast.svg",
	143: "mist.svg",
	248: "fog.svg",
	260: "fog.svg",
	176: "rain.svg",
	263: "rain.svg",
	266: "rain.svg",
	293: "rain.svg",
	296: "day_rain.svg",
	299: "rain.svg",
	302: "rain.svg",
	305: "rain.svg",
	308: "rain.svg",
	353: "day_rain.svg",
	356: "rain.svg",
	359: "rain.svg",
	179: "sleet.svg",
	182: "sleet.svg",
	185: "sleet.svg",
	281: "sleet.svg",
	284: "sleet.svg",
	314: "sleet.svg",
	317: "day_sleet.svg",
	320: "day_sleet.svg",
	323: "day_snow.svg",
	326: "day_snow.svg",
	329: "snow.svg",
	332: "snow.svg",
	335: "snow.svg",
	338: "snow.svg",
	371: "day_snow.svg",
	374: "day_sleet.svg",
	365: "day_sleet.svg",
	377: "sleet.svg",
	350: "sleet.svg",
	230: "snow.svg",
	227: "snow.svg",
	200: "thunder.svg",
	386: "rain_thunder.svg",
	389: "day_rain_thunder.svg",
	392: "snow_thunder.svg",
	395: "snow_thunder.svg",
	9991: "tornado.svg",
	9992: "wind.svg",
	9993: "angry_clouds.svg",
}

// nightIcons overrides a subset of codes after sunset.
var nightIcons = map[int]string{
	113: "night_full_moon_clear.svg",
	116: "night_full_moon_partial_cloud.svg",
	296: "night_full_moon_rain.svg",
	389: "night_full_moon_rain_thunder.svg",
	317: "night_full_moon_sleet.svg",
	323: "night_full_moon_snow.svg",
	395: "night_full_moon_snow_thunder.svg",
}

// WeatherIcon picks the icon asset path for a response, switching to the
// night variant between sunset and sunrise when one exists.
func WeatherIcon(resp *Response) string {
	code := resp.Current.WeatherCode

	if !isDay(resp) {
		if icon, ok := nightIcons[code]; ok {
			return "/weather/" + icon
		}
	}
	if icon, ok := dayIcons[code]; ok {
		return "/weather/" + icon
	}
	return "/weather/cloudy.svg"
}

// isDay reports whether the observation's local time falls between sunrise
// and sunset. Missing or malformed times default to day.
func isDay(resp *Response) bool {
	localtime := resp.Location.Localtime
	astro := resp.Current.Astro
	if localtime == "" || astro.Sunrise == "" || astro.Sunset == "" {
		return true
	}

	parts := strings.SplitN(localtime, " ", 2)
	if len(parts) != 2 {
		return true
	}
	current, ok := minutes24(parts[1])
	if !ok {
		return true
	}
	sunrise, ok := minutes12(astro.Sunrise)
	if !ok {
		return true
	}
	sunset, ok := minutes12(astro.Sunset)
	if !ok {
		return true
	}

	return current >= sunrise && current < sunset
}

// minutes24 parses "15:04" into minutes since midnight.
func minutes24(t string) (int, bool) {
	h, m, ok := splitHM(t)
	if !ok {
		return 0, false
	}
	return h*60 + m, true
}

// minutes12 parses "6:00 PM" into minutes since midnight.
func minutes12(t string) (int, bool) {
	parts := strings.SplitN(t, " ", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, m, ok := splitHM(parts[0])
	if !ok {
		return 0, false
	}
	h = h % 12
	if strings.EqualFold(parts[1], "PM") {
		h += 12
	}
	return h*60 + m, true
}

func splitHM(t string) (int, int, bool) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}
