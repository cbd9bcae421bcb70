// internal/ua/ua.go
//
// User-Agent classification.
//
// Context
// -------
// Request enrichment wants a handful of plain strings (browser, OS,
// device class) for logs and traffic breakdowns, not uasurfer's enum
// values.  This wrapper does the uasurfer call once and flattens the
// result; nothing else in the codebase imports the library.
//
// Notes
// -----
// • uasurfer's stringers carry their type prefix ("BrowserChrome",
//   "OSWindows"); the flattened names here drop it.
// • Oxford commas, two spaces after periods.

package ua

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Info is the flattened classification of one User-Agent header.
// Device is one of "Desktop", "Mobile", "Tablet", or "Other".
type Info struct {
	Browser   string
	Version   string
	OS        string
	OSVersion string
	Device    string
	Platform  string
	IsBot     bool
	Raw       string
}

// deviceNames collapses uasurfer's device classes into the buckets the
// traffic breakdown charts; wearables count as mobile.
var deviceNames = map[surfer.DeviceType]string{
	surfer.DeviceComputer: "Desktop",
	surfer.DeviceTablet:   "Tablet",
	surfer.DevicePhone:    "Mobile",
	surfer.DeviceWearable: "Mobile",
}

// Parse classifies one raw User-Agent header.
func Parse(raw string) Info {
	u := surfer.Parse(raw)

	device, ok := deviceNames[u.DeviceType]
	if !ok {
		device = "Other"
	}
	return Info{
		Browser:   trimEnum(u.Browser.Name.String(), "Browser"),
		Version:   dotted(u.Browser.Version),
		OS:        trimEnum(u.OS.Name.String(), "OS"),
		OSVersion: dotted(u.OS.Version),
		Device:    device,
		Platform:  trimEnum(u.OS.Platform.String(), "Platform"),
		IsBot:     u.IsBot(),
		Raw:       raw,
	}
}

// trimEnum strips the stringer type prefix: "BrowserChrome" → "Chrome".
func trimEnum(s, prefix string) string {
	if t := strings.TrimPrefix(s, prefix); t != "" {
		return t
	}
	return s
}

// dotted renders a version with trailing zero components dropped:
// 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func dotted(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(v.Major)
	}
}
