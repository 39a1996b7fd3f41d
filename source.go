package slotwatch

import "time"

// Default appointment API target.
const (
	DefaultSourceURL = "https://m.hsyuntai.com/med/hp/hospitals/100044/registration/doctorDetails225"
	DefaultTimeout   = 10 * time.Second
	DefaultInterval  = time.Minute
)

// Source describes the appointment API request made on every cycle.
type Source struct {
	// URL is the schedule endpoint.
	URL string

	// Headers are sent verbatim; a "Host" entry overrides the request host.
	Headers map[string]string

	// Query parameters are added to every request, including empty values.
	Query map[string]string

	// Timeout bounds the request. Zero means [DefaultTimeout].
	Timeout time.Duration
}

// DefaultSource returns the doctor schedule request the monitor was built for.
func DefaultSource() Source {
	return Source{
		URL: DefaultSourceURL,
		Headers: map[string]string{
			"Host":    "m.hsyuntai.com",
			"unicode": "ZwiT3izIT9OmC4ggggytpe60D3t3PD",
		},
		Query: map[string]string{
			"branchId":     "",
			"docId":        "489437",
			"filtrate":     "Y",
			"isShowTime":   "false",
			"outpatientId": "",
			"schListType":  "true",
			"type":         "0",
		},
		Timeout: DefaultTimeout,
	}
}

// PushPlus configures the PushPlus webhook notifier.
//
// An empty Token disables delivery; matches are still logged.
type PushPlus struct {
	URL         string
	Token       string
	TitleSuffix string
	Timeout     time.Duration
}
