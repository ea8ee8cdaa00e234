package ovh

import (
	"sort"
	"strings"
)

const (
	HeaderApplication = "X-Ovh-Application"
	HeaderConsumer    = "X-Ovh-Consumer"
	HeaderTimestamp   = "X-Ovh-Timestamp"
	HeaderSignature   = "X-Ovh-Signature"
	HeaderBatch       = "X-Ovh-Batch"
)

const (
	EndpointTime       = "/auth/time"
	EndpointCredential = "/auth/credential"
)

// Endpoints maps the known API regions to their base URL.
var Endpoints = map[string]string{
	"ovh-eu":        "https://eu.api.ovh.com/1.0/",
	"ovh-us":        "https://api.us.ovhcloud.com/1.0/",
	"ovh-ca":        "https://ca.api.ovh.com/1.0/",
	"kimsufi-eu":    "https://eu.api.kimsufi.com/1.0/",
	"kimsufi-ca":    "https://ca.api.kimsufi.com/1.0/",
	"soyoustart-eu": "https://eu.api.soyoustart.com/1.0/",
	"soyoustart-ca": "https://ca.api.soyoustart.com/1.0/",
	"runabove-ca":   "https://api.runabove.com/1.0/",
}

// ResolveEndpoint returns the base URL of a named endpoint, always ending with "/".
func ResolveEndpoint(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError(KindInvalidRegion, "endpoint cannot be empty", nil)
	}
	base, ok := Endpoints[name]
	if !ok {
		return "", newError(KindInvalidRegion, "unknown endpoint "+name+". Valid endpoints: "+strings.Join(EndpointNames(), ","), nil)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base, nil
}

// EndpointNames lists the known endpoint names in lexical order.
func EndpointNames() []string {
	names := make([]string, 0, len(Endpoints))
	for n := range Endpoints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
