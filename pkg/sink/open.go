package sink

import (
	"fmt"
	"log/slog"
	"strings"
)

// Open returns a sink for a location of the form kind:address, one of
//
//	jsonfile:/path/to/feed.json
//	es8:http://host:9200
//	es8:
//
// An es8 sink with no address falls back to the environment.
func Open(location string, log *slog.Logger) (Sink, error) {
	bits := strings.SplitN(location, ":", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("invalid sink %q, expected [jsonfile:/path/file.json es8:http://host:9200]", location)
	}

	switch bits[0] {
	case "jsonfile":
		if bits[1] == "" {
			return nil, fmt.Errorf("jsonfile sink requires a path")
		}
		return NewJSONFile(bits[1]), nil
	case "es8":
		var urls []string
		if bits[1] != "" {
			urls = strings.Split(bits[1], ",")
		}
		return NewElasticsearchV8(log, urls...), nil
	}
	return nil, fmt.Errorf("unknown sink kind %q", bits[0])
}
