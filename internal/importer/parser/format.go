package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Format is a supported statement file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatOFX
	FormatQIF
	FormatMT940
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatOFX:
		return "ofx"
	case FormatQIF:
		return "qif"
	case FormatMT940:
		return "mt940"
	}

	return "unknown"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "ofx", "qfx":
		return FormatOFX, nil
	case "qif":
		return FormatQIF, nil
	case "mt940", "sta", "940":
		return FormatMT940, nil
	}

	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

var mt940Tag = regexp.MustCompile(`(?m)^:(20|25|28C|60[FM]|61|62[FM]|86):`)

// Detect classifies a file by its content markers, falling back to the
// extension and then to CSV. A marker wins over a misleading extension.
func Detect(filename, text string) Format {
	if f := detectContent(text); f != FormatUnknown {
		return f
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx", ".qfx":
		return FormatOFX
	case ".qif":
		return FormatQIF
	case ".sta", ".mt940", ".940":
		return FormatMT940
	}

	return FormatCSV
}

func detectContent(text string) Format {
	head := text
	if len(head) > 4096 {
		head = head[:4096]
	}

	upper := strings.ToUpper(head)
	if strings.Contains(upper, "OFXHEADER") || strings.Contains(upper, "<OFX>") || strings.Contains(upper, "<?OFX") {
		return FormatOFX
	}

	for _, line := range splitLines(head) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "!type:") || strings.HasPrefix(lower, "!account") || strings.HasPrefix(lower, "!option") {
			return FormatQIF
		}

		break
	}

	if tags := mt940Tag.FindAllString(head, -1); len(tags) >= 2 && strings.Contains(head, ":61:") {
		return FormatMT940
	}

	return FormatUnknown
}
