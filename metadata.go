package imagegroup

import (
	"bytes"
	"strings"

	"github.com/bep/imagemeta"
)

// Attribution holds the creator and rights fields embedded in an image's
// EXIF, IPTC or XMP metadata.
type Attribution struct {
	Creator   string
	Copyright string
	Credit    string
	License   string
}

// String renders the non-empty fields as "creator, © copyright, credit, license".
func (a *Attribution) String() string {
	if a == nil {
		return ""
	}
	var parts []string
	if a.Creator != "" {
		parts = append(parts, a.Creator)
	}
	if a.Copyright != "" {
		c := a.Copyright
		if !strings.Contains(c, "©") && !strings.HasPrefix(strings.ToLower(c), "copyright") {
			c = "© " + c
		}
		parts = append(parts, c)
	}
	if a.Credit != "" && a.Credit != a.Creator {
		parts = append(parts, a.Credit)
	}
	if a.License != "" {
		parts = append(parts, a.License)
	}
	return strings.Join(parts, ", ")
}

// wantedTags maps (source, tag-name) → true for every tag we care about.
var wantedTags = map[imagemeta.Source]map[string]bool{
	imagemeta.IPTC: {
		"CopyrightNotice": true,
		"Credit":          true,
		"Byline":          true,
	},
	imagemeta.EXIF: {
		"Copyright": true,
		"Artist":    true,
	},
	imagemeta.XMP: {
		"WebStatement": true,
		"UsageTerms":   true,
		"License":      true,
		"Rights":       true,
		"Creator":      true,
	},
}

// ExtractAttribution parses EXIF/IPTC/XMP metadata from raw image bytes.
// Returns nil if the data is empty, cannot be parsed, or carries none of
// the attribution fields. Never returns an error.
func ExtractAttribution(data []byte) *Attribution {
	if len(data) == 0 {
		return nil
	}

	attr := &Attribution{}
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if applyTag(attr, ti.Source, ti.Tag, tagValueString(ti.Value)) {
				found = true
			}
			return nil
		},
	})

	if err != nil || !found {
		return nil
	}
	return attr
}

// applyTag stores value in the matching Attribution field. The first
// non-empty value for a field wins, so EXIF Artist beats a later XMP
// Creator. Returns true if a field was set.
func applyTag(attr *Attribution, source imagemeta.Source, tag, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	var field *string
	switch source {
	case imagemeta.EXIF:
		switch tag {
		case "Artist":
			field = &attr.Creator
		case "Copyright":
			field = &attr.Copyright
		}
	case imagemeta.IPTC:
		switch tag {
		case "Byline":
			field = &attr.Creator
		case "CopyrightNotice":
			field = &attr.Copyright
		case "Credit":
			field = &attr.Credit
		}
	case imagemeta.XMP:
		switch tag {
		case "Creator":
			field = &attr.Creator
		case "Rights":
			field = &attr.Copyright
		case "License", "WebStatement", "UsageTerms":
			field = &attr.License
		}
	}

	if field == nil || *field != "" {
		return false
	}
	*field = value
	return true
}

// tagValueString extracts a string from a tag value.
// XMP values may be string or []string (from altList/seqList).
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}
