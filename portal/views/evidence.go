package views

import (
	"encoding/base64"
	"mime"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

type EvidenceKind int

const (
	EvidenceNone     EvidenceKind = iota
	EvidenceOpen                  // a link to open
	EvidenceDownload              // inline data to save as a file
	EvidenceCopy                  // plain text to copy
)

var ErrBadDataURL = errors.New("malformed data URL")

const defaultDataMediaType = "text/plain;charset=US-ASCII"

type Evidence struct {
	Kind EvidenceKind
	URL  string // EvidenceOpen

	// EvidenceDownload
	Data      []byte
	MediaType string
	Filename  string

	Text string // EvidenceCopy
}

// ResolveEvidence decides how the evidence of an activity is presented:
// http(s) links and /uploads paths are opened, data URLs are decoded for download,
// anything else is text to copy.
func ResolveEvidence(s string) (Evidence, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Evidence{Kind: EvidenceNone}, nil
	case strings.HasPrefix(s, "http"), strings.HasPrefix(s, "/uploads"):
		return Evidence{Kind: EvidenceOpen, URL: s}, nil
	case strings.HasPrefix(s, "data:"):
		data, mediaType, err := decodeDataURL(s)
		if err != nil {
			return Evidence{}, err
		}
		return Evidence{
			Kind:      EvidenceDownload,
			Data:      data,
			MediaType: mediaType,
			Filename:  "evidencia" + extension(mediaType),
		}, nil
	default:
		return Evidence{Kind: EvidenceCopy, Text: s}, nil
	}
}

// decodeDataURL decodes data:[<mediatype>][;base64],<data>.
func decodeDataURL(s string) ([]byte, string, error) {
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return nil, "", ErrBadDataURL
	}
	meta, payload := s[len("data:"):comma], s[comma+1:]

	isBase64 := strings.HasSuffix(meta, ";base64")
	mediaType := strings.TrimSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = defaultDataMediaType
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
				return nil, "", errors.Wrap(ErrBadDataURL, err.Error())
			}
		}
		return data, mediaType, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", errors.Wrap(ErrBadDataURL, err.Error())
	}
	return []byte(text), mediaType, nil
}

func extension(mediaType string) string {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ".bin"
	}
	switch base {
	case "text/plain":
		return ".txt"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
