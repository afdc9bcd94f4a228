// Package archive decodes the export API's response archive: a zip
// container of per-hour gzipped newline-delimited JSON members.
package archive

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/newthinker/ampsync/internal/core"
)

// payloadSuffix is the member suffix for gzipped JSON payloads.
const payloadSuffix = ".json.gz"

// Decode walks the archive once, decompressing each member and invoking fn
// with the member's canonical hour key and its raw JSONL content. One fetch
// window can return multiple members for the same hour (the export groups
// by project and hour); every member is delivered, callers concatenate.
// A corrupt container or member fails the whole decode.
func Decode(data []byte, fn func(hourKey string, content []byte) error) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return core.WrapError(core.ErrDecode, fmt.Errorf("opening archive: %w", err))
	}

	for _, member := range zr.File {
		content, err := decompressMember(member)
		if err != nil {
			return core.WrapError(core.ErrDecode,
				fmt.Errorf("member %s: %w", member.Name, err))
		}

		key, err := NormalizeName(member.Name)
		if err != nil {
			return err
		}

		if err := fn(key, content); err != nil {
			return err
		}
	}

	return nil
}

func decompressMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	gz, err := gzip.NewReader(rc)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// NormalizeName maps a raw archive member name to its canonical hour key,
// e.g. "100011471_2025-11-09_21#abc123.json.gz" -> "2025-11-09_21".
// The leading numeric segment is the project ID, the "#" suffix is a
// content hash; neither is identity-bearing.
func NormalizeName(name string) (string, error) {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, payloadSuffix)
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	if first, rest, ok := strings.Cut(base, "_"); ok && isDigits(first) {
		base = rest
	}

	// Zero-pad the hour: "2025-11-11_6" -> "2025-11-11_06".
	sep := strings.LastIndexByte(base, '_')
	if sep < 0 {
		return "", core.WrapError(core.ErrParse,
			fmt.Errorf("member name %q has no hour segment", name))
	}
	datePart, hourPart := base[:sep], base[sep+1:]
	if len(hourPart) == 1 {
		hourPart = "0" + hourPart
	}
	key := datePart + "_" + hourPart

	if _, err := core.ParseKey(key); err != nil {
		return "", core.WrapError(core.ErrParse,
			fmt.Errorf("member name %q: no valid hour key (got %q)", name, key))
	}
	return key, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
