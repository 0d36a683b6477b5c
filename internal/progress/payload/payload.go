// Package payload turns the untyped JSON body of an update request into a
// domain.ProgressUpdate.
//
// Validation is fail-fast: the first violation found is reported and the
// partially built update is discarded. Unknown keys are ignored.
package payload

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/goccy/go-json"
)

const (
	FieldManga   = "manga"
	FieldSource  = "source"
	FieldChapter = "chapter"
	FieldPage    = "page"
)

type kind int

const (
	kindString kind = iota
	kindNumber
)

// fields lists the recognised keys in the order they are checked, so the
// reported violation does not depend on key order in the document.
var fields = []struct {
	name string
	kind kind
}{
	{FieldManga, kindString},
	{FieldSource, kindString},
	{FieldChapter, kindNumber},
	{FieldPage, kindNumber},
}

// Parse validates raw and returns the update it describes. Every failure is a
// *domain.Error of kind KindBadRequest.
func Parse(raw []byte) (domain.ProgressUpdate, error) {
	if !utf8.Valid(raw) {
		return domain.ProgressUpdate{}, domain.BadRequest("body is not valid UTF-8")
	}

	obj, err := decodeObject(raw)
	if err != nil {
		return domain.ProgressUpdate{}, err
	}

	var (
		strs = make(map[string]string, 2)
		nums = make(map[string]uint32, 2)
	)
	for _, f := range fields {
		v, ok := obj[f.name]
		if !ok {
			continue
		}

		switch f.kind {
		case kindString:
			s, ok := v.(string)
			if !ok {
				return domain.ProgressUpdate{}, domain.BadRequest("%s should be a string", f.name)
			}
			strs[f.name] = s
		case kindNumber:
			n, ok := v.(json.Number)
			if !ok {
				return domain.ProgressUpdate{}, domain.BadRequest("%s should be a number", f.name)
			}
			u, err := toUint32(n)
			if err != nil {
				return domain.ProgressUpdate{}, domain.BadRequest(
					"%s should be a non-negative integer no larger than %d", f.name, uint32(math.MaxUint32))
			}
			nums[f.name] = u
		}
	}

	var missing []string
	if _, ok := strs[FieldManga]; !ok {
		missing = append(missing, FieldManga)
	}
	if _, ok := strs[FieldSource]; !ok {
		missing = append(missing, FieldSource)
	}
	if _, ok := nums[FieldChapter]; !ok {
		missing = append(missing, FieldChapter)
	}
	if len(missing) > 0 {
		return domain.ProgressUpdate{}, domain.BadRequest(
			"'manga', 'source' and 'chapter' are mandatory (missing: %s)", strings.Join(missing, ", "))
	}

	return domain.ProgressUpdate{
		Manga:   strs[FieldManga],
		Source:  strs[FieldSource],
		Chapter: nums[FieldChapter],
		Page:    nums[FieldPage], // zero when absent
	}, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.BadRequest("Expected JSON: empty body")
		}
		return nil, domain.BadRequest("Expected JSON: %v", err)
	}

	// The decoder stops after the first value and tolerates some non-RFC
	// literals (leading zeros). The whole document must still be strict JSON.
	if err := stdjson.Unmarshal(raw, new(stdjson.RawMessage)); err != nil {
		return nil, domain.BadRequest("Expected JSON: %v", err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, domain.BadRequest("Expected JSON object")
	}
	return obj, nil
}

// toUint32 accepts plain integer literals only; fractions, exponents, negative
// values and anything above MaxUint32 are rejected.
func toUint32(n json.Number) (uint32, error) {
	u, err := strconv.ParseUint(n.String(), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}
