package upstream

import (
	"bytes"
	"encoding/json"
	"slices"

	pkgerrors "github.com/angelmondragon/kbeauty-storefront/pkg/errors"
)

// defaultListKeys are the envelope fields the commerce API has used for collections.
var defaultListKeys = []string{"data", "items", "results"}

// DecodeList splits a collection response into raw records. It accepts a bare JSON array
// or an object wrapping the array under one of keys (or a default envelope key). Records are
// left undecoded so callers can drop malformed entries one by one.
func DecodeList(data []byte, keys ...string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var records []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected upstream list shape")
		}
		return records, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected upstream list shape")
	}
	for _, key := range slices.Concat(keys, defaultListKeys) {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		return DecodeList(raw, keys...)
	}
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream list envelope has no known collection field")
}

// DecodeObject unwraps a single-record response that may be wrapped under one of keys.
func DecodeObject(data []byte, keys ...string) json.RawMessage {
	trimmed := bytes.TrimSpace(data)
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return trimmed
	}
	for _, key := range slices.Concat(keys, []string{"data"}) {
		if raw, ok := envelope[key]; ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
			return raw
		}
	}
	return trimmed
}
