// Package json wraps the json-iterator library,
// the API is compatible with the standard library.
package json

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary // nolint: gochecknoglobals

func Encode(v any, pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, errors.Errorf(`cannot encode JSON: %w`, err)
	}
	return data, nil
}

func EncodeString(v any, pretty bool) (string, error) {
	data, err := Encode(v, pretty)
	return string(data), err
}

func MustEncode(v any, pretty bool) []byte {
	data, err := Encode(v, pretty)
	if err != nil {
		panic(err)
	}
	return data
}

func MustEncodeString(v any, pretty bool) string {
	data, err := EncodeString(v, pretty)
	if err != nil {
		panic(err)
	}
	return data
}

func Decode(data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return errors.Errorf(`cannot decode JSON: %w`, err)
	}
	return nil
}

func DecodeString(data string, target any) error {
	return Decode([]byte(data), target)
}

func MustDecode(data []byte, target any) {
	if err := Decode(data, target); err != nil {
		panic(err)
	}
}

func MustDecodeString(data string, target any) {
	if err := DecodeString(data, target); err != nil {
		panic(err)
	}
}
