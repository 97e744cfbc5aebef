package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"unicode"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ReadPayload decodes a JSON or YAML document into a JSON-compatible value
// (maps, slices, strings, float64, bool, nil). YAML input is converted
// through JSON so the result can be sent as a request body unchanged.
func ReadPayload(data []byte) (any, error) {

	data = bytes.TrimLeftFunc(data, unicode.IsSpace)

	if len(data) == 0 {
		return nil, fmt.Errorf("no data provided")
	}

	if data[0] != '{' && data[0] != '[' {
		logrus.Debugln("Payload format detected: YAML")

		var yamlData any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML payload: %w", err)
		}

		jsonData, err := json.Marshal(yamlData)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML payload to JSON: %w", err)
		}
		data = jsonData
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON payload: %w", err)
	}

	return payload, nil
}

// ReadPayloadFile reads path and decodes it with ReadPayload. A path of "-"
// reads from stdin.
func ReadPayloadFile(path string) (any, error) {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		var buf bytes.Buffer
		_, err = buf.ReadFrom(os.Stdin)
		data = buf.Bytes()
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read payload %s: %w", path, err)
	}

	return ReadPayload(data)
}

// ConvertInterfaceToInterface round-trips from through JSON into to.
func ConvertInterfaceToInterface(from any, to any) error {
	if from == nil {
		return nil
	}

	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}
