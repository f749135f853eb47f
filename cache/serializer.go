package cache

import "encoding/json"

// JSONSerializer encoding/json codec
type JSONSerializer struct{}

// NewJSONSerializer encoding/json serializer
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Serialize implements Serializer
func (s *JSONSerializer) Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Deserialize implements Serializer
func (s *JSONSerializer) Deserialize(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Name implements Serializer
func (s *JSONSerializer) Name() string {
	return "json"
}
