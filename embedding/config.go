package embedding

import (
	"encoding/json"
	"fmt"
	"os"
)

// Asset file names inside a model directory.
const (
	ModelFile     = "model.onnx"
	TokenizerFile = "tokenizer.json"
	ConfigFile    = "model_info"
)

// AssetFiles lists the files a model directory must contain.
var AssetFiles = []string{ModelFile, TokenizerFile, ConfigFile}

// ModelConfig describes the embedding model.
type ModelConfig struct {
	ModelName  string `json:"model_name"`
	License    string `json:"license"`
	HiddenSize int    `json:"hidden_size"`
	MaxLength  int    `json:"max_length"`
	OutputName string `json:"output_name"`
	UsePooling bool   `json:"use_pooling"`
}

// requiredKeys are the keys model_info must carry, in the order errors report them.
var requiredKeys = []string{"model_name", "license", "hidden_size", "max_length", "output_name", "use_pooling"}

// ParseModelConfig decodes a model_info document.
//
// Every required key must be present with the right JSON type. Unknown keys
// are ignored.
func ParseModelConfig(data []byte) (ModelConfig, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ModelConfig{}, fmt.Errorf("%w: %v", ErrInvalidModelConfig, err)
	}
	if raw == nil {
		return ModelConfig{}, fmt.Errorf("%w: document is not an object", ErrInvalidModelConfig)
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return ModelConfig{}, fmt.Errorf("%w: missing keys %v", ErrInvalidModelConfig, missing)
	}

	var cfg ModelConfig
	fields := []struct {
		key string
		dst any
	}{
		{"model_name", &cfg.ModelName},
		{"license", &cfg.License},
		{"hidden_size", &cfg.HiddenSize},
		{"max_length", &cfg.MaxLength},
		{"output_name", &cfg.OutputName},
		{"use_pooling", &cfg.UsePooling},
	}
	for _, f := range fields {
		value := raw[f.key]
		if string(value) == "null" {
			return ModelConfig{}, fmt.Errorf("%w: %s is null", ErrInvalidModelConfig, f.key)
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			return ModelConfig{}, fmt.Errorf("%w: %s: %v", ErrInvalidModelConfig, f.key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return ModelConfig{}, err
	}
	return cfg, nil
}

// LoadModelConfig reads and parses the model_info file at path.
func LoadModelConfig(path string) (ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("%w: %v", ErrInvalidModelConfig, err)
	}
	return ParseModelConfig(data)
}

// Validate checks the value constraints of a decoded config.
func (c ModelConfig) Validate() error {
	if c.HiddenSize <= 0 {
		return fmt.Errorf("%w: hidden_size must be positive, got %d", ErrInvalidModelConfig, c.HiddenSize)
	}
	if c.MaxLength <= 0 {
		return fmt.Errorf("%w: max_length must be positive, got %d", ErrInvalidModelConfig, c.MaxLength)
	}
	if c.OutputName == "" {
		return fmt.Errorf("%w: output_name must not be empty", ErrInvalidModelConfig)
	}
	return nil
}

// OutputLen is the number of values the inference graph produces for one
// sequence of MaxLength tokens.
func (c ModelConfig) OutputLen() int {
	if c.UsePooling {
		return c.MaxLength * c.HiddenSize
	}
	return c.HiddenSize
}
