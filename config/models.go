package config

import (
	"fmt"
	"strings"
)

// ModelID is a completion model the router is allowed to serve.
type ModelID string

const (
	ModelMistral ModelID = "mistral"
	ModelGPTOSS  ModelID = "gpt-oss"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = ModelMistral

// SupportedModels is the closed allowlist of completion models.
var SupportedModels = []ModelID{ModelMistral, ModelGPTOSS}

// ResolveModel maps a request's model field onto the allowlist. Empty or
// whitespace-only input resolves to the default; anything outside the
// allowlist is an error the HTTP layer turns into a 400.
func ResolveModel(name string) (ModelID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultModel, nil
	}
	for _, model := range SupportedModels {
		if ModelID(name) == model {
			return model, nil
		}
	}
	return "", fmt.Errorf("unsupported model %q (supported: %s)", name, supportedModelNames())
}

func supportedModelNames() string {
	names := make([]string, len(SupportedModels))
	for i, model := range SupportedModels {
		names[i] = string(model)
	}
	return strings.Join(names, ", ")
}
