package mongodb

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/kart-io/sentinel-mongo/pkg/utils/json"
)

// DefaultDefinitionName is used when a definition is declared without a name.
const DefaultDefinitionName = "default"

// Definition declares the MongoDB client of an application.
// Name is only used in diagnostics; URL is a standard MongoDB connection
// string and is not parsed until the client is first built.
type Definition struct {
	Name string `json:"name" mapstructure:"name" env:"NAME" envDefault:"default"`
	URL  string `json:"url" mapstructure:"url" env:"URL"`
}

// String returns a representation safe for logs.
func (d Definition) String() string {
	return fmt.Sprintf("MongoDB{name=%s, url=%s}", d.Name, RedactURI(d.URL))
}

// MarshalJSON implements json.Marshaler with the URL password redacted.
func (d Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}{
		Name: d.Name,
		URL:  RedactURI(d.URL),
	})
}

// DefinitionFromEnv reads a definition from MONGODB_NAME and MONGODB_URL.
// ok is false when MONGODB_URL is not set.
func DefinitionFromEnv() (Definition, bool, error) {
	return parseDefinition(env.Options{Prefix: "MONGODB_"})
}

// DefinitionFromEnvMap is DefinitionFromEnv over an explicit environment.
func DefinitionFromEnvMap(environment map[string]string) (Definition, bool, error) {
	return parseDefinition(env.Options{Prefix: "MONGODB_", Environment: environment})
}

func parseDefinition(opts env.Options) (Definition, bool, error) {
	var def Definition
	if err := env.ParseWithOptions(&def, opts); err != nil {
		return Definition{}, false, fmt.Errorf("failed to read mongodb definition from environment: %w", err)
	}
	if strings.TrimSpace(def.URL) == "" {
		return Definition{}, false, nil
	}
	if def.Name == "" {
		def.Name = DefaultDefinitionName
	}
	return def, true, nil
}
