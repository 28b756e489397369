package scenario

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// LoadFile reads a YAML scenario from path.
func LoadFile(path string) (Scenario, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Scenario{}, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return unmarshal(k)
}

// Parse decodes a YAML scenario document.
func Parse(b []byte) (Scenario, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(b), yaml.Parser()); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (Scenario, error) {
	var sc Scenario
	if err := k.UnmarshalWithConf("", &sc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}
