package manipulation

import "github.com/asakaida/datastore/internal/entities"

// ConfigProvider answers the manipulation policy questions for one call
type ConfigProvider interface {
	AllowReplace(relation string) bool
	DeleteOnDetach(relation string) bool
}

// Policy is the effective configuration for a single attach or detach call
type Policy struct {
	config              entities.ManipulationConfig
	allowReplaceDefault bool
}

// NewPolicy creates a policy from an explicit configuration
func NewPolicy(config entities.ManipulationConfig) Policy {
	return Policy{config: config}
}

// AllowReplace reports whether a plural relation may be fully replaced
func (p Policy) AllowReplace(relation string) bool {
	if v, ok := p.config.AllowReplace[relation]; ok {
		return v
	}
	return p.allowReplaceDefault
}

// DeleteOnDetach reports whether detached records are deleted instead of unlinked
func (p Policy) DeleteOnDetach(relation string) bool {
	return p.config.DeleteOnDetach[relation]
}

// StaticConfig holds per-type manipulation defaults read once from the schema
type StaticConfig struct {
	defaults            entities.ManipulationConfig
	perType             map[string]entities.ManipulationConfig
	allowReplaceDefault bool
}

// NewStaticConfig collects per-type configuration from the schema
func NewStaticConfig(schema *entities.Schema) *StaticConfig {
	c := &StaticConfig{perType: make(map[string]entities.ManipulationConfig)}
	if schema == nil {
		return c
	}
	c.allowReplaceDefault = schema.AllowRelationshipReplace
	for _, t := range schema.Types {
		c.perType[t.Name] = t.Manipulation
	}
	return c
}

// WithDefaults sets configuration applied to every type before type-specific entries
func (c *StaticConfig) WithDefaults(defaults entities.ManipulationConfig) *StaticConfig {
	c.defaults = defaults
	return c
}

// For resolves the policy for a parent type; overrides take precedence
func (c *StaticConfig) For(parentType string, overrides ...entities.ManipulationConfig) Policy {
	merged := c.defaults.Merge(c.perType[parentType])
	for _, o := range overrides {
		merged = merged.Merge(o)
	}
	return Policy{config: merged, allowReplaceDefault: c.allowReplaceDefault}
}
