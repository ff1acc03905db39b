package entities

// ManipulationConfig holds per-relation manipulation policy.
// Absent entries read as false: replace disallowed, detach unlinks.
type ManipulationConfig struct {
	AllowReplace   map[string]bool // Relation name -> full replacement of a plural relation permitted
	DeleteOnDetach map[string]bool // Relation name -> detached records are deleted instead of unlinked
}

// Merge returns a copy of c with entries of override taking precedence
func (c ManipulationConfig) Merge(override ManipulationConfig) ManipulationConfig {
	return ManipulationConfig{
		AllowReplace:   mergeFlags(c.AllowReplace, override.AllowReplace),
		DeleteOnDetach: mergeFlags(c.DeleteOnDetach, override.DeleteOnDetach),
	}
}

func mergeFlags(base, override map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
