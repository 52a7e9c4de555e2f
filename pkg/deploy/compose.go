// Package deploy validates the compose topology and its supporting
// files before anything is shipped.
package deploy

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ComposeFile is the subset of a compose file the checks care about.
type ComposeFile struct {
	Services map[string]Service `yaml:"services"`
}

// Service models one compose service. Environment and depends_on
// accept both the list and the map form.
type Service struct {
	Build       BuildSpec   `yaml:"build"`
	Ports       []string    `yaml:"ports"`
	Environment Environment `yaml:"environment"`
	DependsOn   DependsOn   `yaml:"depends_on"`
	Volumes     []string    `yaml:"volumes"`
}

// BuildSpec covers both the short string form and the map form with a
// context key.
type BuildSpec struct {
	Context string
}

func (b *BuildSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&b.Context)
	case yaml.MappingNode:
		var raw struct {
			Context string `yaml:"context"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		b.Context = raw.Context
		return nil
	default:
		return fmt.Errorf("unsupported build value on line %d", node.Line)
	}
}

// Environment is a set of variable assignments keyed by name.
type Environment map[string]string

func (e *Environment) UnmarshalYAML(node *yaml.Node) error {
	out := Environment{}
	switch node.Kind {
	case yaml.MappingNode:
		var raw map[string]string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		for k, v := range raw {
			out[k] = v
		}
	case yaml.SequenceNode:
		var raw []string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		for _, entry := range raw {
			key, value, _ := strings.Cut(entry, "=")
			out[key] = value
		}
	default:
		return fmt.Errorf("unsupported environment value on line %d", node.Line)
	}
	*e = out
	return nil
}

// DependsOn is the list of services that must start first.
type DependsOn []string

func (d *DependsOn) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var raw []string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*d = raw
		return nil
	case yaml.MappingNode:
		var raw map[string]yaml.Node
		if err := node.Decode(&raw); err != nil {
			return err
		}
		for name := range raw {
			*d = append(*d, name)
		}
		return nil
	default:
		return fmt.Errorf("unsupported depends_on value on line %d", node.Line)
	}
}

// Contains reports whether the service depends on name.
func (d DependsOn) Contains(name string) bool {
	for _, dep := range d {
		if dep == name {
			return true
		}
	}
	return false
}

// PublishesPort reports whether one of the service's port mappings
// exposes the given host port.
func (s Service) PublishesPort(port string) bool {
	for _, mapping := range s.Ports {
		parts := strings.Split(mapping, ":")
		switch len(parts) {
		case 1:
			if parts[0] == port {
				return true
			}
		case 2:
			if parts[0] == port {
				return true
			}
		case 3:
			// host:hostPort:containerPort
			if parts[1] == port {
				return true
			}
		}
	}
	return false
}

// MountTarget returns the volume source mounted at target, if any.
func (s Service) MountTarget(target string) (string, bool) {
	for _, volume := range s.Volumes {
		source, rest, ok := strings.Cut(volume, ":")
		if !ok {
			continue
		}
		// Strip an optional access-mode suffix like ":ro".
		mountPoint, _, _ := strings.Cut(rest, ":")
		if mountPoint == target {
			return source, true
		}
	}
	return "", false
}

// ParseCompose reads a compose file.
func ParseCompose(r io.Reader) (*ComposeFile, error) {
	var file ComposeFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}
	if len(file.Services) == 0 {
		return nil, fmt.Errorf("compose file defines no services")
	}
	return &file, nil
}

// LoadCompose reads and parses the compose file at path.
func LoadCompose(path string) (*ComposeFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open compose file: %w", err)
	}
	defer f.Close()
	return ParseCompose(f)
}
