package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/joho/godotenv"
)

// Service names the compose topology is expected to define.
const (
	ServiceMongo    = "mongodb"
	ServiceBackend  = "backend"
	ServiceFrontend = "frontend"
)

// SeedFileName is the seed file expected inside the data directory.
const SeedFileName = "sample_posts.json"

// Violation is one failed consistency check.
type Violation struct {
	Service string
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Service == "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("%s.%s: %s", v.Service, v.Field, v.Message)
}

// Checker validates a parsed compose file against the sample env file
// and the data directory.
type Checker struct {
	Compose *ComposeFile
	Env     map[string]string
	DataDir string
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)[^}]*\}`)

// Run executes all checks and returns the violations found, ordered by
// service and field.
func (c *Checker) Run() []Violation {
	var violations []Violation
	add := func(service, field, format string, args ...interface{}) {
		violations = append(violations, Violation{
			Service: service,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	mongo, hasMongo := c.Compose.Services[ServiceMongo]
	backend, hasBackend := c.Compose.Services[ServiceBackend]
	frontend, hasFrontend := c.Compose.Services[ServiceFrontend]

	if !hasMongo {
		add(ServiceMongo, "services", "service is not defined")
	}
	if !hasBackend {
		add(ServiceBackend, "services", "service is not defined")
	}
	if !hasFrontend {
		add(ServiceFrontend, "services", "service is not defined")
	}

	if hasMongo {
		if !mongo.PublishesPort("27017") {
			add(ServiceMongo, "ports", "port 27017 is not published")
		}
		if source, ok := mongo.MountTarget("/data"); !ok {
			add(ServiceMongo, "volumes", "no bind mount to /data; mongoimport has no file to read")
		} else if source == "" {
			add(ServiceMongo, "volumes", "bind mount to /data has an empty source")
		}
	}

	if hasBackend {
		if !backend.PublishesPort("5000") {
			add(ServiceBackend, "ports", "port 5000 is not published")
		}
		for _, key := range []string{"MONGODB_URI", "CORS_ORIGIN"} {
			if _, ok := backend.Environment[key]; !ok {
				add(ServiceBackend, "environment", "%s is not set", key)
			}
		}
		if !backend.DependsOn.Contains(ServiceMongo) {
			add(ServiceBackend, "depends_on", "missing dependency on %s", ServiceMongo)
		}
	}

	if hasFrontend {
		if !frontend.PublishesPort("5173") {
			add(ServiceFrontend, "ports", "port 5173 is not published")
		}
		if _, ok := frontend.Environment["VITE_API_PATH"]; !ok {
			add(ServiceFrontend, "environment", "VITE_API_PATH is not set")
		}
		if !frontend.DependsOn.Contains(ServiceBackend) {
			add(ServiceFrontend, "depends_on", "missing dependency on %s", ServiceBackend)
		}
	}

	violations = append(violations, c.checkPlaceholders()...)
	violations = append(violations, c.checkSeedFile()...)

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Service != violations[j].Service {
			return violations[i].Service < violations[j].Service
		}
		return violations[i].Field < violations[j].Field
	})
	return violations
}

// checkPlaceholders verifies every ${VAR} referenced by a compose
// environment value is declared in the sample env file.
func (c *Checker) checkPlaceholders() []Violation {
	if c.Env == nil {
		return nil
	}

	var violations []Violation
	names := make([]string, 0, len(c.Compose.Services))
	for name := range c.Compose.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		service := c.Compose.Services[name]
		keys := make([]string, 0, len(service.Environment))
		for key := range service.Environment {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			for _, match := range placeholderPattern.FindAllStringSubmatch(service.Environment[key], -1) {
				variable := match[1]
				if _, ok := c.Env[variable]; !ok {
					violations = append(violations, Violation{
						Service: name,
						Field:   "environment",
						Message: fmt.Sprintf("%s references ${%s} which is missing from the env file", key, variable),
					})
				}
			}
		}
	}
	return violations
}

func (c *Checker) checkSeedFile() []Violation {
	if c.DataDir == "" {
		return nil
	}
	path := filepath.Join(c.DataDir, SeedFileName)
	if _, err := os.Stat(path); err != nil {
		return []Violation{{
			Field:   "data",
			Message: fmt.Sprintf("seed file %s not found", path),
		}}
	}
	return nil
}

// Check loads all inputs and runs the checks. envPath and dataDir may
// be empty to skip the env-file and seed-file checks.
func Check(composePath, envPath, dataDir string) ([]Violation, error) {
	compose, err := LoadCompose(composePath)
	if err != nil {
		return nil, err
	}

	var env map[string]string
	if envPath != "" {
		env, err = godotenv.Read(envPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
	}

	checker := &Checker{Compose: compose, Env: env, DataDir: dataDir}
	return checker.Run(), nil
}
