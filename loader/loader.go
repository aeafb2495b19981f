// Package loader hydrates scheduling experiments from YAML documents. A
// document carries a workflow, a node pool and optional candidate sites,
// either inline or as generator specs; hydration runs every input through
// the same builders ad-hoc construction uses, so file-borne inputs obey the
// same validation rules.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"fogsched/errors"
	"fogsched/generator"
	"fogsched/node"
	"fogsched/rng"
	"fogsched/workflow"
)

// Document is a YAML experiment definition.
type Document struct {
	// Name is the experiment identifier.
	Name string `json:"name" yaml:"name"`
	// Description is free-form operator text.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Seed drives generated sections. Each section derives its own stream.
	Seed uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	// Workflow holds the inline task graph.
	Workflow *WorkflowDoc `json:"workflow,omitempty" yaml:"workflow,omitempty"`
	// Nodes holds the inline pool.
	Nodes []node.Node `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	// Sites holds the inline candidate sites.
	Sites []node.Site `json:"sites,omitempty" yaml:"sites,omitempty"`
	// Generate supplies generator specs for sections left out inline.
	Generate *GenerateDoc `json:"generate,omitempty" yaml:"generate,omitempty"`
}

// WorkflowDoc is an inline task graph.
type WorkflowDoc struct {
	Tasks []workflow.Task `json:"tasks" yaml:"tasks"`
	Edges []workflow.Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// GenerateDoc selects generated sections of an experiment.
type GenerateDoc struct {
	Workflow *generator.WorkflowSpec `json:"workflow,omitempty" yaml:"workflow,omitempty"`
	Pool     *generator.PoolSpec     `json:"pool,omitempty" yaml:"pool,omitempty"`
	Sites    *generator.SiteSpec     `json:"sites,omitempty" yaml:"sites,omitempty"`
}

// Experiment is a hydrated, validated scheduling input.
type Experiment struct {
	Name     string
	Seed     uint64
	Workflow *workflow.Workflow
	Pool     *node.Pool
	Sites    []node.Site
}

// Hydrate resolves the document into a validated experiment. Inline
// sections take precedence over generated ones; sites stay empty when the
// document supplies neither.
func (d *Document) Hydrate() (*Experiment, error) {
	if d.Name == "" {
		return nil, errors.MissingField("name")
	}

	exp := &Experiment{Name: d.Name, Seed: d.Seed, Sites: d.Sites}

	switch {
	case d.Workflow != nil:
		b := workflow.NewBuilder().AddTasks(d.Workflow.Tasks...)
		for _, e := range d.Workflow.Edges {
			b.AddDependency(e.From, e.To)
		}
		wf, err := b.Build()
		if err != nil {
			return nil, err
		}
		exp.Workflow = wf
	case d.Generate != nil && d.Generate.Workflow != nil:
		wf, err := generator.Workflow(*d.Generate.Workflow, rng.DeriveSeed(d.Seed, "workflow"))
		if err != nil {
			return nil, err
		}
		exp.Workflow = wf
	default:
		return nil, errors.MissingField("workflow")
	}

	switch {
	case len(d.Nodes) > 0:
		pool, err := node.NewPool(d.Nodes)
		if err != nil {
			return nil, err
		}
		exp.Pool = pool
	case d.Generate != nil && d.Generate.Pool != nil:
		pool, err := generator.Pool(*d.Generate.Pool, rng.DeriveSeed(d.Seed, "pool"))
		if err != nil {
			return nil, err
		}
		exp.Pool = pool
	default:
		return nil, errors.MissingField("nodes")
	}

	if len(exp.Sites) == 0 && d.Generate != nil && d.Generate.Sites != nil {
		sites, err := generator.Sites(*d.Generate.Sites, rng.DeriveSeed(d.Seed, "sites"))
		if err != nil {
			return nil, err
		}
		exp.Sites = sites
	}

	return exp, nil
}

// Loader loads experiments by name.
type Loader interface {
	Load(name string) (*Experiment, error)
}

// FileLoader loads experiments from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches the given directories for
// experiment YAML files.
func NewFileLoader(dirs ...string) Loader {
	return &FileLoader{dirs: dirs}
}

// Load searches for an experiment YAML file by name across configured
// directories. It searches for {name}.yaml and {name}.yml in each directory
// and its subdirectories. A file that exists but does not parse stops the
// search.
func (l *FileLoader) Load(name string) (*Experiment, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			// Try direct path first
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadExperiment(path)
			}

			// Search subdirectories
			matches, _ := filepath.Glob(filepath.Join(dir, "**", name+ext))
			for _, match := range matches {
				return LoadExperiment(match)
			}
		}
	}
	return nil, errors.SpecParse(name, fmt.Errorf("experiment not found in %v", l.dirs))
}

// LoadDocument reads a raw experiment document from an explicit path.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.SpecParse(path, err)
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.SpecParse(path, err)
	}
	return &d, nil
}

// LoadExperiment loads and hydrates an experiment from the first path that
// exists.
func LoadExperiment(paths ...string) (*Experiment, error) {
	var lastErr error
	for _, path := range paths {
		d, err := LoadDocument(path)
		if err != nil {
			lastErr = err
			continue
		}
		return d.Hydrate()
	}
	if lastErr == nil {
		lastErr = errors.SpecParse("", fmt.Errorf("no experiment paths given"))
	}
	return nil, lastErr
}
