package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mantlenetworkio/op-create2/op-create2/create2"
)

// Deployment describes one contract to predict or deploy. It is the unit of
// a manifest file, and what the deployment flags of the CLI fill in.
type Deployment struct {
	Name             string   `toml:"name" json:"name,omitempty"`
	Salt             string   `toml:"salt" json:"salt"`
	Bytecode         string   `toml:"bytecode" json:"bytecode,omitempty"`
	Artifact         string   `toml:"artifact" json:"artifact,omitempty"`
	ConstructorTypes []string `toml:"constructor-types" json:"constructorTypes,omitempty"`
	ConstructorArgs  []any    `toml:"constructor-args" json:"constructorArgs,omitempty"`
}

// Label names the deployment in logs and output.
func (d *Deployment) Label(i int) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("deployment-%d", i)
}

func (d *Deployment) Check() error {
	if d.Salt == "" {
		return errors.New("missing salt")
	}
	if _, err := create2.ParseSalt(d.Salt); err != nil {
		return err
	}
	switch {
	case d.Bytecode == "" && d.Artifact == "":
		return errors.New("must provide bytecode or artifact")
	case d.Bytecode != "" && d.Artifact != "":
		return errors.New("cannot provide both bytecode and artifact")
	}
	if len(d.ConstructorTypes) != len(d.ConstructorArgs) {
		return fmt.Errorf("got %d constructor types but %d arguments", len(d.ConstructorTypes), len(d.ConstructorArgs))
	}
	return nil
}

// Request resolves the salt and bytecode into a deploy request.
func (d *Deployment) Request() (create2.DeployRequest, error) {
	salt, err := create2.ParseSalt(d.Salt)
	if err != nil {
		return create2.DeployRequest{}, err
	}
	var code []byte
	if d.Artifact != "" {
		code, err = create2.LoadBytecode(d.Artifact)
	} else {
		code, err = create2.ParseBytecode(d.Bytecode)
		if err == nil && len(code) == 0 {
			err = create2.ErrEmptyBytecode
		}
	}
	if err != nil {
		return create2.DeployRequest{}, fmt.Errorf("invalid bytecode: %w", err)
	}
	return create2.DeployRequest{
		Salt:             salt,
		Bytecode:         code,
		ConstructorTypes: d.ConstructorTypes,
		ConstructorArgs:  d.ConstructorArgs,
	}, nil
}

// Manifest is the content of a deployment manifest file.
type Manifest struct {
	// Factory overrides the canonical factory address.
	Factory     string       `toml:"factory"`
	Deployments []Deployment `toml:"deployments"`
}

type Loader interface {
	Load() (*Manifest, error)
}

// TomlLoader reads a manifest from a TOML file. Relative artifact paths are
// resolved against the directory of the file.
type TomlLoader struct {
	Path string
}

var _ Loader = (*TomlLoader)(nil)

func (l *TomlLoader) Load() (*Manifest, error) {
	var m Manifest
	md, err := toml.DecodeFile(l.Path, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", l.Path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in manifest %s: %s", l.Path, strings.Join(keys, ", "))
	}
	dir := filepath.Dir(l.Path)
	for i := range m.Deployments {
		if a := m.Deployments[i].Artifact; a != "" && !filepath.IsAbs(a) {
			m.Deployments[i].Artifact = filepath.Join(dir, a)
		}
	}
	return &m, nil
}

// Overrides holds the deployment fields set explicitly on the command line.
// Nil fields are left as they are.
type Overrides struct {
	Factory          *string
	Salt             *string
	Bytecode         *string
	Artifact         *string
	ConstructorTypes []string
	ConstructorArgs  []string
}

func (o *Overrides) touchesDeployment() bool {
	return o.Salt != nil || o.Bytecode != nil || o.Artifact != nil ||
		o.ConstructorTypes != nil || o.ConstructorArgs != nil
}

// Apply merges the overrides into m. Deployment overrides need a manifest
// with at most one deployment, and create that deployment if there is none.
func (o *Overrides) Apply(m *Manifest) error {
	if o.Factory != nil {
		m.Factory = *o.Factory
	}
	if !o.touchesDeployment() {
		return nil
	}
	switch len(m.Deployments) {
	case 0:
		m.Deployments = append(m.Deployments, Deployment{})
	case 1:
	default:
		return fmt.Errorf("deployment flags cannot override a manifest with %d deployments", len(m.Deployments))
	}
	d := &m.Deployments[0]
	if o.Salt != nil {
		d.Salt = *o.Salt
	}
	if o.Bytecode != nil {
		d.Bytecode, d.Artifact = *o.Bytecode, ""
	}
	if o.Artifact != nil {
		d.Artifact, d.Bytecode = *o.Artifact, ""
	}
	if o.ConstructorTypes != nil {
		d.ConstructorTypes = o.ConstructorTypes
	}
	if o.ConstructorArgs != nil {
		args := make([]any, len(o.ConstructorArgs))
		for i, a := range o.ConstructorArgs {
			args[i] = a
		}
		d.ConstructorArgs = args
	}
	return nil
}
