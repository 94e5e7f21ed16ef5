// Package manifest reads and writes YAML lists of paths with their
// sha256 checksums, and verifies a tree against such a list.
package manifest

import (
	"gopkg.in/yaml.v2"

	"github.com/cloudfoundry/bosh-chksum/checksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
)

type Manifest struct {
	Algorithm string  `yaml:"algorithm"`
	Entries   []Entry `yaml:"entries"`
}

// Entry keeps the checksum in its "sha256:<hex>" form so manifests stay
// readable by tools that only know OCI-style digests.
type Entry struct {
	Path     string `yaml:"path"`
	Checksum string `yaml:"checksum"`
}

func New() Manifest {
	return Manifest{Algorithm: sha2256.AlgorithmName}
}

// Add appends in call order; entries are never sorted.
func (m *Manifest) Add(path string, c checksum.Checksum) {
	m.Entries = append(m.Entries, Entry{Path: path, Checksum: c.String()})
}

func (m Manifest) Marshal() ([]byte, error) {
	bytes, err := yaml.Marshal(m)
	if err != nil {
		return nil, bosherr.WrapError(err, "Marshalling manifest")
	}

	return bytes, nil
}

func Unmarshal(bytes []byte) (Manifest, error) {
	var m Manifest

	err := yaml.UnmarshalStrict(bytes, &m)
	if err != nil {
		return Manifest{}, bosherr.WrapError(err, "Unmarshalling manifest")
	}

	if m.Algorithm != sha2256.AlgorithmName {
		return Manifest{}, bosherr.Errorf("Unsupported manifest algorithm '%s'", m.Algorithm)
	}

	for i, entry := range m.Entries {
		if entry.Path == "" {
			return Manifest{}, bosherr.Errorf("Missing path for manifest entry %d", i)
		}
		if _, err := checksum.ParseString(entry.Checksum); err != nil {
			return Manifest{}, bosherr.WrapErrorf(err, "Parsing checksum of '%s'", entry.Path)
		}
	}

	return m, nil
}

func Load(fs boshsys.FileSystem, path string) (Manifest, error) {
	contents, err := fs.ReadFileString(path)
	if err != nil {
		return Manifest{}, bosherr.WrapErrorf(err, "Reading manifest '%s'", path)
	}

	m, err := Unmarshal([]byte(contents))
	if err != nil {
		return Manifest{}, bosherr.WrapErrorf(err, "Loading manifest '%s'", path)
	}

	return m, nil
}

func (m Manifest) Save(fs boshsys.FileSystem, path string) error {
	bytes, err := m.Marshal()
	if err != nil {
		return err
	}

	err = fs.WriteFileString(path, string(bytes))
	if err != nil {
		return bosherr.WrapErrorf(err, "Writing manifest '%s'", path)
	}

	return nil
}
