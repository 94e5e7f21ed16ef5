package uuid

import (
	gouuid "github.com/nu7hatch/gouuid"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
)

type Generator interface {
	Generate() (uuid string, err error)
}

type generator struct{}

func NewGenerator() Generator {
	return generator{}
}

func (gen generator) Generate() (string, error) {
	uuid, err := gouuid.NewV4()
	if err != nil {
		return "", bosherr.WrapError(err, "Generating V4 uuid")
	}

	return uuid.String(), nil
}
