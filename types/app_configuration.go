package types

import "fmt"

const appConfigurationLength = 3

// AppConfiguration is the reply to GET_CONFIG.
type AppConfiguration struct {
	Version [3]byte
}

func ParseAppConfiguration(data []byte) (*AppConfiguration, error) {
	if len(data) != appConfigurationLength {
		return nil, &LengthError{Layout: "app configuration", Expected: appConfigurationLength, Got: len(data)}
	}

	c := &AppConfiguration{}
	copy(c.Version[:], data)

	return c, nil
}

func (c *AppConfiguration) Serialize() []byte {
	return append([]byte{}, c.Version[:]...)
}

func (c *AppConfiguration) String() string {
	return fmt.Sprintf("%d.%d.%d", c.Version[0], c.Version[1], c.Version[2])
}
