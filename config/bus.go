package config

import "github.com/kilianp07/gatedbus/core/gatedbus"

// BusConfig selects the gated bus behaviour.
type BusConfig struct {
	// DeliveryMode is "sync", "serial" or "parallel".
	DeliveryMode string `json:"delivery_mode"`
	// ErrorPolicy is "propagate" or "queue".
	ErrorPolicy string `json:"error_policy"`
}

// SetDefaults applies sane defaults.
func (c *BusConfig) SetDefaults() {
	if c.DeliveryMode == "" {
		c.DeliveryMode = gatedbus.DeliverSync.String()
	}
	if c.ErrorPolicy == "" {
		c.ErrorPolicy = gatedbus.ErrorPolicyPropagate.String()
	}
}

// Validate checks the mode and policy names.
func (c BusConfig) Validate() error {
	if _, err := gatedbus.ParseDeliveryMode(c.DeliveryMode); err != nil {
		return err
	}
	_, err := gatedbus.ParseErrorPolicy(c.ErrorPolicy)
	return err
}

// Options converts the configuration into bus options.
func (c BusConfig) Options() ([]gatedbus.Option, error) {
	mode, err := gatedbus.ParseDeliveryMode(c.DeliveryMode)
	if err != nil {
		return nil, err
	}
	policy, err := gatedbus.ParseErrorPolicy(c.ErrorPolicy)
	if err != nil {
		return nil, err
	}
	return []gatedbus.Option{gatedbus.WithDeliveryMode(mode), gatedbus.WithErrorPolicy(policy)}, nil
}
