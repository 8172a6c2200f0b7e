package cache

import "time"

// Config holds TTLs and key prefixes for the vehicle cache.
type Config struct {
	VehicleTTL     time.Duration `mapstructure:"vehicle_ttl" json:"vehicleTTL"`
	VehicleListTTL time.Duration `mapstructure:"vehicle_list_ttl" json:"vehicleListTTL"`
	KeyPrefix      string        `mapstructure:"key_prefix" json:"keyPrefix"`
	TagPrefix      string        `mapstructure:"tag_prefix" json:"tagPrefix"`
}

func DefaultConfig() Config {
	return Config{
		VehicleTTL:     5 * time.Minute,
		VehicleListTTL: time.Minute,
		KeyPrefix:      "fleet:",
		TagPrefix:      "fleet:tag:",
	}
}

// TTLFor returns the TTL for a data kind ("vehicle" or "vehicle_list").
func (c Config) TTLFor(kind string) time.Duration {
	switch kind {
	case kindVehicleList:
		return c.VehicleListTTL
	default:
		return c.VehicleTTL
	}
}

// tagTTL keeps tag sets alive at least as long as anything they point to.
func (c Config) tagTTL() time.Duration {
	ttl := c.VehicleTTL
	if c.VehicleListTTL > ttl {
		ttl = c.VehicleListTTL
	}
	return 2 * ttl
}
