// Package devconfig loads the device configuration file: the external
// contract mapping a target architecture name to the capability set the
// filter checks device requirements against.
//
// The file is YAML:
//
//	devices:
//	  - name: intel_gpu_pvc
//	    aspects: [5, 6, 9]
//	    sub_group_sizes: [16, 32]
//	  - name: intel_cpu_spr
//	    aspects: [1, 5]
//	    # no sub_group_sizes: any required size is accepted
//
// "name" is the identifier compared against the -target flag and
// fixed_target declarations. An absent or empty sub_group_sizes list
// declares unconstrained sub-group support.
package devconfig

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// DeviceConfig is the full parsed device configuration file.
type DeviceConfig struct {
	// Devices lists every known target architecture.
	Devices []DeviceEntry `yaml:"devices"`
}

// DeviceEntry describes one target architecture in the config file.
type DeviceEntry struct {
	// Name is the architecture identifier (e.g. "intel_gpu_pvc").
	Name string `yaml:"name"`

	// Aspects lists the 32-bit aspect identifiers the device supports.
	Aspects []uint32 `yaml:"aspects"`

	// SubGroupSizes lists the supported sub-group sizes. Empty means
	// the device supports any required sub-group size.
	SubGroupSizes []int `yaml:"sub_group_sizes"`
}

// TargetCapabilities is the resolved capability set for one target,
// shaped for membership checks. Loaded once per run, read-only after.
type TargetCapabilities struct {
	// Name is the target's own identifier, used for fixed_target
	// comparisons.
	Name string

	// Aspects is the supported aspect identifier set.
	Aspects map[uint32]struct{}

	// SubGroupSizes is the supported sub-group size set. Ignored when
	// AnySubGroupSize is set.
	SubGroupSizes map[int]struct{}

	// AnySubGroupSize reports unconstrained sub-group support.
	AnySubGroupSize bool
}

// SupportsAspect reports whether the target supports the given aspect
// identifier.
func (c *TargetCapabilities) SupportsAspect(id uint32) bool {
	_, ok := c.Aspects[id]
	return ok
}

// SupportsSubGroupSize reports whether the target supports the given
// required sub-group size.
func (c *TargetCapabilities) SupportsSubGroupSize(size int) bool {
	if c.AnySubGroupSize {
		return true
	}
	_, ok := c.SubGroupSizes[size]
	return ok
}

// Load parses a device configuration from YAML bytes and validates its
// structure.
func Load(data []byte) (*DeviceConfig, error) {
	var cfg DeviceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCategoryFormat, ferrors.CodeInvalidDeviceConfig,
			"can't parse the device configuration file", err)
	}

	if len(cfg.Devices) == 0 {
		return nil, ferrors.New(ferrors.ErrCategoryConfig, ferrors.CodeInvalidDeviceConfig,
			"device configuration file declares no devices")
	}
	seen := make(map[string]struct{}, len(cfg.Devices))
	for i, dev := range cfg.Devices {
		if dev.Name == "" {
			return nil, ferrors.Newf(ferrors.ErrCategoryConfig, ferrors.CodeInvalidDeviceConfig,
				"device entry %d has no name", i)
		}
		if _, dup := seen[dev.Name]; dup {
			return nil, ferrors.Newf(ferrors.ErrCategoryConfig, ferrors.CodeInvalidDeviceConfig,
				"duplicate device name %q", dev.Name)
		}
		seen[dev.Name] = struct{}{}
	}
	return &cfg, nil
}

// Lookup resolves a target architecture name into its capability set.
func (cfg *DeviceConfig) Lookup(target string) (*TargetCapabilities, error) {
	for _, dev := range cfg.Devices {
		if dev.Name != target {
			continue
		}
		caps := &TargetCapabilities{
			Name:            dev.Name,
			Aspects:         make(map[uint32]struct{}, len(dev.Aspects)),
			SubGroupSizes:   make(map[int]struct{}, len(dev.SubGroupSizes)),
			AnySubGroupSize: len(dev.SubGroupSizes) == 0,
		}
		for _, id := range dev.Aspects {
			caps.Aspects[id] = struct{}{}
		}
		for _, size := range dev.SubGroupSizes {
			caps.SubGroupSizes[size] = struct{}{}
		}
		return caps, nil
	}

	return nil, ferrors.Newf(ferrors.ErrCategoryConfig, ferrors.CodeUnknownTarget,
		"unknown target %q, known targets: %s", target, strings.Join(cfg.deviceNames(), ", "))
}

// deviceNames returns the sorted list of configured device names.
func (cfg *DeviceConfig) deviceNames() []string {
	names := make([]string, 0, len(cfg.Devices))
	for _, dev := range cfg.Devices {
		names = append(names, dev.Name)
	}
	sort.Strings(names)
	return names
}
