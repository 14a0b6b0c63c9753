package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/posrecon/internal/importer/record"
	"github.com/MrJamesThe3rd/posrecon/internal/vendor"
)

// Mapping is the operator-maintained file that extends the built-in vendors and
// header spellings without a code change.
//
//	vendors:
//	  - prefix: DXBT
//	    name: Dubai T3
//	    date_order: DMY
//	    region: DXB
//	    duty_free: true
//	aliases:
//	  net_sales_header_values: ["Nett Amt"]
type Mapping struct {
	Vendors []VendorMapping     `yaml:"vendors"`
	Aliases map[string][]string `yaml:"aliases"`
}

type VendorMapping struct {
	Prefix    string `yaml:"prefix"`
	Name      string `yaml:"name"`
	DateOrder string `yaml:"date_order"`
	Region    string `yaml:"region"`
	DutyFree  bool   `yaml:"duty_free"`
}

func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", path, err)
	}

	return &m, nil
}

// Apply registers the mapped vendors on reg and returns the default aliases extended
// with the mapped ones. A mapped vendor that is already known keeps its built-in
// enrichment unless the mapping sets a region or duty-free flag.
func (m *Mapping) Apply(reg *vendor.Registry) (record.Aliases, error) {
	for _, vm := range m.Vendors {
		order, err := vendor.ParseDateOrder(vm.DateOrder)
		if err != nil {
			return nil, fmt.Errorf("vendor %s: %w", vm.Prefix, err)
		}

		p := vendor.Profile{Prefix: vm.Prefix, Name: vm.Name, DateOrder: order}

		if existing, ok := reg.Get(vm.Prefix); ok {
			p.Enrich = existing.Enrich
			if p.Name == "" {
				p.Name = existing.Name
			}
		}

		if vm.Region != "" || vm.DutyFree {
			p.Enrich = vendor.StaticEnricher(vm.Region, vm.DutyFree)
		}

		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}

	extra := make(record.Aliases, len(m.Aliases))
	parser := record.NewParser(reg, nil)

	for name, spellings := range m.Aliases {
		f, ok := parser.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("alias target %q is not a known field", name)
		}

		extra[f] = append(extra[f], spellings...)
	}

	return record.DefaultAliases().Merge(extra), nil
}
