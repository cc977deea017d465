package otaconfig

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// AreaIndex classifies hotels into area types (central, airport, suburb, …)
// by matching hotel-name keywords per region. The tables are data files, not
// code: vendors name hotels inconsistently and the keyword lists change
// faster than releases.
type AreaIndex struct {
	regions map[string][]areaEntry
}

// areaEntry keeps area types in declaration order, so a hotel name matching
// more than one keyword list always resolves to the earliest-declared type.
type areaEntry struct {
	areaType string
	keywords []string
}

// LoadAreaIndex reads a YAML keyword table of the form:
//
//	kansai:
//	  central: ["難波", "心斎橋", "梅田"]
//	  airport: ["関西空港", "りんくう"]
//
// Area types are matched in file order. A missing file yields an empty
// index, which classifies everything as unknown.
func LoadAreaIndex(path string) (*AreaIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &AreaIndex{regions: map[string][]areaEntry{}}, nil
		}
		return nil, eris.Wrapf(err, "otaconfig: read %s", path)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "otaconfig: parse %s", path)
	}

	regions := map[string][]areaEntry{}
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		root := doc.Content[0]
		for i := 0; i+1 < len(root.Content); i += 2 {
			region, areaNode := root.Content[i].Value, root.Content[i+1]
			if areaNode.Kind != yaml.MappingNode {
				return nil, eris.Errorf("otaconfig: parse %s: region %q is not a mapping", path, region)
			}
			var entries []areaEntry
			for j := 0; j+1 < len(areaNode.Content); j += 2 {
				var keywords []string
				if err := areaNode.Content[j+1].Decode(&keywords); err != nil {
					return nil, eris.Wrapf(err, "otaconfig: parse %s: region %q", path, region)
				}
				entries = append(entries, areaEntry{
					areaType: areaNode.Content[j].Value,
					keywords: keywords,
				})
			}
			regions[region] = entries
		}
	}
	return &AreaIndex{regions: regions}, nil
}

// NewAreaIndex builds an index from an in-memory table, for tests and
// embedded defaults. Area types within a region match in sorted name order.
func NewAreaIndex(regions map[string]map[string][]string) *AreaIndex {
	out := make(map[string][]areaEntry, len(regions))
	for region, areas := range regions {
		types := make([]string, 0, len(areas))
		for areaType := range areas {
			types = append(types, areaType)
		}
		sort.Strings(types)
		entries := make([]areaEntry, 0, len(types))
		for _, areaType := range types {
			entries = append(entries, areaEntry{areaType: areaType, keywords: areas[areaType]})
		}
		out[region] = entries
	}
	return &AreaIndex{regions: out}
}

// Detect returns the area type whose keyword list matches the hotel name,
// or "unknown" when no keyword for the region matches. Earlier-declared
// area types win over later ones.
func (a *AreaIndex) Detect(hotelName, region string) string {
	if a == nil || hotelName == "" {
		return "unknown"
	}
	for _, entry := range a.regions[region] {
		for _, kw := range entry.keywords {
			if kw != "" && strings.Contains(hotelName, kw) {
				return entry.areaType
			}
		}
	}
	return "unknown"
}
