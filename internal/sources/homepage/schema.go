package homepage

// Both Homepage files are lists of single-key maps, so group and entry
// names are map keys:
//
//	services.yaml:  - Group: [ - Name: {href, icon, description, ...} ]
//	bookmarks.yaml: - Group: [ - Name: [ {href, abbr, icon} ] ]

// ServicesConfig is the root of services.yaml.
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps contains the service properties used for import. Widgets
// and monitors are ignored.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BookmarksConfig is the root of bookmarks.yaml.
type BookmarksConfig []BookmarkCategory

// BookmarkCategory maps a group name to its bookmarks. Each bookmark name
// maps to a one-element list holding its properties.
type BookmarkCategory map[string][]map[string][]BookmarkEntry

type BookmarkEntry struct {
	Icon string `yaml:"icon"`
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}
