package manifest

// Document is the decoded form of an extension manifest (extension.yaml or
// extension.toml). It is turned into an immutable Manifest by New.
//
// A minimal component manifest:
//
//	name: Demo
//	type: component
//	version: 1.0.0
//	administration:
//	  files:
//	    folder: admin
//	    files: [demo.php]
//	install:
//	  sql: [sql/install.sql]
//	update:
//	  schemas:
//	    - version: 1.0.1
//	      path: sql/updates/1.0.1.sql
//	scriptfile: script.sh
type Document struct {
	Name           string          `yaml:"name" toml:"name"`
	Element        string          `yaml:"element,omitempty" toml:"element,omitempty"`
	Type           string          `yaml:"type" toml:"type"`
	Description    string          `yaml:"description,omitempty" toml:"description,omitempty"`
	Version        string          `yaml:"version,omitempty" toml:"version,omitempty"`
	Author         string          `yaml:"author,omitempty" toml:"author,omitempty"`
	Group          string          `yaml:"group,omitempty" toml:"group,omitempty"`
	Client         string          `yaml:"client,omitempty" toml:"client,omitempty"`
	Files          *FilesSection   `yaml:"files,omitempty" toml:"files,omitempty"`
	Media          *FilesSection   `yaml:"media,omitempty" toml:"media,omitempty"`
	Languages      *FilesSection   `yaml:"languages,omitempty" toml:"languages,omitempty"`
	Administration *Administration `yaml:"administration,omitempty" toml:"administration,omitempty"`
	Install        *SQLSection     `yaml:"install,omitempty" toml:"install,omitempty"`
	Update         *UpdateSection  `yaml:"update,omitempty" toml:"update,omitempty"`
	Uninstall      *SQLSection     `yaml:"uninstall,omitempty" toml:"uninstall,omitempty"`
	ScriptFile     string          `yaml:"scriptfile,omitempty" toml:"scriptfile,omitempty"`
	Hooks          []string        `yaml:"hooks,omitempty" toml:"hooks,omitempty"`
	Params         map[string]any  `yaml:"params,omitempty" toml:"params,omitempty"`
}

// FilesSection declares files to stage. Folder is the source sub-directory
// relative to the install source; Destination is only used by media sections.
type FilesSection struct {
	Folder      string   `yaml:"folder,omitempty" toml:"folder,omitempty"`
	Destination string   `yaml:"destination,omitempty" toml:"destination,omitempty"`
	Files       []string `yaml:"files,omitempty" toml:"files,omitempty"`
	Folders     []string `yaml:"folders,omitempty" toml:"folders,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`
}

// Entries returns every declared file and folder, files first.
func (f *FilesSection) Entries() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.Files)+len(f.Folders))
	out = append(out, f.Files...)
	return append(out, f.Folders...)
}

func (f *FilesSection) clone() *FilesSection {
	if f == nil {
		return nil
	}
	c := *f
	c.Files = cloneStrings(f.Files)
	c.Folders = cloneStrings(f.Folders)
	c.Exclude = cloneStrings(f.Exclude)
	return &c
}

// MenuItem describes an administrator menu entry. Link wins over the
// act/task/controller/view/layout/sub request parts.
type MenuItem struct {
	Title      string `yaml:"title" toml:"title"`
	Img        string `yaml:"img,omitempty" toml:"img,omitempty"`
	Link       string `yaml:"link,omitempty" toml:"link,omitempty"`
	Act        string `yaml:"act,omitempty" toml:"act,omitempty"`
	Task       string `yaml:"task,omitempty" toml:"task,omitempty"`
	Controller string `yaml:"controller,omitempty" toml:"controller,omitempty"`
	View       string `yaml:"view,omitempty" toml:"view,omitempty"`
	Layout     string `yaml:"layout,omitempty" toml:"layout,omitempty"`
	Sub        string `yaml:"sub,omitempty" toml:"sub,omitempty"`
}

// Administration groups the administrator-side sections of a component.
type Administration struct {
	Files     *FilesSection `yaml:"files,omitempty" toml:"files,omitempty"`
	Languages *FilesSection `yaml:"languages,omitempty" toml:"languages,omitempty"`
	Menu      *MenuItem     `yaml:"menu,omitempty" toml:"menu,omitempty"`
	Submenu   []MenuItem    `yaml:"submenu,omitempty" toml:"submenu,omitempty"`
}

func (a *Administration) clone() *Administration {
	if a == nil {
		return nil
	}
	c := *a
	c.Files = a.Files.clone()
	c.Languages = a.Languages.clone()
	if a.Menu != nil {
		m := *a.Menu
		c.Menu = &m
	}
	if a.Submenu != nil {
		c.Submenu = append([]MenuItem(nil), a.Submenu...)
	}
	return &c
}

// SQLSection lists SQL files, relative to the install source, for one route.
type SQLSection struct {
	SQL []string `yaml:"sql,omitempty" toml:"sql,omitempty"`
}

// SchemaScript is one version-tagged update script.
type SchemaScript struct {
	Version string `yaml:"version" toml:"version"`
	Path    string `yaml:"path" toml:"path"`
}

// UpdateSection holds the update-route SQL and the versioned schema scripts.
// SchemaPath names a directory whose "<version>.sql" files are added to Schemas.
type UpdateSection struct {
	SQL        []string       `yaml:"sql,omitempty" toml:"sql,omitempty"`
	Schemas    []SchemaScript `yaml:"schemas,omitempty" toml:"schemas,omitempty"`
	SchemaPath string         `yaml:"schemapath,omitempty" toml:"schemapath,omitempty"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
