package initialize

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/indaco/kiln/internal/config"
)

const configHeader = `# kiln configuration file
#
# site_root     base directory of site-side extension roots
# admin_root    administrator root (default: <site_root>/administrator)
# media_root    media root; media sections are skipped when unset
# database      SQLite registry (default: <site_root>/.kiln/kiln.db)
# hook_timeout  limit for each script hook call, e.g. "30s"
# theme         prompt theme: kiln, base, base16, catppuccin, charm, dracula
# log           level (debug, info, warn, error, off) and format (text, json)

`

const configFooter = `
# hook_timeout: 30s
# log:
#   level: info
#   format: text
`

// GenerateConfigWithComments encodes cfg as YAML between a commented
// header and the commented optional settings.
func GenerateConfigWithComments(cfg *config.Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	buf.Write(body)
	buf.WriteString(configFooter)
	return buf.Bytes(), nil
}
