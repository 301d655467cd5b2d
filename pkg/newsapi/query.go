package newsapi

import (
	"fmt"
	"strings"
)

// PartnershipQuery builds a search for coverage of a partnership between a
// and b.
func PartnershipQuery(a, b string) string {
	return fmt.Sprintf(`%s AND %s AND (partnership OR "joint venture" OR agreement)`, quote(a), quote(b))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(s), `"`, "") + `"`
}
