package doorman

import "strings"

// singularize derives a domain-type name from a plural context name. It
// covers the regular English plural forms; rules whose context does not
// singularize this way should declare WithModel explicitly.
func singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses"),
		strings.HasSuffix(name, "xes"),
		strings.HasSuffix(name, "zes"),
		strings.HasSuffix(name, "ches"),
		strings.HasSuffix(name, "shes"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss"):
		return name[:len(name)-1]
	default:
		return name
	}
}
