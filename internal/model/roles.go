package model

import "strings"

// RoleMap maps Android widget classes to compact role codes.
var RoleMap = map[string]string{
	"android.widget.Button":                             "btn",
	"android.widget.ImageButton":                        "btn",
	"android.widget.TextView":                           "txt",
	"android.widget.ImageView":                          "img",
	"android.widget.EditText":                           "input",
	"android.widget.CheckBox":                           "chk",
	"android.widget.Switch":                             "toggle",
	"android.widget.ToggleButton":                       "toggle",
	"android.widget.RadioButton":                        "radio",
	"android.widget.ListView":                           "list",
	"android.widget.GridView":                           "list",
	"androidx.recyclerview.widget.RecyclerView":         "list",
	"android.support.v7.widget.RecyclerView":            "list",
	"android.widget.FrameLayout":                        "group",
	"android.widget.LinearLayout":                       "group",
	"android.widget.RelativeLayout":                     "group",
	"android.view.ViewGroup":                            "group",
	"android.view.View":                                 "group",
	"android.widget.ScrollView":                         "scroll",
	"android.widget.HorizontalScrollView":               "scroll",
	"android.webkit.WebView":                            "web",
	"android.widget.TabWidget":                          "tab",
	"androidx.viewpager.widget.ViewPager":               "pager",
	"androidx.constraintlayout.widget.ConstraintLayout": "group",
}

// MetaRoles maps meta-role names to the concrete roles they expand to.
var MetaRoles = map[string][]string{
	"interactive": {"btn", "input", "chk", "toggle", "radio"},
}

// ExpandRoles expands any meta-roles in the given list to their concrete roles.
// Non-meta roles are passed through unchanged. Duplicates are removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, r := range roles {
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// ParseRoles splits a comma-separated role flag and expands meta-roles.
func ParseRoles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var roles []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return ExpandRoles(roles)
}

// MapRole converts a widget class to a compact code.
func MapRole(class string) string {
	if short, ok := RoleMap[class]; ok {
		return short
	}
	return "other"
}
